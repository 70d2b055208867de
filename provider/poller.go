package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dukapos/pesapos"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 24
)

// StatusSource answers a single status query for a push request.
type StatusSource interface {
	Status(checkoutRequestID string) (*StatusSnapshot, error)
}

func NewPoller(src StatusSource, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollAttempts
	}
	return &Poller{
		src:         src,
		interval:    interval,
		maxAttempts: maxAttempts,
		l:           zap.L().Named("mpesa_poller"),
	}
}

// Poller repeatedly queries the status store until a terminal status,
// attempt exhaustion or cancellation.
type Poller struct {
	src         StatusSource
	interval    time.Duration
	maxAttempts int
	l           *zap.Logger
}

// Poll produces a finite sequence of status observations for the given
// push request, one per tick. The sequence ends after a terminal remote
// status, after maxAttempts (a synthesized timeout snapshot is emitted
// last) or when ctx is canceled (no further snapshot, no further query).
// The returned channel is not restartable.
func (p *Poller) Poll(ctx context.Context, checkoutRequestID string) <-chan StatusSnapshot {
	out := make(chan StatusSnapshot)
	go func() {
		defer close(out)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for attempt := 1; attempt <= p.maxAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			// a tick may already be pending when the context is canceled
			if ctx.Err() != nil {
				return
			}
			snap, err := p.src.Status(checkoutRequestID)
			if err != nil {
				if err != pesapos.ErrPaymentNotFound {
					// transient query failure, treated as still pending
					p.l.Warn("Failed check payment status.",
						zap.String("checkout_request_id", checkoutRequestID),
						zap.Int("attempt", attempt),
						zap.Error(err),
					)
				}
				snap = &StatusSnapshot{Status: PENDING_P}
			}
			snap.Remaining = time.Duration(p.maxAttempts-attempt) * p.interval
			select {
			case <-ctx.Done():
				return
			case out <- *snap:
			}
			if snap.Status.Terminal() {
				return
			}
		}
		select {
		case <-ctx.Done():
		case out <- StatusSnapshot{Status: TIMEOUT_P}:
		}
	}()
	return out
}
