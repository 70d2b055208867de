package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dukapos/pesapos"
	"github.com/dukapos/pesapos/engine"
	"github.com/dukapos/pesapos/ffsm"
	"github.com/dukapos/pesapos/provider"
)

func (c *Checkout) load() {
	c.s.Add(
		IDLE_CH,
		SAVING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			req, ok := payload.(*startRequest)
			if !ok {
				return ctx, errors.New("bad payload")
			}
			switch req.PaymentType {
			case provider.FULL_PT:
				if err := c.orders.SetFullMpesa(c.order, req.Amount, c.gw.AccountRef()); err != nil {
					return ctx, err
				}
			case provider.MIXED_PT:
				// обе строки уже выставлены вызывающей стороной
				if c.order.PaymentsTotal() != c.order.TotalAmount {
					return ctx, errors.New("Split payments do not cover the order total.")
				}
			default:
				return ctx, errors.Errorf("unexpected payment type %q", req.PaymentType)
			}
			return ctx, nil
		},
		"start",
	)

	c.s.Add(
		SAVING_CH,
		INITIATING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			return ctx, c.persistOrder(ctx)
		},
		"persist",
	)

	retry := func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
		c.stopPolling()
		if c.live != nil && c.live.CheckoutRequestID != nil {
			// the abandoned push stays canceled in the store
			if err := c.gw.CancelPayment(*c.live.CheckoutRequestID); err != nil {
				c.l.Warn("failed cancel abandoned payment",
					zap.Stringp("checkout_request_id", c.live.CheckoutRequestID),
					zap.Error(err),
				)
			}
		}
		c.live = nil
		if !c.order.Persisted() {
			return ctx, c.persistOrder(ctx)
		}
		return ctx, nil
	}
	c.s.Add(FAILED_CH, INITIATING_CH, retry, "retry")
	c.s.Add(TIMEOUT_CH, INITIATING_CH, retry, "retry")

	c.s.Add(
		INITIATING_CH,
		AWAITING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			pay, err := c.gw.PushPayment(ctx, c.phone, c.amount, c.order.Key)
			if err != nil {
				return ctx, err
			}
			pay.PaymentType = c.paymentType
			c.live = pay

			pollCtx, cancel := context.WithCancel(ctx)
			c.cancelPoll = cancel
			c.pollCh = c.poller.Poll(pollCtx, *pay.CheckoutRequestID)

			c.l.Info("stk push accepted",
				zap.String("order_key", c.order.Key),
				zap.Stringp("checkout_request_id", pay.CheckoutRequestID),
			)
			c.r.Report("Payment request sent. Ask the customer to enter their M-Pesa PIN.", pesapos.LevelInfo)
			return ctx, nil
		},
		"push",
	)

	c.s.Add(
		AWAITING_CH,
		FINALIZING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			snap, ok := payload.(*provider.StatusSnapshot)
			if !ok {
				return ctx, errors.New("bad payload")
			}
			c.stopPolling()
			c.receipt = snap.ReceiptNumber
			return ctx, nil
		},
		"confirmed",
	)
	// manual check finds a completed payment after the flow already gave up
	c.s.Add(FAILED_CH, FINALIZING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			snap, ok := payload.(*provider.StatusSnapshot)
			if !ok {
				return ctx, errors.New("bad payload")
			}
			c.live = nil
			c.receipt = snap.ReceiptNumber
			return ctx, nil
		},
		"confirmed_manually",
	)
	c.s.Add(TIMEOUT_CH, FINALIZING_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			snap, ok := payload.(*provider.StatusSnapshot)
			if !ok {
				return ctx, errors.New("bad payload")
			}
			c.live = nil
			c.receipt = snap.ReceiptNumber
			return ctx, nil
		},
		"confirmed_manually",
	)

	c.s.Add(
		FINALIZING_CH,
		COMPLETED_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			if _, ok := payload.(*switchToCash); ok {
				if err := c.orders.SwitchToCash(c.order); err != nil {
					return ctx, err
				}
				if err := c.orders.Persist(c.order); err != nil {
					return ctx, errors.Wrap(err, "failed persist order")
				}
				c.r.Report("Switched to cash payment.", pesapos.LevelSuccess)
				return ctx, nil
			}
			if err := c.orders.Submit(c.order); err != nil {
				return ctx, err
			}
			msg := "Payment received. Order submitted."
			if c.receipt != "" {
				msg = fmt.Sprintf("Payment received. Receipt %s. Order submitted.", c.receipt)
			}
			c.r.Report(msg, pesapos.LevelSuccess)
			return ctx, nil
		},
		"submit",
	)

	c.s.Add(
		AWAITING_CH,
		TIMEOUT_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			c.stopPolling()
			c.r.Report("No confirmation received from the customer.", pesapos.LevelWarning)
			c.r.OfferActions(pesapos.ActionRetry, pesapos.ActionSwitchToCash,
				pesapos.ActionCancel, pesapos.ActionManualCheck)
			return ctx, nil
		},
		"poll_timeout",
	)

	failed := func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
		f, ok := payload.(*failure)
		if !ok {
			return ctx, errors.New("bad payload")
		}
		c.stopPolling()
		c.r.Report(f.Desc, pesapos.LevelError)
		if len(f.Actions) > 0 {
			c.r.OfferActions(f.Actions...)
		}
		return ctx, nil
	}
	c.s.Add(SAVING_CH, FAILED_CH, failed, "failed")
	c.s.Add(INITIATING_CH, FAILED_CH, failed, "failed")
	c.s.Add(AWAITING_CH, FAILED_CH, failed, "failed")
	c.s.Add(FINALIZING_CH, FAILED_CH, failed, "failed")
	c.s.Add(CANCELED_CH, FAILED_CH, failed, "failed")

	canceled := func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
		c.stopPolling()
		c.live = nil
		if _, ok := payload.(*switchToCash); !ok {
			c.r.Report("Payment canceled.", pesapos.LevelWarning)
		}
		return ctx, nil
	}
	c.s.Add(IDLE_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(SAVING_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(INITIATING_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(AWAITING_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(FINALIZING_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(FAILED_CH, CANCELED_CH, canceled, "cancel")
	c.s.Add(TIMEOUT_CH, CANCELED_CH, canceled, "cancel")

	c.s.Add(
		CANCELED_CH,
		COMPLETED_CH,
		func(ctx context.Context, payload ffsm.Payload) (context.Context, error) {
			if _, ok := payload.(*switchToCash); !ok {
				return ctx, errors.New("bad payload")
			}
			if err := c.orders.SwitchToCash(c.order); err != nil {
				return ctx, err
			}
			if err := c.orders.Persist(c.order); err != nil {
				return ctx, errors.Wrap(err, "failed persist order")
			}
			c.r.Report("Switched to cash payment.", pesapos.LevelSuccess)
			return ctx, nil
		},
		"cash",
	)
}

// persistOrder saves the order and waits until the write is visible to
// a read-back. The backend may acknowledge a save before the row is
// queryable, so the probe is retried with a bounded backoff.
func (c *Checkout) persistOrder(ctx context.Context) error {
	if err := c.orders.Persist(c.order); err != nil {
		return errors.Wrap(err, "failed persist order")
	}
	var lastErr error
	for attempt := 1; attempt <= c.cfg.PersistAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.PersistBackoff):
			}
		}
		probe := engine.Order{OrderID: c.order.OrderID}
		if err := c.orders.Reload(&probe); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return errors.Wrap(lastErr, "order not visible after save")
}
