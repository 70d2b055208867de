// Package reporter contains the status reporter implementations the
// checkout flow talks to: a log-only reporter and a NATS reporter that
// feeds the POS frontend.
package reporter

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/dukapos/pesapos"
)

const (
	updateSubjectTpl  = "checkout.%s.updates"
	actionsSubjectTpl = "checkout.%s.actions"
)

// MessageCheckoutUpdate one status line for the POS frontend.
type MessageCheckoutUpdate struct {
	OrderKey string
	Message  string
	Level    pesapos.Level
}

// MessageCheckoutActions the set of choices the cashier is offered.
type MessageCheckoutActions struct {
	OrderKey string
	Actions  []pesapos.Action
}

func NewZap() *Zap {
	return &Zap{l: zap.L().Named("reporter")}
}

// Zap writes reports to the log only. Used by the daemon and in tests
// where no frontend is attached.
type Zap struct {
	l *zap.Logger
}

func (r *Zap) Report(msg string, level pesapos.Level) {
	switch level {
	case pesapos.LevelError:
		r.l.Error(msg)
	case pesapos.LevelWarning:
		r.l.Warn(msg)
	default:
		r.l.Info(msg, zap.String("level", string(level)))
	}
}

func (r *Zap) OfferActions(actions ...pesapos.Action) {
	r.l.Info("Waiting for cashier decision.", zap.Any("actions", actions))
}

var _ pesapos.Reporter = (*Zap)(nil)

func NewNats(nc *nats.EncodedConn, orderKey string) *Nats {
	return &Nats{
		nc:       nc,
		orderKey: orderKey,
		l:        zap.L().Named("reporter"),
	}
}

// Nats publishes per-order checkout updates so the frontend of the
// order's till can render them. Subjects are scoped by order key, a
// frontend subscribes to checkout.<key>.>.
type Nats struct {
	nc       *nats.EncodedConn
	orderKey string
	l        *zap.Logger
}

func (r *Nats) Report(msg string, level pesapos.Level) {
	err := r.nc.Publish(fmt.Sprintf(updateSubjectTpl, r.orderKey), &MessageCheckoutUpdate{
		OrderKey: r.orderKey,
		Message:  msg,
		Level:    level,
	})
	if err != nil {
		r.l.Warn("Failed publish checkout update.",
			zap.String("order_key", r.orderKey),
			zap.Error(err),
		)
	}
}

func (r *Nats) OfferActions(actions ...pesapos.Action) {
	err := r.nc.Publish(fmt.Sprintf(actionsSubjectTpl, r.orderKey), &MessageCheckoutActions{
		OrderKey: r.orderKey,
		Actions:  actions,
	})
	if err != nil {
		r.l.Warn("Failed publish checkout actions.",
			zap.String("order_key", r.orderKey),
			zap.Error(err),
		)
	}
}

var _ pesapos.Reporter = (*Nats)(nil)
