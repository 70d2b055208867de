package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/zap"

	"github.com/dukapos/pesapos"
	"github.com/dukapos/pesapos/engine"
	"github.com/dukapos/pesapos/ffsm"
	"github.com/dukapos/pesapos/provider"
)

// Состояния платежного потока одного заказа.
const (
	IDLE_CH       ffsm.State = "idle"
	SAVING_CH     ffsm.State = "saving"
	INITIATING_CH ffsm.State = "initiating"
	AWAITING_CH   ffsm.State = "awaiting_confirmation"
	FINALIZING_CH ffsm.State = "finalizing"
	FAILED_CH     ffsm.State = "failed"
	TIMEOUT_CH    ffsm.State = "timeout"
	CANCELED_CH   ffsm.State = "canceled"
	COMPLETED_CH  ffsm.State = "completed"
)

// Gateway sends push-payment requests and answers status queries.
type Gateway interface {
	PushPayment(ctx context.Context, phoneNumber string, amount int64, orderKey string) (*provider.Payment, error)
	Status(checkoutRequestID string) (*provider.StatusSnapshot, error)
	CancelPayment(checkoutRequestID string) error
	AccountRef() string
}

// OrderStore mutates and persists the order's payment plan.
type OrderStore interface {
	SetFullMpesa(o *engine.Order, amount int64, accountRef string) error
	SetMixed(o *engine.Order, cashAmount, mpesaAmount int64, accountRef string) error
	SwitchToCash(o *engine.Order) error
	Persist(o *engine.Order) error
	Reload(o *engine.Order) error
	Submit(o *engine.Order) error
}

const (
	DefaultPersistAttempts = 5
	DefaultPersistBackoff  = time.Second
)

type Config struct {
	PollInterval    time.Duration
	PollAttempts    int
	PersistAttempts int
	PersistBackoff  time.Duration
}

func (c *Config) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = provider.DefaultPollInterval
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = provider.DefaultPollAttempts
	}
	if c.PersistAttempts <= 0 {
		c.PersistAttempts = DefaultPersistAttempts
	}
	if c.PersistBackoff <= 0 {
		c.PersistBackoff = DefaultPersistBackoff
	}
}

func NewCheckout(order *engine.Order, orders OrderStore, gw Gateway, r pesapos.Reporter, cfg Config) *Checkout {
	cfg.setDefaults()
	c := &Checkout{
		cfg:    cfg,
		order:  order,
		orders: orders,
		gw:     gw,
		poller: provider.NewPoller(gw, cfg.PollInterval, cfg.PollAttempts),
		r:      r,
		s:      make(ffsm.Stack),
		state:  IDLE_CH,
		l:      zap.L().Named("checkout"),
	}
	c.load()
	return c
}

// Checkout drives the payment flow of a single order. The live push
// request, its polling context and the flow state are all per instance,
// so checkouts of different orders never share timer state.
type Checkout struct {
	cfg    Config
	order  *engine.Order
	orders OrderStore
	gw     Gateway
	poller *provider.Poller
	r      pesapos.Reporter
	s      ffsm.Stack
	l      *zap.Logger

	mu          sync.Mutex
	state       ffsm.State
	live        *provider.Payment
	receipt     string
	phone       string
	amount      int64
	paymentType provider.PaymentType
	cancelPoll  context.CancelFunc
	pollCh      <-chan provider.StatusSnapshot
}

// State current flow state.
func (c *Checkout) State() ffsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Order the order this flow drives.
func (c *Checkout) Order() *engine.Order {
	return c.order
}

type startRequest struct {
	Amount      int64
	PaymentType provider.PaymentType
	PhoneNumber string
}

// Start runs the payment flow: save, push, poll, finalize. For a full
// mpesa payment the single payment line is created here; for a mixed
// split the lines must already be on the order. Blocks until a terminal
// flow state is reached and returns it. All failures are absorbed into
// reports plus offered actions.
func (c *Checkout) Start(ctx context.Context, amount int64, paymentType provider.PaymentType, phoneNumber string) ffsm.State {
	ctx, span := trace.StartSpan(ctx, "checkout.Start")
	defer span.End()

	c.mu.Lock()

	if amount <= 0 {
		c.r.Report("Enter a valid M-Pesa amount.", pesapos.LevelError)
		st := c.state
		c.mu.Unlock()
		return st
	}
	if c.order.Status.Match(engine.SUBMITTED_O) {
		c.r.Report("Order is already submitted.", pesapos.LevelError)
		st := c.state
		c.mu.Unlock()
		return st
	}
	if !c.state.Match(IDLE_CH) {
		c.r.Report("Another payment is already in progress.", pesapos.LevelError)
		st := c.state
		c.mu.Unlock()
		return st
	}

	req := &startRequest{Amount: amount, PaymentType: paymentType, PhoneNumber: phoneNumber}
	if err := c.dispatch(ctx, SAVING_CH, req); err != nil {
		c.r.Report(err.Error(), pesapos.LevelError)
		st := c.state
		c.mu.Unlock()
		return st
	}
	c.phone = phoneNumber
	c.amount = amount
	c.paymentType = paymentType

	if err := c.dispatch(ctx, INITIATING_CH, req); err != nil {
		c.l.Warn("failed persist order", zap.Error(err))
		c.fail(ctx, "Failed to save the order. Payment was not started.",
			pesapos.ActionRetry, pesapos.ActionCancel)
		st := c.state
		c.mu.Unlock()
		return st
	}

	return c.push(ctx)
}

// Retry re-runs the push with the same phone, amount and type after a
// failure or timeout. The prior live request is discarded first.
func (c *Checkout) Retry(ctx context.Context) ffsm.State {
	ctx, span := trace.StartSpan(ctx, "checkout.Retry")
	defer span.End()

	c.mu.Lock()
	if !c.state.Match(FAILED_CH) && !c.state.Match(TIMEOUT_CH) {
		c.r.Report("Nothing to retry.", pesapos.LevelWarning)
		st := c.state
		c.mu.Unlock()
		return st
	}
	if err := c.dispatch(ctx, INITIATING_CH, nil); err != nil {
		c.r.Report(err.Error(), pesapos.LevelError)
		st := c.state
		c.mu.Unlock()
		return st
	}
	return c.push(ctx)
}

// push runs initiating → awaiting_confirmation and consumes the poll
// sequence. Expects c.mu held, releases it.
func (c *Checkout) push(ctx context.Context) ffsm.State {
	if err := c.dispatch(ctx, AWAITING_CH, nil); err != nil {
		desc := "Payment request was rejected."
		switch cause := errors.Cause(err); {
		case cause == pesapos.ErrInvalidPhone:
			desc = "Enter a valid M-Pesa phone number."
		default:
			if gerr, ok := cause.(*provider.GatewayError); ok {
				desc = gerr.Error()
			}
		}
		c.fail(ctx, desc, pesapos.ActionRetry, pesapos.ActionSwitchToCash, pesapos.ActionCancel)
		st := c.state
		c.mu.Unlock()
		return st
	}
	return c.await(ctx)
}

// await consumes the poll channel. Expects c.mu held on entry; the lock
// is released while waiting so Cancel and ManualCheck stay callable.
func (c *Checkout) await(ctx context.Context) ffsm.State {
	ch := c.pollCh
	c.mu.Unlock()

	for snap := range ch {
		snap := snap
		c.mu.Lock()
		if !c.state.Match(AWAITING_CH) {
			// canceled or manually finalized while waiting
			st := c.state
			c.mu.Unlock()
			return st
		}
		switch snap.Status {
		case provider.PENDING_P:
			c.r.Report(fmt.Sprintf("Waiting for customer confirmation... %s remaining.",
				snap.Remaining.Round(time.Second)), pesapos.LevelInfo)
			c.mu.Unlock()
		case provider.COMPLETED_P:
			if err := c.dispatch(ctx, FINALIZING_CH, &snap); err != nil {
				c.r.Report(err.Error(), pesapos.LevelError)
				st := c.state
				c.mu.Unlock()
				return st
			}
			st := c.finalize(ctx)
			c.mu.Unlock()
			return st
		case provider.TIMEOUT_P:
			if err := c.dispatch(ctx, TIMEOUT_CH, &snap); err != nil {
				c.r.Report(err.Error(), pesapos.LevelError)
			}
			st := c.state
			c.mu.Unlock()
			return st
		default: // FAILED_P, CANCELED_P
			desc := snap.ResultDesc
			if desc == "" {
				desc = "Payment was not completed."
			}
			c.fail(ctx, desc, pesapos.ActionRetry, pesapos.ActionSwitchToCash, pesapos.ActionCancel)
			st := c.state
			c.mu.Unlock()
			return st
		}
	}

	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	return st
}

// finalize runs finalizing → completed. Expects c.mu held.
func (c *Checkout) finalize(ctx context.Context) ffsm.State {
	if err := c.dispatch(ctx, COMPLETED_CH, nil); err != nil {
		c.l.Error("failed submit order",
			zap.String("order_key", c.order.Key),
			zap.Error(err),
		)
		// Деньги уже списаны, заказ не закрыт.
		c.failFrom(ctx, FINALIZING_CH,
			"Payment received but the order could not be submitted. Manual reconciliation required.",
			pesapos.ActionManualCheck, pesapos.ActionCancel)
	}
	return c.state
}

// SwitchToCash abandons the mobile money attempt and completes the
// order as a cash payment. Idempotent on a second invocation.
func (c *Checkout) SwitchToCash(ctx context.Context) ffsm.State {
	ctx, span := trace.StartSpan(ctx, "checkout.SwitchToCash")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Match(COMPLETED_CH) {
		return c.state
	}
	if !c.state.Match(FAILED_CH) && !c.state.Match(TIMEOUT_CH) {
		c.r.Report("Cannot switch to cash right now.", pesapos.LevelWarning)
		return c.state
	}
	if err := c.dispatch(ctx, CANCELED_CH, &switchToCash{}); err != nil {
		c.r.Report(err.Error(), pesapos.LevelError)
		return c.state
	}
	if err := c.dispatch(ctx, COMPLETED_CH, &switchToCash{}); err != nil {
		c.l.Warn("failed switch to cash", zap.Error(err))
		c.fail(ctx, "Failed to save the cash payment.", pesapos.ActionRetry, pesapos.ActionCancel)
	}
	return c.state
}

// Cancel stops the flow from any state except completed. Polling stops,
// the live request is discarded, the order and its payment lines are
// left exactly as they were. Nothing is persisted.
func (c *Checkout) Cancel(ctx context.Context) ffsm.State {
	ctx, span := trace.StartSpan(ctx, "checkout.Cancel")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Match(COMPLETED_CH) || c.state.Match(CANCELED_CH) {
		return c.state
	}
	if err := c.dispatch(ctx, CANCELED_CH, nil); err != nil {
		c.r.Report(err.Error(), pesapos.LevelError)
	}
	return c.state
}

// ManualCheck queries the status store once for the given push request
// and reports the result verbatim. A completed result drives the same
// finalizing path as a poll result would, independent of the live
// request.
func (c *Checkout) ManualCheck(ctx context.Context, checkoutRequestID string) ffsm.State {
	ctx, span := trace.StartSpan(ctx, "checkout.ManualCheck")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.gw.Status(checkoutRequestID)
	if err != nil {
		if errors.Cause(err) == pesapos.ErrPaymentNotFound {
			c.r.Report("No payment record found for this request.", pesapos.LevelWarning)
		} else {
			c.r.Report("Status check failed: "+err.Error(), pesapos.LevelError)
		}
		return c.state
	}

	switch snap.Status {
	case provider.COMPLETED_P:
		msg := "Payment completed."
		if snap.ReceiptNumber != "" {
			msg = fmt.Sprintf("Payment completed. Receipt %s.", snap.ReceiptNumber)
		}
		c.r.Report(msg, pesapos.LevelSuccess)
		if !c.state.Match(AWAITING_CH) && !c.state.Match(FAILED_CH) && !c.state.Match(TIMEOUT_CH) {
			return c.state
		}
		if err := c.dispatch(ctx, FINALIZING_CH, snap); err != nil {
			c.r.Report(err.Error(), pesapos.LevelError)
			return c.state
		}
		return c.finalize(ctx)
	case provider.PENDING_P:
		c.r.Report("Payment is still pending.", pesapos.LevelInfo)
	default:
		desc := snap.ResultDesc
		if desc == "" {
			desc = string(snap.Status)
		}
		c.r.Report("Payment not completed: "+desc, pesapos.LevelWarning)
	}
	return c.state
}

// fail reports a failure and moves the flow to failed with the given
// offered actions. Expects c.mu held.
func (c *Checkout) fail(ctx context.Context, desc string, actions ...pesapos.Action) {
	c.failFrom(ctx, c.state, desc, actions...)
}

func (c *Checkout) failFrom(ctx context.Context, src ffsm.State, desc string, actions ...pesapos.Action) {
	if err := c.dispatch(ctx, FAILED_CH, &failure{Desc: desc, Actions: actions}); err != nil {
		c.l.Error("failed dispatch to failed state",
			zap.String("src", src.String()),
			zap.Error(err),
		)
	}
}

type failure struct {
	Desc    string
	Actions []pesapos.Action
}

type switchToCash struct{}

func (c *Checkout) dispatch(ctx context.Context, dst ffsm.State, payload ffsm.Payload) error {
	fsm := ffsm.MachineFrom(c.s, &c.state)
	return fsm.Dispatch(ctx, dst, payload)
}

// stopPolling cancels the live poll context. No tick fires afterwards.
func (c *Checkout) stopPolling() {
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
	c.pollCh = nil
}
