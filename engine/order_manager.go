package engine

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/reform.v1"

	"github.com/dukapos/pesapos"
)

func NewOrderManager(db *reform.DB) *OrderManager {
	return &OrderManager{
		db:     db,
		logger: zap.L().Named("order_manager"),
	}
}

// OrderManager mutates the payment plan of an order and persists it.
// Line mutations are in-memory; nothing reaches the database until Persist.
type OrderManager struct {
	db     *reform.DB
	logger *zap.Logger
}

// SetFullMpesa replaces all payment lines with a single mpesa line of amount.
//
// Common errors:
// - ErrZeroAmount - amount is not positive
// - ErrOrderSubmitted - order is locked
func (m *OrderManager) SetFullMpesa(o *Order, amount int64, accountRef string) error {
	if amount <= 0 {
		return pesapos.ErrZeroAmount
	}
	if o.Status.Match(SUBMITTED_O) {
		return pesapos.ErrOrderSubmitted
	}
	ref := accountRef
	o.Payments = []PaymentLine{
		{Mode: MPESA_PM, Amount: amount, BaseAmount: amount, AccountRef: &ref, Position: 0},
	}
	o.PaidAmount = amount
	return nil
}

// SetMixed replaces all payment lines with a cash line (if cashAmount > 0)
// and a mpesa line. Requires cashAmount + mpesaAmount == TotalAmount exactly.
// The order is left unmutated on validation failure.
//
// Common errors:
// - ErrZeroAmount - mpesa amount is not positive
// - ErrAmountMismatch - amounts do not sum to order total
// - ErrOrderSubmitted - order is locked
func (m *OrderManager) SetMixed(o *Order, cashAmount, mpesaAmount int64, accountRef string) error {
	if o.Status.Match(SUBMITTED_O) {
		return pesapos.ErrOrderSubmitted
	}
	if mpesaAmount <= 0 {
		return pesapos.ErrZeroAmount
	}
	if cashAmount < 0 || cashAmount+mpesaAmount != o.TotalAmount {
		return pesapos.ErrAmountMismatch
	}
	lines := make([]PaymentLine, 0, 2)
	if cashAmount > 0 {
		lines = append(lines, PaymentLine{Mode: CASH_PM, Amount: cashAmount, BaseAmount: cashAmount})
	}
	ref := accountRef
	lines = append(lines, PaymentLine{Mode: MPESA_PM, Amount: mpesaAmount, BaseAmount: mpesaAmount, AccountRef: &ref})
	for i := range lines {
		lines[i].Position = int32(i)
	}
	o.Payments = lines
	o.PaidAmount = o.TotalAmount
	return nil
}

// SwitchToCash removes mpesa lines and makes the cash line cover the full
// total, creating it if absent. Safe to call twice.
func (m *OrderManager) SwitchToCash(o *Order) error {
	if o.Status.Match(SUBMITTED_O) {
		return pesapos.ErrOrderSubmitted
	}
	lines := o.Payments[:0]
	for _, l := range o.Payments {
		if l.Mode.Match(MPESA_PM) {
			continue
		}
		lines = append(lines, l)
	}
	var cash *PaymentLine
	for i := range lines {
		if lines[i].Mode.Match(CASH_PM) {
			cash = &lines[i]
			break
		}
	}
	if cash != nil {
		cash.Amount = o.TotalAmount
		cash.BaseAmount = o.TotalAmount
	} else {
		lines = append(lines, PaymentLine{Mode: CASH_PM, Amount: o.TotalAmount, BaseAmount: o.TotalAmount})
	}
	for i := range lines {
		lines[i].Position = int32(i)
	}
	o.Payments = lines
	o.PaidAmount = o.TotalAmount
	return nil
}

// Persist saves the order and replaces its payment line rows in one
// transaction. The order key is assigned on first save.
func (m *OrderManager) Persist(o *Order) error {
	if o.Key == "" {
		o.Key = uuid.New().String()
	}
	err := m.db.InTransaction(func(tx *reform.TX) error {
		if err := tx.Save(o); err != nil {
			return errors.Wrap(err, "failed save order")
		}
		if _, err := tx.DeleteFrom(PaymentLineTable, "WHERE order_id = $1", o.OrderID); err != nil {
			return errors.Wrap(err, "failed delete payment lines")
		}
		for i := range o.Payments {
			o.Payments[i].LineID = 0
			o.Payments[i].OrderID = o.OrderID
			if err := tx.Insert(&o.Payments[i]); err != nil {
				return errors.Wrap(err, "failed insert payment line")
			}
		}
		return nil
	})
	if err != nil {
		m.logger.Error("Failed persist order.",
			zap.String("order_key", o.Key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Reload re-reads the order row, the read-after-write visibility check
// used by the orchestrator after Persist.
func (m *OrderManager) Reload(o *Order) error {
	if err := m.db.Reload(o); err != nil {
		if err == reform.ErrNoRows {
			return err
		}
		return errors.Wrap(err, "failed reload order")
	}
	return nil
}

// Submit locks the order. The payment plan must cover the total exactly.
//
// Common errors:
// - ErrOrderSubmitted - already submitted
// - ErrAmountMismatch - payment lines do not sum to total
func (m *OrderManager) Submit(o *Order) error {
	if o.Status.Match(SUBMITTED_O) {
		return pesapos.ErrOrderSubmitted
	}
	if len(o.Payments) == 0 || o.PaymentsTotal() != o.TotalAmount {
		return pesapos.ErrAmountMismatch
	}
	o.Status = SUBMITTED_O
	if err := m.db.Save(o); err != nil {
		o.Status = DRAFT_O
		m.logger.Error("Failed submit order.",
			zap.String("order_key", o.Key),
			zap.Error(err),
		)
		return errors.Wrap(err, "failed submit order")
	}
	return nil
}
