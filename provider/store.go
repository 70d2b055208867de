package provider

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/dukapos/pesapos"
)

//go:generate reform

//reform:mpesa_payments
type Payment struct {
	PaymentID int64 `reform:"payment_id,pk"`

	// OrderKey идентификатор заказа во внешней системе.
	OrderKey string `reform:"order_key"`

	// CheckoutRequestID идентификатор push-запроса на стороне шлюза.
	CheckoutRequestID *string `reform:"checkout_request_id"`

	MerchantRequestID *string `reform:"merchant_request_id"`

	PhoneNumber string `reform:"phone_number"`

	Amount int64 `reform:"amount"`

	PaymentType PaymentType `reform:"payment_type"`

	Status PaymentStatus `reform:"status"`

	// ReceiptNumber номер квитанции M-Pesa, только для завершенных оплат.
	ReceiptNumber *string `reform:"receipt_number"`

	ResultDesc *string `reform:"result_desc"`

	UpdatedAt time.Time `reform:"updated_at"`
	CreatedAt time.Time `reform:"created_at"`
}

func (p *Payment) BeforeInsert() error {
	p.UpdatedAt = time.Now()
	p.CreatedAt = time.Now()
	if p.Status == "" {
		p.Status = PENDING_P
	}
	return nil
}

func (p *Payment) BeforeUpdate() error {
	p.UpdatedAt = time.Now()
	return nil
}

// Snapshot converts the stored record into a status observation.
func (p *Payment) Snapshot() *StatusSnapshot {
	snap := &StatusSnapshot{Status: p.Status}
	if p.ReceiptNumber != nil {
		snap.ReceiptNumber = *p.ReceiptNumber
	}
	if p.ResultDesc != nil {
		snap.ResultDesc = *p.ResultDesc
	}
	return snap
}

// Store keeps payment records written by the gateway side channel and
// read by the status poller.
type Store struct {
	DB *reform.DB
}

func (s *Store) Create(p *Payment) error {
	if err := s.DB.Insert(p); err != nil {
		return errors.Wrap(err, "failed insert mpesa payment")
	}
	return nil
}

func (s *Store) GetByCheckoutRequestID(checkoutRequestID string) (*Payment, error) {
	var p Payment
	err := s.DB.SelectOneTo(&p, "WHERE checkout_request_id = $1", checkoutRequestID)
	if err != nil {
		if err == reform.ErrNoRows {
			return nil, pesapos.ErrPaymentNotFound
		}
		return nil, errors.Wrap(err, "failed get mpesa payment")
	}
	return &p, nil
}

// SetResult records a terminal status reported by the gateway callback.
func (s *Store) SetResult(checkoutRequestID string, status PaymentStatus, receiptNumber, resultDesc *string) error {
	p, err := s.GetByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return err
	}
	p.Status = status
	p.ReceiptNumber = receiptNumber
	p.ResultDesc = resultDesc
	if err := s.DB.Save(p); err != nil {
		return errors.Wrap(err, "failed save mpesa payment")
	}
	return nil
}

// Cancel marks a non-terminal payment canceled, used before re-sending a
// push for the same order.
func (s *Store) Cancel(checkoutRequestID string) error {
	p, err := s.GetByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return nil
	}
	p.Status = CANCELED_P
	if err := s.DB.Save(p); err != nil {
		return errors.Wrap(err, "failed save mpesa payment")
	}
	return nil
}
