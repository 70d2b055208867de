package engine

import (
	"time"
)

//go:generate reform

type OrderStatus string

func (s OrderStatus) Match(in OrderStatus) bool {
	return s == in
}

const (
	DRAFT_O     OrderStatus = "draft"
	SUBMITTED_O OrderStatus = "submitted"
)

type PaymentMode string

func (s PaymentMode) Match(in PaymentMode) bool {
	return s == in
}

const (
	CASH_PM  PaymentMode = "cash"
	MPESA_PM PaymentMode = "mpesa"
)

//reform:pos_orders
type Order struct {
	OrderID int64 `reform:"order_id,pk"`

	// Key внешний идентификатор заказа, назначается при первом сохранении.
	Key string `reform:"key"`

	TotalAmount int64 `reform:"total_amount"`

	// PaidAmount сумма всех строк оплаты.
	PaidAmount int64 `reform:"paid_amount"`

	Status OrderStatus `reform:"status"`

	UpdatedAt time.Time `reform:"updated_at"`
	CreatedAt time.Time `reform:"created_at"`

	// Payments строки оплаты заказа, порядок добавления = порядок отображения.
	// Сохраняются отдельными записями при Persist.
	Payments []PaymentLine
}

func (o *Order) BeforeInsert() error {
	o.UpdatedAt = time.Now()
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = DRAFT_O
	}
	return nil
}

func (o *Order) BeforeUpdate() error {
	o.UpdatedAt = time.Now()
	return nil
}

// Persisted reports whether the order has been saved at least once.
func (o *Order) Persisted() bool {
	return o.OrderID != 0
}

// PaymentsTotal sum of all payment lines.
func (o *Order) PaymentsTotal() int64 {
	var total int64
	for _, l := range o.Payments {
		total += l.Amount
	}
	return total
}

//reform:pos_order_payments
type PaymentLine struct {
	LineID  int64 `reform:"line_id,pk"`
	OrderID int64 `reform:"order_id"`

	Mode PaymentMode `reform:"mode"`

	Amount int64 `reform:"amount"`

	// BaseAmount зеркало Amount, поле для конвертации валют.
	BaseAmount int64 `reform:"base_amount"`

	// AccountRef счет зачисления, только для mpesa.
	AccountRef *string `reform:"account_ref"`

	// Position порядок отображения строки.
	Position int32 `reform:"position"`

	UpdatedAt time.Time `reform:"updated_at"`
	CreatedAt time.Time `reform:"created_at"`
}

func (l *PaymentLine) BeforeInsert() error {
	l.UpdatedAt = time.Now()
	l.CreatedAt = time.Now()
	return nil
}

func (l *PaymentLine) BeforeUpdate() error {
	l.UpdatedAt = time.Now()
	return nil
}
