package engine

import (
	"testing"

	"github.com/dukapos/pesapos"
)

func TestOrderManager_SetMixed(t *testing.T) {
	m := NewOrderManager(nil)

	tests := []struct {
		name  string
		total int64
		cash  int64
		mpesa int64
		err   error
	}{
		{"ExactSplit", 1000, 400, 600, nil},
		{"AllMpesa", 1000, 0, 1000, nil},
		{"SumTooSmall", 1000, 300, 600, pesapos.ErrAmountMismatch},
		{"SumTooLarge", 1000, 500, 600, pesapos.ErrAmountMismatch},
		{"NegativeCash", 1000, -100, 1100, pesapos.ErrAmountMismatch},
		{"ZeroMpesa", 1000, 1000, 0, pesapos.ErrZeroAmount},
		{"NegativeMpesa", 1000, 1100, -100, pesapos.ErrZeroAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{TotalAmount: tt.total}
			err := m.SetMixed(o, tt.cash, tt.mpesa, "M-Pesa Express")
			if err != tt.err {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if err != nil {
				if len(o.Payments) != 0 || o.PaidAmount != 0 {
					t.Errorf("order mutated on validation failure: %v", o.Payments)
				}
				return
			}
			if got := o.PaymentsTotal(); got != tt.total {
				t.Errorf("payments total = %d, want %d", got, tt.total)
			}
			if o.PaidAmount != tt.total {
				t.Errorf("paid amount = %d, want %d", o.PaidAmount, tt.total)
			}
			last := o.Payments[len(o.Payments)-1]
			if last.Mode != MPESA_PM || last.Amount != tt.mpesa {
				t.Errorf("last line = %+v, want mpesa %d", last, tt.mpesa)
			}
			if last.AccountRef == nil || *last.AccountRef != "M-Pesa Express" {
				t.Errorf("mpesa line without account ref: %+v", last)
			}
			if tt.cash > 0 {
				first := o.Payments[0]
				if first.Mode != CASH_PM || first.Amount != tt.cash {
					t.Errorf("first line = %+v, want cash %d", first, tt.cash)
				}
				if first.AccountRef != nil {
					t.Errorf("cash line with account ref: %+v", first)
				}
			}
		})
	}
}

func TestOrderManager_SetFullMpesa(t *testing.T) {
	m := NewOrderManager(nil)

	o := &Order{TotalAmount: 500}
	if err := m.SetFullMpesa(o, 500, "M-Pesa Express"); err != nil {
		t.Fatal(err)
	}
	if len(o.Payments) != 1 || o.Payments[0].Mode != MPESA_PM || o.Payments[0].Amount != 500 {
		t.Errorf("payments = %+v", o.Payments)
	}
	if o.Payments[0].BaseAmount != 500 {
		t.Errorf("base amount = %d, want 500", o.Payments[0].BaseAmount)
	}
	if o.PaidAmount != 500 {
		t.Errorf("paid amount = %d, want 500", o.PaidAmount)
	}

	if err := m.SetFullMpesa(o, 0, ""); err != pesapos.ErrZeroAmount {
		t.Errorf("err = %v, want ErrZeroAmount", err)
	}

	o.Status = SUBMITTED_O
	if err := m.SetFullMpesa(o, 500, ""); err != pesapos.ErrOrderSubmitted {
		t.Errorf("err = %v, want ErrOrderSubmitted", err)
	}
}

func TestOrderManager_SwitchToCash(t *testing.T) {
	m := NewOrderManager(nil)

	t.Run("FromMixed", func(t *testing.T) {
		o := &Order{TotalAmount: 1000}
		if err := m.SetMixed(o, 400, 600, "M-Pesa Express"); err != nil {
			t.Fatal(err)
		}
		if err := m.SwitchToCash(o); err != nil {
			t.Fatal(err)
		}
		if len(o.Payments) != 1 {
			t.Fatalf("payments = %+v, want single cash line", o.Payments)
		}
		if o.Payments[0].Mode != CASH_PM || o.Payments[0].Amount != 1000 {
			t.Errorf("cash line = %+v", o.Payments[0])
		}
	})

	t.Run("FromFull", func(t *testing.T) {
		o := &Order{TotalAmount: 700}
		if err := m.SetFullMpesa(o, 700, "M-Pesa Express"); err != nil {
			t.Fatal(err)
		}
		if err := m.SwitchToCash(o); err != nil {
			t.Fatal(err)
		}
		if len(o.Payments) != 1 || o.Payments[0].Mode != CASH_PM || o.Payments[0].Amount != 700 {
			t.Errorf("payments = %+v", o.Payments)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		o := &Order{TotalAmount: 900}
		if err := m.SetMixed(o, 300, 600, "M-Pesa Express"); err != nil {
			t.Fatal(err)
		}
		if err := m.SwitchToCash(o); err != nil {
			t.Fatal(err)
		}
		if err := m.SwitchToCash(o); err != nil {
			t.Fatal(err)
		}
		if len(o.Payments) != 1 || o.Payments[0].Amount != 900 {
			t.Errorf("payments after double switch = %+v", o.Payments)
		}
		if o.PaidAmount != 900 {
			t.Errorf("paid amount = %d, want 900", o.PaidAmount)
		}
	})
}
