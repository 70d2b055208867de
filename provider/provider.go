package provider

import (
	"time"
)

type Provider string

func (p Provider) Match(in Provider) bool {
	return p == in
}

const (
	UNKNOWN_PROVIDER Provider = ""
	MPESA            Provider = "mpesa"
)

type PaymentStatus string

func (s PaymentStatus) Match(in PaymentStatus) bool {
	return s == in
}

// Terminal reports whether the status ends a payment attempt.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case COMPLETED_P, FAILED_P, TIMEOUT_P, CANCELED_P:
		return true
	}
	return false
}

const (
	PENDING_P   PaymentStatus = "pending"
	COMPLETED_P PaymentStatus = "completed"
	FAILED_P    PaymentStatus = "failed"

	// TIMEOUT_P client-side deadline, never reported by the side channel.
	TIMEOUT_P PaymentStatus = "timeout"

	CANCELED_P PaymentStatus = "canceled"
)

type PaymentType string

const (
	FULL_PT   PaymentType = "full"
	MIXED_PT  PaymentType = "mixed"
	MANUAL_PT PaymentType = "manual_check"
)

// StatusSnapshot one observation of a payment request status.
type StatusSnapshot struct {
	Status        PaymentStatus
	ReceiptNumber string
	ResultDesc    string

	// Remaining time left in the polling window at the moment of the
	// observation, zero outside of polling.
	Remaining time.Duration
}

// GatewayError push payment rejected or unreachable.
type GatewayError struct {
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	if e.Description == "" {
		return "push payment failed"
	}
	return e.Description
}
