package pesapos

import "errors"

var (
	ErrZeroAmount      = errors.New("amount must be greater than zero")
	ErrAmountMismatch  = errors.New("payment lines do not equal order total")
	ErrOrderSubmitted  = errors.New("order already submitted")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrFlowInProgress  = errors.New("payment flow already in progress")
)
