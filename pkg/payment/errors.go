package payment

import "errors"

var (
	ErrInvalidAmount    = errors.New("payment: amount must be positive")
	ErrNoCurrency       = errors.New("payment: currency is required")
	ErrInProgress       = errors.New("payment: a charge is already processing")
	ErrUnknownProcessor = errors.New("payment: unknown processor")
	ErrNoSecretKey      = errors.New("payment: stripe secret key is required")
	ErrNoPaymentMethod  = errors.New("payment: payment method is required")
	ErrNotSucceeded     = errors.New("payment: charge did not succeed")
)
