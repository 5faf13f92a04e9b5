package service

import "errors"

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	ErrNotFound              = errors.New("document not found")
	ErrDonorRequired         = errors.New("please select a donor")
	ErrNotSubmitted          = errors.New("donation is not submitted")
	ErrAlreadySubmitted      = errors.New("donation is already submitted")
	ErrCancelled             = errors.New("donation is cancelled")
	ErrNotPaid               = errors.New("the payment for this donation is not paid, fill the payment details to generate an invoice")
	ErrInvoiceAlreadyLinked  = errors.New("an invoice is already linked to this document")
	ErrNoCustomer            = errors.New("no customer linked to donor")
	ErrSettingsIncomplete    = errors.New("non profit settings are incomplete")
	ErrNoLinkedItem          = errors.New("donor type has no linked item")
	ErrCustomerAlreadyLinked = errors.New("a customer is already linked to this donor")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidAmount         = errors.New("invalid donation amount")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
