package usecase

import "errors"

var (
	// ErrInvalidRequest: missing or empty session id / empty cart.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSessionNotFound: the provider could not locate the session.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrPaymentIncomplete: the session exists but has not been paid.
	ErrPaymentIncomplete = errors.New("payment not completed")
	// ErrPersistence: the order insert failed for a reason other than a
	// duplicate-session conflict.
	ErrPersistence = errors.New("order persistence failed")
	// ErrNoRecipient: confirmation requested without a customer email.
	ErrNoRecipient = errors.New("no recipient email")
	// ErrDuplicateKey: a concurrent checkout-create with the same
	// idempotency key already holds the lock.
	ErrDuplicateKey = errors.New("duplicate idempotency key")
)
