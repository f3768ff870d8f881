// Package services holds the business logic above the repositories: the
// plain single-shot assist path (idempotency ledger + content-hash cache)
// and the reference credit ledger. This file centralizes service-level error
// values; translation into HTTP status codes happens at the handler layer.
package services

import "errors"

var (
	// ErrInsufficientCredits is returned when the user's daily credit budget
	// cannot cover the requested work. No charge has happened.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrEmptyMessage is returned when an assist request carries no text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when an assist request exceeds the
	// maximum accepted length.
	ErrMessageTooLong = errors.New("message too long")
)
