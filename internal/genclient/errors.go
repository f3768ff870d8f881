// Package genclient – typed failure contract.
//
// Every failure crossing the client boundary is a *ProviderError with a
// machine-readable Kind. Callers classify by Kind (or errors.As), never by
// substring matching on error text.
package genclient

import "fmt"

// ErrorKind classifies a provider failure.
type ErrorKind string

// Provider failure kinds.
const (
	// KindTimeout covers per-attempt deadline expiry and cancelled contexts.
	KindTimeout ErrorKind = "timeout"
	// KindInsufficientCredits means the provider rejected the call for
	// billing reasons (HTTP 402).
	KindInsufficientCredits ErrorKind = "insufficient_credits"
	// KindBadRequest means the request itself was rejected (4xx other than
	// 402/429). Retrying the same payload cannot succeed.
	KindBadRequest ErrorKind = "bad_request"
	// KindProvider covers transient provider-side failures (5xx, 429,
	// network errors, malformed responses).
	KindProvider ErrorKind = "provider"
)

// ProviderError is the structured error returned by all client operations.
type ProviderError struct {
	Kind       ErrorKind
	Op         string // garment | edit | tryon | outfit
	StatusCode int    // last HTTP status observed, 0 for transport errors
	Attempts   int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("genclient: %s %s (status=%d attempts=%d): %v",
			e.Op, e.Kind, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("genclient: %s %s (status=%d attempts=%d)",
		e.Op, e.Kind, e.StatusCode, e.Attempts)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt against the provider could
// change the outcome. Per-attempt timeouts are retryable; the retry loop
// stops early when the caller's own context is done.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindProvider || e.Kind == KindTimeout
}
