// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically. Workflow-level error codes (INSUFFICIENT_CREDITS,
// SESSION_EXPIRED, ...) travel inside the workflow envelope instead; the
// codes below cover the transport layer only.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodePayloadLarge = "payload_too_large"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAssistFailed     = "assist_failed"
	ErrCodeBudgetLimited    = "budget_limited"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
