// Package workflow – confirmation and billing gate.
//
// Billable actions (generate, edit, try-on) never run off the back of the
// message that requested them: the machine first quotes the credit cost and
// mints a single-use confirmation token, and only a confirm action carrying
// that exact token may proceed. Minting always replaces any prior token, and
// validation requires both the token and the pending action to match.
package workflow

import (
	"github.com/google/uuid"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// CostTable holds the per-action credit prices quoted to the user.
type CostTable struct {
	Generate int
	Edit     int
	TryOn    int
}

// DefaultCosts matches the production pricing: generation and edits cost two
// credits, a try-on costs four.
func DefaultCosts() CostTable {
	return CostTable{Generate: 2, Edit: 2, TryOn: 4}
}

// Cost returns the quoted price for a pending action; unknown actions are
// free, which only happens on programmer error and never bills.
func (t CostTable) Cost(pending string) int {
	switch pending {
	case PendingGenerate:
		return t.Generate
	case PendingEdit:
		return t.Edit
	case PendingTryOn:
		return t.TryOn
	}
	return 0
}

// BeginConfirmation moves the state into the confirming status for the given
// pending action, quoting cost and minting a fresh single-use token. Any
// previously outstanding token is replaced, never left valid.
func BeginConfirmation(s SessionState, pending string, cost int) SessionState {
	s.PendingAction = pending
	s.PendingCostCredits = cost
	s.ConfirmationToken = uuid.NewString()
	if pending == PendingTryOn {
		s.Status = domain.StatusTryOnConfirming
	} else {
		s.Status = domain.StatusConfirming
	}
	s.ErrorCode = ""
	return s
}

// ValidateConfirmation reports whether the supplied token may consume the
// pending action. It requires an exact match against the stored token and
// the expected pending action while the session sits in the matching
// confirming status. Any mismatch fails closed: the caller must surface
// INVALID_CONFIRMATION and leave the session untouched.
func ValidateConfirmation(s SessionState, supplied, expectedPending string) bool {
	if supplied == "" || s.ConfirmationToken == "" {
		return false
	}
	if s.PendingAction != expectedPending {
		return false
	}
	switch expectedPending {
	case PendingTryOn:
		if s.Status != domain.StatusTryOnConfirming {
			return false
		}
	default:
		if s.Status != domain.StatusConfirming {
			return false
		}
	}
	return supplied == s.ConfirmationToken
}
