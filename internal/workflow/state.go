// Package workflow implements the guided content-creation state machine: a
// server-held conversation that collects structured intent from free-text
// turns, quotes and confirms billable actions, invokes the generation
// service, and supports follow-on edit, try-on, and save actions.
//
// The package is split along a strict seam:
//   - state.go / fields.go / catalog.go / outfit.go / confirm.go hold pure,
//     I/O-free logic;
//   - reducer.go is the pure transition function (state, action, input) ->
//     (next state, effects);
//   - engine.go is the only place that touches the database, the credit
//     ledger, and the generation client, by interpreting reducer effects.
package workflow

import (
	"time"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// Action is one of the client-supplied verbs of the workflow protocol.
type Action string

// Workflow actions. Anything else is rejected at the transport layer.
const (
	ActionStart          Action = "start"
	ActionSubmit         Action = "submit"
	ActionSelectStrategy Action = "select_strategy"
	ActionConfirmGen     Action = "confirm_generate"
	ActionConfirmEdit    Action = "confirm_edit"
	ActionConfirmTryOn   Action = "confirm_tryon"
	ActionCancel         Action = "cancel"
	ActionToggleAutosave Action = "toggle_autosave"
	ActionRequestOutfit  Action = "request_outfit"
	ActionRequestEdit    Action = "request_edit"
	ActionUploadSelfie   Action = "upload_selfie"
	ActionRequestTryOn   Action = "request_tryon"
	ActionSaveItem       Action = "save_generated_item"
)

// KnownAction reports whether a is part of the protocol.
func KnownAction(a Action) bool {
	switch a {
	case ActionStart, ActionSubmit, ActionSelectStrategy,
		ActionConfirmGen, ActionConfirmEdit, ActionConfirmTryOn,
		ActionCancel, ActionToggleAutosave, ActionRequestOutfit,
		ActionRequestEdit, ActionUploadSelfie, ActionRequestTryOn,
		ActionSaveItem:
		return true
	}
	return false
}

// Creation strategies.
const (
	StrategyDirect = "direct"
	StrategyGuided = "guided"
)

// Pending billable actions.
const (
	PendingGenerate = "generate"
	PendingEdit     = "edit"
	PendingTryOn    = "tryon"
)

// Workflow error codes surfaced in the response envelope.
const (
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeGenerationTimeout   = "GENERATION_TIMEOUT"
	CodeGenerationFailed    = "GENERATION_FAILED"
	CodeTryOnFailed         = "TRYON_FAILED"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeInvalidConfirmation = "INVALID_CONFIRMATION"
)

// SessionState is the immutable in-memory snapshot the reducer operates on.
// It mirrors the persisted row minus identity and bookkeeping columns; the
// engine converts between the two at the turn boundary.
type SessionState struct {
	Status string

	Occasion    string
	Style       string
	Category    string
	RequestText string
	Strategy    string

	PendingAction      string
	PendingCostCredits int
	ConfirmationToken  string

	EditInstruction string
	TryOnSelfieRef  string
	TryOnResultRef  string

	ArtifactID      string
	AutosaveEnabled bool

	ErrorCode string
}

// StateFromRow converts a persisted session row into a reducer snapshot.
func StateFromRow(row *domain.WorkflowSession) SessionState {
	return SessionState{
		Status:             row.Status,
		Occasion:           row.Occasion,
		Style:              row.Style,
		Category:           row.Category,
		RequestText:        row.RequestText,
		Strategy:           row.Strategy,
		PendingAction:      row.PendingAction,
		PendingCostCredits: row.PendingCostCredits,
		ConfirmationToken:  row.ConfirmationToken,
		EditInstruction:    row.EditInstruction,
		TryOnSelfieRef:     row.TryOnSelfieRef,
		TryOnResultRef:     row.TryOnResultRef,
		ArtifactID:         row.ArtifactID,
		AutosaveEnabled:    row.AutosaveEnabled,
		ErrorCode:          row.ErrorCode,
	}
}

// ApplyToRow copies the snapshot back onto the persisted row.
func (s SessionState) ApplyToRow(row *domain.WorkflowSession) {
	row.Status = s.Status
	row.Occasion = s.Occasion
	row.Style = s.Style
	row.Category = s.Category
	row.RequestText = s.RequestText
	row.Strategy = s.Strategy
	row.PendingAction = s.PendingAction
	row.PendingCostCredits = s.PendingCostCredits
	row.ConfirmationToken = s.ConfirmationToken
	row.EditInstruction = s.EditInstruction
	row.TryOnSelfieRef = s.TryOnSelfieRef
	row.TryOnResultRef = s.TryOnResultRef
	row.ArtifactID = s.ArtifactID
	row.AutosaveEnabled = s.AutosaveEnabled
	row.ErrorCode = s.ErrorCode
}

// Input is everything a single turn brings to the reducer: the action, the
// free-text message, explicit field overrides, the supplied confirmation
// token, and references for edit/try-on flows. Expired is computed by the
// engine before reduction (lazy expiry check at the top of the turn).
type Input struct {
	Action  Action
	Message string

	// Explicit payload overrides; these beat parsed text.
	Occasion string
	Style    string
	Category string
	Strategy string

	ConfirmationToken string
	EditInstruction   string
	SelfieRef         string

	Expired bool
	Now     time.Time
}

// clearCollected wipes the collected intent and pending-action fields.
// Used on expiry, where the session must not leak stale state into a
// restarted conversation.
func (s SessionState) clearCollected() SessionState {
	s.Occasion = ""
	s.Style = ""
	s.Category = ""
	s.RequestText = ""
	s.Strategy = ""
	s.PendingAction = ""
	s.PendingCostCredits = 0
	s.ConfirmationToken = ""
	s.EditInstruction = ""
	s.TryOnSelfieRef = ""
	s.TryOnResultRef = ""
	return s
}

// clearPending drops only the pending billable action and its token.
func (s SessionState) clearPending() SessionState {
	s.PendingAction = ""
	s.PendingCostCredits = 0
	s.ConfirmationToken = ""
	return s
}
