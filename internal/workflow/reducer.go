// Package workflow – transition function.
//
// Reduce is pure: it maps the current session snapshot plus one turn of
// input to the next snapshot, the reply copy, and a list of effects for the
// engine to apply (claim-and-generate, save, outfit building). It performs
// no I/O and never touches the database, the ledger, or the generation
// client, which keeps every transition unit-testable without mocks.
package workflow

import "github.com/vestiq/go-wardrobe-backend/internal/domain"

// Effect is a side effect requested by the reducer and applied by the engine
// after the transition is decided.
type Effect interface{ isEffect() }

// EffectClaimGenerate asks the engine to claim the session (conditional
// update from FromStatus with Token) and run the billable generation for the
// pending action. The claim is the at-most-once guard: losers of the race
// answer without billing.
type EffectClaimGenerate struct {
	Pending    string // generate | edit | tryon
	Cost       int
	FromStatus string // status the claim must still observe
	Token      string // token the claim must still observe
}

// EffectSaveArtifact asks the engine to copy the session's artifact into the
// permanent inventory (idempotent).
type EffectSaveArtifact struct{}

// EffectBuildOutfit asks the engine to build and validate a three-slot
// outfit suggestion from the session's artifact plus the caller's inventory.
type EffectBuildOutfit struct{}

func (EffectClaimGenerate) isEffect() {}
func (EffectSaveArtifact) isEffect()  {}
func (EffectBuildOutfit) isEffect()   {}

// Result is the outcome of one reduction.
type Result struct {
	Next    SessionState
	Content string
	Effects []Effect

	// MissingFields lists the unfilled required fields for the chosen
	// strategy, in question order.
	MissingFields []string

	// ReportedStatus, when non-empty, overrides the persisted status in the
	// response envelope. Used for fail-closed replies (e.g., an invalid
	// confirmation reports "error" while the stored session stays put).
	ReportedStatus string
	ErrorCode      string
}

// Reducer holds the static pricing the transitions quote. It carries no
// mutable state and is safe for concurrent use.
type Reducer struct {
	Costs CostTable
}

// Reduce applies one turn to the session snapshot.
func (r Reducer) Reduce(s SessionState, in Input) Result {
	// Lazy expiry: anything but start on an expired session is an error turn
	// with collected state cleared.
	if in.Expired && in.Action != ActionStart {
		next := s.clearCollected()
		next.Status = domain.StatusError
		next.ErrorCode = CodeSessionExpired
		return Result{
			Next:      next,
			Content:   msgSessionExpired(),
			ErrorCode: CodeSessionExpired,
		}
	}

	switch in.Action {
	case ActionStart:
		return r.reduceStart(s, in)
	case ActionSubmit, ActionSelectStrategy:
		return r.reduceCollect(s, in)
	case ActionConfirmGen:
		return r.reduceConfirm(s, in, PendingGenerate)
	case ActionConfirmEdit:
		return r.reduceConfirm(s, in, PendingEdit)
	case ActionConfirmTryOn:
		return r.reduceConfirm(s, in, PendingTryOn)
	case ActionCancel:
		return r.reduceCancel(s)
	case ActionToggleAutosave:
		next := s
		next.AutosaveEnabled = !next.AutosaveEnabled
		return Result{Next: next, Content: msgAutosave(next.AutosaveEnabled)}
	case ActionRequestOutfit:
		if s.ArtifactID == "" {
			return Result{Next: s, Content: msgNeedArtifact()}
		}
		return Result{Next: s, Content: msgOutfitSuggestion(), Effects: []Effect{EffectBuildOutfit{}}}
	case ActionRequestEdit:
		return r.reduceRequestEdit(s, in)
	case ActionUploadSelfie:
		if s.ArtifactID == "" {
			return Result{Next: s, Content: msgNeedArtifact()}
		}
		next := s
		next.TryOnSelfieRef = firstNonEmpty(in.SelfieRef, in.Message)
		return Result{Next: next, Content: msgSelfieReceived()}
	case ActionRequestTryOn:
		return r.reduceRequestTryOn(s, in)
	case ActionSaveItem:
		if s.ArtifactID == "" {
			return Result{Next: s, Content: msgNeedArtifact()}
		}
		return Result{Next: s, Effects: []Effect{EffectSaveArtifact{}}}
	}

	// Unknown actions are filtered at the transport layer; reaching here is
	// a no-op turn.
	return Result{Next: s, Content: msgStarted()}
}

// reduceStart is the soft reset: pending action, token, and in-progress
// sub-action fields are dropped, while the artifact reference and autosave
// preference survive. Fresh free-text intent from this turn is kept.
func (r Reducer) reduceStart(s SessionState, in Input) Result {
	next := s.clearCollected()
	next.Status = domain.StatusIdle
	next.ErrorCode = ""
	next = mergeFields(next, in)
	return Result{Next: next, Content: msgStarted()}
}

// reduceCollect merges newly parsed fields, walks the strategy choice, and
// either asks the next missing-field question or quotes the generation cost.
func (r Reducer) reduceCollect(s SessionState, in Input) Result {
	// A free-text "no" while a quote is outstanding reads as a cancel.
	if s.Status == domain.StatusConfirming || s.Status == domain.StatusTryOnConfirming {
		if IsNegative(in.Message) {
			return r.reduceCancel(s)
		}
		// The quote stands; confirming requires the explicit confirm action
		// carrying the token.
		return Result{
			Next:    s,
			Content: msgConfirmQuote(s.PendingAction, s.PendingCostCredits),
		}
	}

	next := mergeFields(s, in)
	next.ErrorCode = ""

	if next.Strategy == "" {
		next.Status = domain.StatusChoosingMode
		return Result{Next: next, Content: msgChooseStrategy()}
	}

	missing := MissingFields(next.Strategy, next)
	if len(missing) > 0 {
		next.Status = domain.StatusCollecting
		return Result{
			Next:          next,
			Content:       NextQuestion(missing),
			MissingFields: missing,
		}
	}

	next = BeginConfirmation(next, PendingGenerate, r.Costs.Generate)
	return Result{
		Next:    next,
		Content: msgConfirmQuote(PendingGenerate, r.Costs.Generate),
	}
}

// reduceConfirm validates the supplied token and, when valid, emits the
// claim-and-generate effect. Invalid confirmations fail closed: the stored
// session is left untouched and the reply reports INVALID_CONFIRMATION.
func (r Reducer) reduceConfirm(s SessionState, in Input, pending string) Result {
	if !ValidateConfirmation(s, in.ConfirmationToken, pending) {
		return Result{
			Next:           s,
			Content:        msgInvalidConfirmation(),
			ReportedStatus: domain.StatusError,
			ErrorCode:      CodeInvalidConfirmation,
		}
	}

	next := s
	if pending == PendingTryOn {
		next.Status = domain.StatusTryOnGenerating
	} else {
		next.Status = domain.StatusGenerating
	}
	next.ConfirmationToken = ""
	next.ErrorCode = ""

	return Result{
		Next: next,
		Effects: []Effect{EffectClaimGenerate{
			Pending:    pending,
			Cost:       s.PendingCostCredits,
			FromStatus: s.Status,
			Token:      s.ConfirmationToken,
		}},
	}
}

// reduceCancel drops the pending sub-action. A session that already has an
// artifact returns to generated; otherwise it parks in cancelled (soft
// terminal, recoverable via start).
func (r Reducer) reduceCancel(s SessionState) Result {
	next := s.clearPending()
	next.ErrorCode = ""
	if next.ArtifactID != "" {
		next.Status = domain.StatusGenerated
		return Result{Next: next, Content: msgBackToGenerated()}
	}
	next.Status = domain.StatusCancelled
	return Result{Next: next, Content: msgCancelled()}
}

func (r Reducer) reduceRequestEdit(s SessionState, in Input) Result {
	if s.ArtifactID == "" {
		return Result{Next: s, Content: msgNeedArtifact()}
	}
	instruction := firstNonEmpty(in.EditInstruction, in.Message)
	next := s
	next.EditInstruction = truncateRunes(instruction, maxRequestTextRunes)
	next = BeginConfirmation(next, PendingEdit, r.Costs.Edit)
	return Result{
		Next:    next,
		Content: msgEditRecorded() + " " + msgConfirmQuote(PendingEdit, r.Costs.Edit),
	}
}

func (r Reducer) reduceRequestTryOn(s SessionState, in Input) Result {
	if s.ArtifactID == "" {
		return Result{Next: s, Content: msgNeedArtifact()}
	}
	next := s
	if ref := firstNonEmpty(in.SelfieRef, ""); ref != "" {
		next.TryOnSelfieRef = ref
	}
	if next.TryOnSelfieRef == "" {
		return Result{Next: s, Content: msgNeedSelfie()}
	}
	next = BeginConfirmation(next, PendingTryOn, r.Costs.TryOn)
	return Result{
		Next:    next,
		Content: msgConfirmQuote(PendingTryOn, r.Costs.TryOn),
	}
}

// mergeFields applies the turn's fields onto the snapshot. Explicit payload
// overrides beat parsed text; parsed text never erases a previously
// collected, non-empty field.
func mergeFields(s SessionState, in Input) SessionState {
	parsed := CollectFields(in.Message)

	s.Occasion = firstNonEmpty(in.Occasion, s.Occasion, parsed.Occasion)
	s.Style = firstNonEmpty(in.Style, s.Style, parsed.Style)
	s.Category = firstNonEmpty(in.Category, s.Category, parsed.Category)
	s.Strategy = firstNonEmpty(in.Strategy, s.Strategy, parsed.Strategy)
	if s.RequestText == "" && parsed.RequestText != "" {
		s.RequestText = parsed.RequestText
	}
	return s
}

// firstNonEmpty returns the first non-empty string from a variadic list.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
