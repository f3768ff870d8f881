// Package workflow – Engine
//
// The Engine is the effect interpreter around the pure reducer: it loads the
// session row, runs the reduction, and applies the requested effects against
// the database, the credit ledger, and the generation client. It is the only
// code in the package that performs I/O.
//
// The at-most-once billing guarantee lives here: a confirm turn first claims
// the session with a conditional update (expected status plus expected
// token), and only the single winner of that race runs the billable call and
// charges credits. Losers answer from the fresh row without billing.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
)

// ErrSessionConflict is returned when a session row cannot be read back
// after a lost claim; callers should surface an internal error.
var ErrSessionConflict = errors.New("workflow: session conflict")

// SessionStore defines the persistence contract required by the Engine.
// Implementations are expected to proxy the repo package free functions.
type SessionStore interface {
	// GetSession fetches the session row for (userID, sessionID).
	GetSession(ctx context.Context, db *gorm.DB, userID, sessionID string) (*domain.WorkflowSession, error)

	// CreateSession inserts a fresh idle session with the given TTL.
	CreateSession(ctx context.Context, db *gorm.DB, userID, sessionID string, ttl time.Duration) (*domain.WorkflowSession, error)

	// SaveSession persists the row and pushes its expiry forward.
	SaveSession(ctx context.Context, db *gorm.DB, s *domain.WorkflowSession, ttl time.Duration) error

	// ClaimSession performs the conditional update that guards billable
	// work. It reports whether this caller won the claim.
	ClaimSession(ctx context.Context, db *gorm.DB, rowID, expectedStatus, expectedToken string, updates map[string]any) (bool, error)

	// GetArtifact fetches an artifact owned by the user.
	GetArtifact(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GeneratedArtifact, error)

	// CreateArtifact inserts a generated artifact.
	CreateArtifact(ctx context.Context, db *gorm.DB, a *domain.GeneratedArtifact) error

	// MarkArtifactSaved flags the artifact as copied to inventory.
	MarkArtifactSaved(ctx context.Context, db *gorm.DB, id string) error

	// CreateInventoryItem inserts a permanent inventory item.
	CreateInventoryItem(ctx context.Context, db *gorm.DB, item *domain.InventoryItem) error

	// FindItemByArtifact locates a prior save of the artifact, if any.
	FindItemByArtifact(ctx context.Context, db *gorm.DB, userID, artifactID string) (*domain.InventoryItem, error)
}

// Generator is the generation-provider contract required by the Engine.
// *genclient.Client satisfies it; tests substitute fakes.
type Generator interface {
	GenerateGarment(ctx context.Context, req genclient.GarmentRequest) (*genclient.GarmentResult, error)
	EditGarment(ctx context.Context, req genclient.EditRequest) (*genclient.GarmentResult, error)
	TryOn(ctx context.Context, req genclient.TryOnRequest) (string, error)
	SuggestOutfit(ctx context.Context, req genclient.OutfitRequest) (*genclient.OutfitCandidate, error)
}

// CreditLedger is the billing contract. CanSpend is checked after the claim
// and before the provider call; Spend is recorded only after success.
type CreditLedger interface {
	CanSpend(ctx context.Context, userID string, amount int) (bool, error)
	Spend(ctx context.Context, userID string, amount int) error
}

// Engine drives one workflow turn end to end.
type Engine struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store proxies the session/artifact/inventory repository.
	Store SessionStore
	// Gen is the generation provider client.
	Gen Generator
	// Credits is the billing ledger.
	Credits CreditLedger

	// Costs quotes the billable actions.
	Costs CostTable
	// SessionTTL is pushed forward on every persisted turn.
	SessionTTL time.Duration
	// MaxInventoryItems caps the snapshot offered to the outfit builder.
	MaxInventoryItems int

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// TurnRequest is one client turn against a session.
type TurnRequest struct {
	UserID    string
	SessionID string
	Action    Action
	Message   string

	Occasion string
	Style    string
	Category string
	Strategy string

	ConfirmationToken string
	EditInstruction   string
	SelfieRef         string

	// Inventory is the caller's current wardrobe snapshot, used only by
	// outfit suggestion turns.
	Inventory []SnapshotItem
}

// TurnResult is the workflow portion of the response envelope.
type TurnResult struct {
	Content       string
	Status        string
	ErrorCode     string
	MissingFields []string

	Strategy        string
	Occasion        string
	Style           string
	Category        string
	RequestText     string
	EditInstruction string

	PendingAction     string
	PendingCost       int
	ConfirmationToken string

	CreditsUsed     int
	AutosaveEnabled bool

	Artifact       *domain.GeneratedArtifact
	TryOnResultRef string
	Suggestion     *OutfitSuggestion
	Warnings       []string
}

// HandleTurn runs one turn: load (or create) the session, reduce, apply
// effects, persist, and shape the reply.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	ctx, span := otel.Tracer("workflow").Start(ctx, "Engine.HandleTurn")
	defer span.End()
	span.SetAttributes(attribute.String("workflow.action", string(req.Action)))

	now := e.now()

	row, err := e.Store.GetSession(ctx, e.DB, req.UserID, req.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row, err = e.Store.CreateSession(ctx, e.DB, req.UserID, req.SessionID, e.SessionTTL)
	}
	if err != nil {
		return nil, err
	}

	state := StateFromRow(row)
	in := Input{
		Action:            req.Action,
		Message:           req.Message,
		Occasion:          req.Occasion,
		Style:             req.Style,
		Category:          req.Category,
		Strategy:          req.Strategy,
		ConfirmationToken: req.ConfirmationToken,
		EditInstruction:   req.EditInstruction,
		SelfieRef:         req.SelfieRef,
		Expired:           now.After(row.ExpiresAt),
		Now:               now,
	}

	res := Reducer{Costs: e.Costs}.Reduce(state, in)
	turnsTotal.WithLabelValues(string(req.Action)).Inc()

	out := &TurnResult{
		Content:         res.Content,
		ErrorCode:       res.ErrorCode,
		MissingFields:   res.MissingFields,
		CreditsUsed:     0,
		AutosaveEnabled: res.Next.AutosaveEnabled,
	}

	persisted := false
	for _, eff := range res.Effects {
		switch eff := eff.(type) {
		case EffectClaimGenerate:
			done, err := e.applyClaimGenerate(ctx, row, res.Next, eff, out)
			if err != nil {
				return nil, err
			}
			persisted = done
		case EffectSaveArtifact:
			if err := e.applySave(ctx, row, out); err != nil {
				return nil, err
			}
		case EffectBuildOutfit:
			if err := e.applyOutfit(ctx, row, req.Inventory, out); err != nil {
				return nil, err
			}
		}
	}

	if !persisted {
		final := res.Next
		if final != state {
			final.ApplyToRow(row)
			if err := e.Store.SaveSession(ctx, e.DB, row, e.SessionTTL); err != nil {
				return nil, err
			}
		}
		out.fillFromState(final)
	}

	if res.ReportedStatus != "" {
		out.Status = res.ReportedStatus
	}
	if out.Status == domain.StatusGenerated && out.Artifact == nil && row.ArtifactID != "" {
		if a, err := e.Store.GetArtifact(ctx, e.DB, row.ArtifactID, req.UserID); err == nil {
			out.Artifact = a
		}
	}
	return out, nil
}

// applyClaimGenerate interprets the claim-and-generate effect. It returns
// true when the session has been persisted (the claim path always persists
// its own outcome).
func (e *Engine) applyClaimGenerate(ctx context.Context, row *domain.WorkflowSession, next SessionState, eff EffectClaimGenerate, out *TurnResult) (bool, error) {
	updates := map[string]any{
		"status":             next.Status,
		"confirmation_token": "",
		"error_code":         "",
	}
	claimed, err := e.Store.ClaimSession(ctx, e.DB, row.ID, eff.FromStatus, eff.Token, updates)
	if err != nil {
		return false, err
	}

	if !claimed {
		return true, e.answerLostClaim(ctx, row, out)
	}

	row.Status = next.Status
	row.ConfirmationToken = ""
	row.ErrorCode = ""

	ok, err := e.Credits.CanSpend(ctx, row.UserID, eff.Cost)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, e.failGeneration(ctx, row, eff.Pending, CodeInsufficientCredits, out)
	}

	switch eff.Pending {
	case PendingGenerate:
		err = e.runGenerate(ctx, row, out)
	case PendingEdit:
		err = e.runEdit(ctx, row, out)
	case PendingTryOn:
		err = e.runTryOn(ctx, row, out)
	}
	if err != nil {
		var pe *genclient.ProviderError
		code := CodeGenerationFailed
		if eff.Pending == PendingTryOn {
			code = CodeTryOnFailed
		}
		if errors.As(err, &pe) {
			switch pe.Kind {
			case genclient.KindTimeout:
				code = CodeGenerationTimeout
			case genclient.KindInsufficientCredits:
				code = CodeInsufficientCredits
			}
		} else {
			// Non-provider failure (persistence) after a won claim. Park the
			// row in error before surfacing it, otherwise the session stays
			// in generating with its token consumed. No charge has happened.
			if serr := e.failGeneration(ctx, row, eff.Pending, code, out); serr != nil {
				log.Ctx(ctx).Error().Err(serr).
					Str("session_id", row.SessionID).
					Msg("session not parked after internal failure")
			}
			return false, err
		}
		generationOutcomes.WithLabelValues(eff.Pending, "failure").Inc()
		log.Ctx(ctx).Warn().Err(err).
			Str("pending", eff.Pending).
			Str("session_id", row.SessionID).
			Msg("generation failed")
		return true, e.failGeneration(ctx, row, eff.Pending, code, out)
	}

	if err := e.Credits.Spend(ctx, row.UserID, eff.Cost); err != nil {
		// The artifact exists; losing the usage row is preferable to double
		// charging on retry. Record and continue.
		log.Ctx(ctx).Error().Err(err).Str("user_id", row.UserID).Msg("credit spend not recorded")
	}
	generationOutcomes.WithLabelValues(eff.Pending, "success").Inc()
	creditsCharged.Add(float64(eff.Cost))
	out.CreditsUsed = eff.Cost

	row.PendingAction = ""
	row.PendingCostCredits = 0
	row.Status = domain.StatusGenerated
	if err := e.Store.SaveSession(ctx, e.DB, row, e.SessionTTL); err != nil {
		return false, err
	}
	out.fillFromState(StateFromRow(row))
	return true, nil
}

// answerLostClaim shapes the reply for a confirm turn that lost the race.
// No billing happens on this path.
func (e *Engine) answerLostClaim(ctx context.Context, row *domain.WorkflowSession, out *TurnResult) error {
	fresh, err := e.Store.GetSession(ctx, e.DB, row.UserID, row.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionConflict
		}
		return err
	}
	*row = *fresh

	switch fresh.Status {
	case domain.StatusGenerated:
		out.Content = msgAlreadyGenerated()
		out.fillFromState(StateFromRow(fresh))
		if fresh.ArtifactID != "" {
			if a, aerr := e.Store.GetArtifact(ctx, e.DB, fresh.ArtifactID, fresh.UserID); aerr == nil {
				out.Artifact = a
			}
		}
	case domain.StatusGenerating, domain.StatusTryOnGenerating:
		out.Content = msgInProgress()
		out.fillFromState(StateFromRow(fresh))
	default:
		out.Content = msgInvalidConfirmation()
		out.fillFromState(StateFromRow(fresh))
		out.Status = domain.StatusError
		out.ErrorCode = CodeInvalidConfirmation
	}
	return nil
}

// failGeneration parks the session in error with the classified code. The
// collected intent survives so the user can re-request and re-confirm.
func (e *Engine) failGeneration(ctx context.Context, row *domain.WorkflowSession, pending, code string, out *TurnResult) error {
	row.Status = domain.StatusError
	row.ErrorCode = code
	row.PendingAction = ""
	row.PendingCostCredits = 0
	row.ConfirmationToken = ""
	if err := e.Store.SaveSession(ctx, e.DB, row, e.SessionTTL); err != nil {
		return err
	}
	out.Content = msgGenerationFailed(code)
	out.ErrorCode = code
	out.fillFromState(StateFromRow(row))
	return nil
}

func (e *Engine) runGenerate(ctx context.Context, row *domain.WorkflowSession, out *TurnResult) error {
	res, err := e.Gen.GenerateGarment(ctx, genclient.GarmentRequest{
		Occasion:    row.Occasion,
		Style:       row.Style,
		Category:    row.Category,
		RequestText: row.RequestText,
		Strategy:    row.Strategy,
	})
	if err != nil {
		return err
	}
	artifact, err := e.persistArtifact(ctx, row, res)
	if err != nil {
		return err
	}
	out.Artifact = artifact
	out.Content = msgGenerated()
	return nil
}

func (e *Engine) runEdit(ctx context.Context, row *domain.WorkflowSession, out *TurnResult) error {
	prev, err := e.Store.GetArtifact(ctx, e.DB, row.ArtifactID, row.UserID)
	if err != nil {
		return err
	}
	res, err := e.Gen.EditGarment(ctx, genclient.EditRequest{
		ImageRef:    prev.ImageRef,
		Instruction: row.EditInstruction,
	})
	if err != nil {
		return err
	}
	// Edits inherit slot metadata from the source artifact.
	if res.Category == "" {
		res.Category = prev.Category
	}
	if res.Subcategory == "" {
		res.Subcategory = prev.Subcategory
	}
	if len(res.StyleTags) == 0 {
		res.StyleTags = prev.StyleTags
	}
	artifact, err := e.persistArtifact(ctx, row, res)
	if err != nil {
		return err
	}
	row.EditInstruction = ""
	out.Artifact = artifact
	out.Content = msgGenerated()
	return nil
}

func (e *Engine) runTryOn(ctx context.Context, row *domain.WorkflowSession, out *TurnResult) error {
	artifact, err := e.Store.GetArtifact(ctx, e.DB, row.ArtifactID, row.UserID)
	if err != nil {
		return err
	}
	ref, err := e.Gen.TryOn(ctx, genclient.TryOnRequest{
		GarmentRef: artifact.ImageRef,
		SelfieRef:  row.TryOnSelfieRef,
	})
	if err != nil {
		return err
	}
	row.TryOnResultRef = ref
	out.TryOnResultRef = ref
	out.Artifact = artifact
	out.Content = msgTryOnDone()
	return nil
}

// persistArtifact stores the generation result, points the session at it,
// and autosaves to inventory when the preference is on.
func (e *Engine) persistArtifact(ctx context.Context, row *domain.WorkflowSession, res *genclient.GarmentResult) (*domain.GeneratedArtifact, error) {
	artifact := &domain.GeneratedArtifact{
		ID:           uuid.NewString(),
		UserID:       row.UserID,
		SessionID:    row.SessionID,
		ImageRef:     res.ImageRef,
		Category:     res.Category,
		Subcategory:  res.Subcategory,
		PrimaryColor: res.PrimaryColor,
		StyleTags:    res.StyleTags,
		Seasons:      res.Seasons,
		Prompt:       res.Prompt,
	}
	if err := e.Store.CreateArtifact(ctx, e.DB, artifact); err != nil {
		return nil, err
	}
	row.ArtifactID = artifact.ID

	if row.AutosaveEnabled {
		if _, err := e.saveToInventory(ctx, row, artifact); err != nil {
			// Autosave is best effort; an explicit save can still follow.
			log.Ctx(ctx).Warn().Err(err).Str("artifact_id", artifact.ID).Msg("autosave failed")
		}
	}
	return artifact, nil
}

// applySave copies the session's artifact into the permanent inventory.
// Saving twice is a no-op acknowledged as already saved.
func (e *Engine) applySave(ctx context.Context, row *domain.WorkflowSession, out *TurnResult) error {
	if existing, err := e.Store.FindItemByArtifact(ctx, e.DB, row.UserID, row.ArtifactID); err == nil && existing != nil {
		out.Content = msgSaved(true)
		return nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	artifact, err := e.Store.GetArtifact(ctx, e.DB, row.ArtifactID, row.UserID)
	if err != nil {
		return err
	}
	if _, err := e.saveToInventory(ctx, row, artifact); err != nil {
		return err
	}
	out.Artifact = artifact
	out.Content = msgSaved(false)
	return nil
}

func (e *Engine) saveToInventory(ctx context.Context, row *domain.WorkflowSession, artifact *domain.GeneratedArtifact) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{
		ID:               uuid.NewString(),
		UserID:           row.UserID,
		Name:             itemName(artifact),
		Category:         artifact.Category,
		Subcategory:      artifact.Subcategory,
		PrimaryColor:     artifact.PrimaryColor,
		ImageRef:         artifact.ImageRef,
		SourceArtifactID: artifact.ID,
	}
	if err := e.Store.CreateInventoryItem(ctx, e.DB, item); err != nil {
		return nil, err
	}
	if err := e.Store.MarkArtifactSaved(ctx, e.DB, artifact.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// applyOutfit builds and validates a three-slot suggestion around the
// session's artifact. Suggestion turns are free.
func (e *Engine) applyOutfit(ctx context.Context, row *domain.WorkflowSession, inventory []SnapshotItem, out *TurnResult) error {
	artifact, err := e.Store.GetArtifact(ctx, e.DB, row.ArtifactID, row.UserID)
	if err != nil {
		return err
	}

	items := TrimInventory(inventory, e.MaxInventoryItems)
	offered := make([]genclient.OutfitItem, 0, len(items))
	for _, it := range items {
		offered = append(offered, genclient.OutfitItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Subcategory: it.Subcategory,
		})
	}

	cand, err := e.Gen.SuggestOutfit(ctx, genclient.OutfitRequest{
		GarmentRef:      artifact.ImageRef,
		GarmentCategory: artifact.Category,
		Items:           offered,
	})
	if err != nil {
		var pe *genclient.ProviderError
		if errors.As(err, &pe) {
			out.Content = msgOutfitRejected()
			out.Warnings = []string{"el servicio de sugerencias no está disponible ahora mismo"}
			return nil
		}
		return err
	}

	categories := ResolveCategories(items)
	suggestion, warnings := ValidateOutfitSuggestion(OutfitSuggestion{
		TopID:        cand.TopID,
		BottomID:     cand.BottomID,
		ShoesID:      cand.ShoesID,
		Explanation:  cand.Explanation,
		Confidence:   cand.Confidence,
		MissingPiece: cand.MissingPiece,
	}, categories)
	if suggestion == nil {
		out.Content = msgOutfitRejected()
		out.Warnings = warnings
		return nil
	}
	out.Suggestion = suggestion
	out.Warnings = warnings
	out.Artifact = artifact
	return nil
}

// fillFromState copies the envelope-visible fields out of the state.
func (t *TurnResult) fillFromState(s SessionState) {
	t.Status = s.Status
	t.Strategy = s.Strategy
	t.Occasion = s.Occasion
	t.Style = s.Style
	t.Category = s.Category
	t.RequestText = s.RequestText
	t.EditInstruction = s.EditInstruction
	t.PendingAction = s.PendingAction
	t.PendingCost = s.PendingCostCredits
	t.AutosaveEnabled = s.AutosaveEnabled
	if s.Status == domain.StatusConfirming || s.Status == domain.StatusTryOnConfirming {
		t.ConfirmationToken = s.ConfirmationToken
	} else {
		t.ConfirmationToken = ""
	}
	if s.ErrorCode != "" && t.ErrorCode == "" {
		t.ErrorCode = s.ErrorCode
	}
	if s.TryOnResultRef != "" && t.TryOnResultRef == "" {
		t.TryOnResultRef = s.TryOnResultRef
	}
}

// itemName derives a display name for a saved artifact from its metadata.
func itemName(a *domain.GeneratedArtifact) string {
	name := "Prenda generada"
	if a.Subcategory != "" {
		name = "Prenda generada (" + a.Subcategory + ")"
	} else if a.Category != "" {
		name = "Prenda generada (" + a.Category + ")"
	}
	return name
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
