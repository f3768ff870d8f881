// Assist HTTP handler.
//
// This file exposes the single conversational endpoint:
//   - POST /assist   (one call per turn)
//
// A request carrying a workflow block with mode "guided_creation" is routed
// to the workflow engine; anything else takes the plain single-shot path
// with idempotent replay via the Idempotency-Key header. Handlers stay
// transport-thin: validate and normalize inputs, delegate, translate results
// into the response envelope.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
	"github.com/vestiq/go-wardrobe-backend/internal/services"
	"github.com/vestiq/go-wardrobe-backend/internal/workflow"
)

//
// Service contracts (context-aware)
//

// WorkflowEngine drives one guided-creation turn.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WorkflowEngine interface {
	HandleTurn(ctx context.Context, req workflow.TurnRequest) (*workflow.TurnResult, error)
}

// AssistService answers plain single-shot styling questions.
type AssistService interface {
	Reply(ctx context.Context, userID, idemKey, message string, inventory []workflow.SnapshotItem) (*services.AssistResult, error)
}

//
// DTOs
//

// WorkflowBlock selects the guided-creation workflow and carries the turn's
// action plus structured payload.
type WorkflowBlock struct {
	Mode      string          `json:"mode" example:"guided_creation"`
	Action    string          `json:"action" example:"submit"`
	SessionID string          `json:"sessionId" example:"sess-42"`
	Payload   WorkflowPayload `json:"payload"`
}

// WorkflowPayload carries the structured fields of one turn. All fields are
// optional; free text travels in the envelope's message.
type WorkflowPayload struct {
	Occasion          string `json:"occasion,omitempty"`
	Style             string `json:"style,omitempty"`
	Category          string `json:"category,omitempty"`
	Strategy          string `json:"strategy,omitempty" example:"guided"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
	EditInstruction   string `json:"editInstruction,omitempty"`
	SelfieRef         string `json:"selfieRef,omitempty"`
}

// AssistRequest is the request envelope: one HTTP call per turn.
type AssistRequest struct {
	Workflow          *WorkflowBlock           `json:"workflow,omitempty"`
	Message           string                   `json:"message,omitempty"`
	InventorySnapshot []workflow.SnapshotItem  `json:"inventorySnapshot,omitempty"`
	ThreadID          string                   `json:"threadId,omitempty"`
}

// CollectedFields is the intent gathered so far.
type CollectedFields struct {
	Occasion    string `json:"occasion,omitempty"`
	Style       string `json:"style,omitempty"`
	Category    string `json:"category,omitempty"`
	RequestText string `json:"requestText,omitempty"`
}

// WorkflowStateResponse is the workflow portion of the response envelope.
type WorkflowStateResponse struct {
	SessionID            string                     `json:"sessionId"`
	Status               string                     `json:"status"`
	Strategy             string                     `json:"strategy,omitempty"`
	PendingAction        string                     `json:"pendingAction,omitempty"`
	MissingFields        []string                   `json:"missingFields"`
	Collected            CollectedFields            `json:"collected"`
	EstimatedCostCredits int                        `json:"estimatedCostCredits"`
	RequiresConfirmation bool                       `json:"requiresConfirmation"`
	ConfirmationToken    string                     `json:"confirmationToken,omitempty"`
	GeneratedItem        *domain.GeneratedArtifact  `json:"generatedItem,omitempty"`
	TryOnResultRef       string                     `json:"tryOnResultRef,omitempty"`
	EditInstruction      string                     `json:"editInstruction,omitempty"`
	AutosaveEnabled      bool                       `json:"autosaveEnabled"`
	ErrorCode            string                     `json:"errorCode,omitempty"`
	Warnings             []string                   `json:"warnings,omitempty"`
}

// AssistResponse is the response envelope for POST /assist.
type AssistResponse struct {
	Content          string                     `json:"content"`
	OutfitSuggestion *workflow.OutfitSuggestion `json:"outfitSuggestion,omitempty"`
	Workflow         *WorkflowStateResponse     `json:"workflow,omitempty"`
	CreditsUsed      int                        `json:"creditsUsed"`
}

// modeGuidedCreation is the only workflow mode this endpoint serves.
const modeGuidedCreation = "guided_creation"

// Assist godoc
// @ID          assist
// @Summary     One conversational turn
// @Description Processes one turn. With a workflow block (mode guided_creation)
// @Description the guided-creation state machine runs; without one, the plain
// @Description single-shot path answers with caching and idempotent replay.
// @Tags        Assist
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (test fallback; production uses bearer auth)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for plain-path retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.AssistRequest  true  "Turn envelope"
//
// @Success     200  {object}  handlers.AssistResponse  "Turn result"
// @Failure     400  {object}  handlers.ErrorResponse   "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse   "Unauthorized"
// @Failure     429  {object}  handlers.ErrorResponse   "Rate or budget limited"
// @Failure     500  {object}  handlers.ErrorResponse   "Internal error"
// @Router      /assist [post]
func (h *Handlers) Assist(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	var req AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if req.Workflow != nil && req.Workflow.Mode == modeGuidedCreation {
		h.assistWorkflow(c, ctx, uid, &req)
		return
	}
	h.assistPlain(c, ctx, uid, &req)
}

func (h *Handlers) assistWorkflow(c *gin.Context, ctx context.Context, uid string, req *AssistRequest) {
	wf := req.Workflow
	action := workflow.Action(wf.Action)
	if !workflow.KnownAction(action) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown workflow action")
		return
	}
	sessionID := wf.SessionID
	if sessionID == "" {
		sessionID = req.ThreadID
	}
	if sessionID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sessionId is required")
		return
	}

	res, err := h.engine.HandleTurn(ctx, workflow.TurnRequest{
		UserID:            uid,
		SessionID:         sessionID,
		Action:            action,
		Message:           req.Message,
		Occasion:          wf.Payload.Occasion,
		Style:             wf.Payload.Style,
		Category:          wf.Payload.Category,
		Strategy:          wf.Payload.Strategy,
		ConfirmationToken: wf.Payload.ConfirmationToken,
		EditInstruction:   wf.Payload.EditInstruction,
		SelfieRef:         wf.Payload.SelfieRef,
		Inventory:         req.InventorySnapshot,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not process the turn")
		return
	}

	ok(c, http.StatusOK, AssistResponse{
		Content:          res.Content,
		OutfitSuggestion: res.Suggestion,
		Workflow:         workflowEnvelope(sessionID, res),
		CreditsUsed:      res.CreditsUsed,
	})
}

func (h *Handlers) assistPlain(c *gin.Context, ctx context.Context, uid string, req *AssistRequest) {
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

	res, err := h.assistSvc.Reply(ctx, uid, idemKey, req.Message, req.InventorySnapshot)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrInsufficientCredits):
			c.Header("Retry-After", "3600")
			fail(c, http.StatusTooManyRequests, ErrCodeBudgetLimited, "daily credit budget exhausted")
		default:
			var pe *genclient.ProviderError
			if errors.As(err, &pe) {
				fail(c, http.StatusBadGateway, ErrCodeAssistFailed, "the styling service is unavailable")
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not process the request")
		}
		return
	}

	if res.Replayed {
		c.Header("Idempotency-Replayed", "true")
	}
	ok(c, http.StatusOK, AssistResponse{
		Content:     res.Content,
		CreditsUsed: res.CreditsUsed,
	})
}

// workflowEnvelope shapes the engine result into the response envelope.
func workflowEnvelope(sessionID string, res *workflow.TurnResult) *WorkflowStateResponse {
	missing := res.MissingFields
	if missing == nil {
		missing = []string{}
	}
	requiresConfirmation := res.Status == domain.StatusConfirming || res.Status == domain.StatusTryOnConfirming
	return &WorkflowStateResponse{
		SessionID:     sessionID,
		Status:        res.Status,
		Strategy:      res.Strategy,
		PendingAction: res.PendingAction,
		MissingFields: missing,
		Collected: CollectedFields{
			Occasion:    res.Occasion,
			Style:       res.Style,
			Category:    res.Category,
			RequestText: res.RequestText,
		},
		EstimatedCostCredits: res.PendingCost,
		RequiresConfirmation: requiresConfirmation,
		ConfirmationToken:    res.ConfirmationToken,
		GeneratedItem:        res.Artifact,
		TryOnResultRef:       res.TryOnResultRef,
		EditInstruction:      res.EditInstruction,
		AutosaveEnabled:      res.AutosaveEnabled,
		ErrorCode:            res.ErrorCode,
		Warnings:             res.Warnings,
	}
}
