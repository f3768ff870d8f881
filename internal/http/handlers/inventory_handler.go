// Inventory HTTP handlers.
//
// This file exposes the read endpoint for the permanent inventory:
//   - GET /inventory   (list, paginated, newest first)
//
// Handler wiring for the whole package also lives here: the Handlers struct
// groups the endpoint methods behind abstract service interfaces, and
// userID() resolves the authenticated user set by upstream middleware.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/utils"
)

// InventoryService lists a user's permanent inventory.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type InventoryService interface {
	// ListPage returns a page of inventory items and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.InventoryItem, int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for assist turns and inventory reads.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	engine    WorkflowEngine
	assistSvc AssistService
	invSvc    InventoryService
}

// New constructs a Handlers instance bound to the given collaborators.
func New(engine WorkflowEngine, assistSvc AssistService, invSvc InventoryService) *Handlers {
	return &Handlers{engine: engine, assistSvc: assistSvc, invSvc: invSvc}
}

// userID extracts the authenticated user id from Gin context (set by the
// auth middleware). If absent, it falls back to "X-User-ID" header (tests
// use it), and finally to "demo-user". It never touches c.Request if nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListInventoryResponse wraps a page of items and pagination information.
type ListInventoryResponse struct {
	Items      []domain.InventoryItem `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

// clampPagination parses page/page_size from query parameters, applies sane
// defaults and caps, and returns the validated (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListInventory godoc
// @ID          listInventory
// @Summary     List inventory items
// @Description Returns the user's permanent inventory, newest first, paginated.
// @Tags        Inventory
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (test fallback; production uses bearer auth)"  example(user123)
// @Param       page       query   int     false "Page number (1-based)"  default(1)
// @Param       page_size  query   int     false "Items per page (max 100)"  default(20)
//
// @Success     200  {object}  handlers.ListInventoryResponse  "Inventory page"
// @Failure     500  {object}  handlers.ErrorResponse          "Internal error"
// @Router      /inventory [get]
func (h *Handlers) ListInventory(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	items, total, err := h.invSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list inventory")
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListInventoryResponse{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
