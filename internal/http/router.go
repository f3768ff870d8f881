// Package http wires the Gin engine: middleware chain, dependency
// injection, and route registration for the public API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/vestiq/go-wardrobe-backend/docs"
	"github.com/vestiq/go-wardrobe-backend/internal/config"
	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
	"github.com/vestiq/go-wardrobe-backend/internal/http/handlers"
	"github.com/vestiq/go-wardrobe-backend/internal/http/middleware"
	"github.com/vestiq/go-wardrobe-backend/internal/repo"
	"github.com/vestiq/go-wardrobe-backend/internal/services"
	"github.com/vestiq/go-wardrobe-backend/internal/workflow"
)

// adviceCost is the credit price of one uncached plain-path answer.
const adviceCost = 1

// sessionStoreShim adapts the repository free functions to the
// workflow.SessionStore interface expected by the Engine. This keeps the
// engine decoupled from the concrete repo package while reusing existing
// functions.
type sessionStoreShim struct{}

// GetSession proxies repo.GetSession.
func (sessionStoreShim) GetSession(ctx context.Context, db *gorm.DB, userID, sessionID string) (*domain.WorkflowSession, error) {
	return repo.GetSession(ctx, db, userID, sessionID)
}

// CreateSession proxies repo.CreateSession.
func (sessionStoreShim) CreateSession(ctx context.Context, db *gorm.DB, userID, sessionID string, ttl time.Duration) (*domain.WorkflowSession, error) {
	return repo.CreateSession(ctx, db, userID, sessionID, ttl)
}

// SaveSession proxies repo.SaveSession.
func (sessionStoreShim) SaveSession(ctx context.Context, db *gorm.DB, s *domain.WorkflowSession, ttl time.Duration) error {
	return repo.SaveSession(ctx, db, s, ttl)
}

// ClaimSession proxies repo.ClaimSession.
func (sessionStoreShim) ClaimSession(ctx context.Context, db *gorm.DB, rowID, expectedStatus, expectedToken string, updates map[string]any) (bool, error) {
	return repo.ClaimSession(ctx, db, rowID, expectedStatus, expectedToken, updates)
}

// GetArtifact proxies repo.GetArtifact.
func (sessionStoreShim) GetArtifact(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GeneratedArtifact, error) {
	return repo.GetArtifact(ctx, db, id, userID)
}

// CreateArtifact proxies repo.CreateArtifact.
func (sessionStoreShim) CreateArtifact(ctx context.Context, db *gorm.DB, a *domain.GeneratedArtifact) error {
	return repo.CreateArtifact(ctx, db, a)
}

// MarkArtifactSaved proxies repo.MarkArtifactSaved.
func (sessionStoreShim) MarkArtifactSaved(ctx context.Context, db *gorm.DB, id string) error {
	return repo.MarkArtifactSaved(ctx, db, id)
}

// CreateInventoryItem proxies repo.CreateInventoryItem.
func (sessionStoreShim) CreateInventoryItem(ctx context.Context, db *gorm.DB, item *domain.InventoryItem) error {
	return repo.CreateInventoryItem(ctx, db, item)
}

// FindItemByArtifact proxies repo.FindItemByArtifact.
func (sessionStoreShim) FindItemByArtifact(ctx context.Context, db *gorm.DB, userID, artifactID string) (*domain.InventoryItem, error) {
	return repo.FindItemByArtifact(ctx, db, userID, artifactID)
}

// ledgerShim adapts the cache/idempotency free functions to the
// services.LedgerRepo interface.
type ledgerShim struct{}

// GetIdempotency proxies repo.GetIdempotency.
func (ledgerShim) GetIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, userID, kind, key, now)
}

// PutIdempotency proxies repo.PutIdempotency.
func (ledgerShim) PutIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key, status, response string, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.PutIdempotency(ctx, db, userID, kind, key, status, response, ttl)
}

// GetCachedResponse proxies repo.GetCachedResponse.
func (ledgerShim) GetCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash string, now time.Time) (*domain.ResponseCache, error) {
	return repo.GetCachedResponse(ctx, db, userID, kind, inventoryHash, promptHash, now)
}

// PutCachedResponse proxies repo.PutCachedResponse.
func (ledgerShim) PutCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash, response string, ttl time.Duration) error {
	return repo.PutCachedResponse(ctx, db, userID, kind, inventoryHash, promptHash, response, ttl)
}

// inventoryRepoShim adapts the inventory free functions to the
// services.InventoryRepo interface.
type inventoryRepoShim struct{}

// CountInventoryItems proxies repo.CountInventoryItems.
func (inventoryRepoShim) CountInventoryItems(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountInventoryItems(ctx, db, userID)
}

// ListInventoryPage proxies repo.ListInventoryPage.
func (inventoryRepoShim) ListInventoryPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.InventoryItem, error) {
	return repo.ListInventoryPage(ctx, db, userID, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), auth, idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and the
// versioned public API.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip
//  6. Metrics
//  7. Auth (identity feeds idempotency and rate limiting)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gen *genclient.Client, verifier middleware.TokenVerifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (wardrobe data, selfie refs)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB covers the largest inventory snapshot)
	// and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Bearer auth; header fallback stays available outside release mode
	r.Use(middleware.Auth(verifier, middleware.AuthOptions{
		AllowHeaderFallback: cfg.GinMode != "release",
	}))

	// 8) Idempotency validation for the plain path (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Kind:   "style_advice",
		},
		func(ctx context.Context, userID, kind, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, kind, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return rec.Status == domain.IdemStatusSuccess, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		"X-User-ID", middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Idempotency-Replayed", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Idempotency-Replayed", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// Responses carry confirmation tokens, so caching is off.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API documentation
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: engine and services ← repo/db/client
	creditSvc := services.NewCreditService(db, cfg.Workflow.DailyCreditLimit)
	engine := &workflow.Engine{
		DB:                db,
		Store:             sessionStoreShim{},
		Gen:               gen,
		Credits:           creditSvc,
		Costs:             workflow.CostTable{Generate: cfg.Workflow.GenerateCost, Edit: cfg.Workflow.EditCost, TryOn: cfg.Workflow.TryOnCost},
		SessionTTL:        cfg.Workflow.SessionTTL,
		MaxInventoryItems: cfg.Workflow.MaxInventoryItems,
	}
	assistSvc := &services.AssistService{
		DB:             db,
		Ledger:         ledgerShim{},
		Gen:            gen,
		Credits:        creditSvc,
		AdviceCost:     adviceCost,
		CacheTTL:       cfg.CacheTTL,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	invSvc := services.NewInventoryService(db, inventoryRepoShim{})
	h := handlers.New(engine, assistSvc, invSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/assist", h.Assist)
		api.GET("/inventory", h.ListInventory)
	}
}

// limitBody caps the request body for all endpoints using
// http.MaxBytesReader; oversized bodies error on downstream reads.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
