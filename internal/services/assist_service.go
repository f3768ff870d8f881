// Package services – AssistService
//
// This file implements the plain single-shot conversational path: a styling
// question answered in one call, with no workflow session. Two layers keep
// repeated work unbilled:
//
//  1. Idempotency ledger: a client-supplied Idempotency-Key is checked first;
//     a prior success record is replayed verbatim without rebilling, a prior
//     failed record does not block a retry.
//  2. Content-hash cache: requests are reduced to (user, kind, inventory
//     hash, prompt hash); a live cache entry is served with creditsUsed=0.
//
// Neither path takes a lock: a burst of simultaneous duplicates racing ahead
// of the first completion can still reach the provider more than once. The
// unique index on the ledger keeps at most one stored outcome.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
	"github.com/vestiq/go-wardrobe-backend/internal/utils"
	"github.com/vestiq/go-wardrobe-backend/internal/workflow"
)

// kindStyleAdvice is the response kind recorded for the plain path.
const kindStyleAdvice = "style_advice"

// maxMessageRunes caps the accepted question length.
const maxMessageRunes = 2000

// LedgerRepo defines the cache/idempotency repository contract required by
// AssistService. Implementations proxy the repo package free functions.
type LedgerRepo interface {
	// GetIdempotency fetches a live ledger record or gorm.ErrRecordNotFound.
	GetIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key string, now time.Time) (*domain.Idempotency, error)

	// PutIdempotency records an outcome. A live success record wins races;
	// failed records are overwritable.
	PutIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key, status, response string, ttl time.Duration) (*domain.Idempotency, error)

	// GetCachedResponse fetches a live cache entry and bumps its hit count.
	GetCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash string, now time.Time) (*domain.ResponseCache, error)

	// PutCachedResponse stores the reply under the content-hash key.
	PutCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash, response string, ttl time.Duration) error
}

// Advisor is the provider contract for single-shot advice.
type Advisor interface {
	StyleAdvice(ctx context.Context, req genclient.AdviceRequest) (string, error)
}

// AssistService answers plain styling questions with caching, idempotent
// replay, and credit accounting.
type AssistService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ledger proxies the cache/idempotency repositories.
	Ledger LedgerRepo
	// Gen answers the question when no cached reply exists.
	Gen Advisor
	// Credits is the billing ledger shared with the workflow engine.
	Credits workflow.CreditLedger

	// AdviceCost is the credit price of one uncached answer.
	AdviceCost int
	// CacheTTL bounds how long a reply is served from cache.
	CacheTTL time.Duration
	// IdempotencyTTL bounds how long a ledger record can replay.
	IdempotencyTTL time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// AssistResult is the outcome of one plain-path request.
type AssistResult struct {
	Content     string
	CreditsUsed int
	// Replayed is true when a prior success ledger record answered.
	Replayed bool
	// CacheHit is true when the content-hash cache answered.
	CacheHit bool
}

// Reply answers one styling question. idemKey may be empty.
func (s *AssistService) Reply(ctx context.Context, userID, idemKey, message string, inventory []workflow.SnapshotItem) (*AssistResult, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "AssistService.Reply")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		return nil, ErrMessageTooLong
	}
	now := s.now()

	// Ledger first: replay a prior success verbatim.
	if idemKey != "" {
		rec, err := s.Ledger.GetIdempotency(ctx, s.DB, userID, kindStyleAdvice, idemKey, now)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if rec != nil && rec.Status == domain.IdemStatusSuccess {
			return &AssistResult{Content: rec.Response, Replayed: true}, nil
		}
	}

	promptHash := utils.HashPrompt(message)
	invHash := utils.HashInventory(inventoryEntries(inventory))

	// Content-hash cache: identical intent is never rebilled.
	cached, err := s.Ledger.GetCachedResponse(ctx, s.DB, userID, kindStyleAdvice, invHash, promptHash, now)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if cached != nil {
		s.record(ctx, userID, idemKey, domain.IdemStatusSuccess, cached.Response)
		return &AssistResult{Content: cached.Response, CacheHit: true}, nil
	}

	ok, err := s.Credits.CanSpend(ctx, userID, s.AdviceCost)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientCredits
	}

	items := make([]genclient.OutfitItem, 0, len(inventory))
	for _, it := range inventory {
		items = append(items, genclient.OutfitItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Subcategory: it.Subcategory,
		})
	}
	content, err := s.Gen.StyleAdvice(ctx, genclient.AdviceRequest{Message: message, Items: items})
	if err != nil {
		s.record(ctx, userID, idemKey, domain.IdemStatusFailed, "")
		return nil, err
	}

	if err := s.Credits.Spend(ctx, userID, s.AdviceCost); err != nil {
		return nil, err
	}
	if err := s.Ledger.PutCachedResponse(ctx, s.DB, userID, kindStyleAdvice, invHash, promptHash, content, s.CacheTTL); err != nil {
		// Cache storage is best effort; the answer still goes out.
		log.Ctx(ctx).Warn().Err(err).Msg("response cache write failed")
	}
	s.record(ctx, userID, idemKey, domain.IdemStatusSuccess, content)
	return &AssistResult{Content: content, CreditsUsed: s.AdviceCost}, nil
}

// record stores the ledger outcome when a key was supplied. Races against a
// concurrent success are resolved by the ledger itself and ignored here.
func (s *AssistService) record(ctx context.Context, userID, idemKey, status, response string) {
	if idemKey == "" {
		return
	}
	_, _ = s.Ledger.PutIdempotency(ctx, s.DB, userID, kindStyleAdvice, idemKey, status, response, s.IdempotencyTTL)
}

func inventoryEntries(items []workflow.SnapshotItem) []utils.InventoryEntry {
	out := make([]utils.InventoryEntry, 0, len(items))
	for _, it := range items {
		out = append(out, utils.InventoryEntry{ID: it.ID, Category: it.Category})
	}
	return out
}

func (s *AssistService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
