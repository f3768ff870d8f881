// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the content-hash
// response cache used on the plain single-shot conversational path.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// GetCachedResponse returns a non-expired cache row for the content key, or
// ErrNotFound. A hit bumps the row's hit counter best-effort; a failed bump
// never blocks serving the cached response.
func GetCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash string, now time.Time) (*domain.ResponseCache, error) {
	var rec domain.ResponseCache
	err := db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND inventory_hash = ? AND prompt_hash = ? AND expires_at > ?",
			userID, kind, inventoryHash, promptHash, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	db.WithContext(ctx).
		Model(&domain.ResponseCache{}).
		Where("id = ?", rec.ID).
		UpdateColumn("hits", gorm.Expr("hits + 1"))
	rec.Hits++
	return &rec, nil
}

// PutCachedResponse upserts the cached response for the content key with the
// given TTL. On a key collision the newer response and deadline win, which
// keeps repeated identical requests serving the freshest stored reply.
func PutCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash, response string, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.ResponseCache{
		ID:            uuid.NewString(),
		UserID:        userID,
		Kind:          kind,
		InventoryHash: inventoryHash,
		PromptHash:    promptHash,
		Response:      response,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	err := db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.ResponseCache{}).
		Where("user_id = ? AND kind = ? AND inventory_hash = ? AND prompt_hash = ?",
			userID, kind, inventoryHash, promptHash).
		Updates(map[string]any{"response": response, "expires_at": rec.ExpiresAt}).Error
}
