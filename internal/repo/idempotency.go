// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to implement exactly-once replay semantics for billable
// POST endpoints.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (user_id, kind, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND key = ? AND expires_at > ?", userID, kind, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// PutIdempotency records the outcome of a request under (userID, kind, key)
// and returns ErrDuplicate on unique violation. A failed record is
// overwritten by a later outcome so that retries after a failure can
// establish the success to replay.
func PutIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key, status, response string, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Key:       key,
		Status:    status,
		Response:  response,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			upd := db.WithContext(ctx).
				Model(&domain.Idempotency{}).
				Where("user_id = ? AND kind = ? AND key = ? AND status = ?", userID, kind, key, domain.IdemStatusFailed).
				Updates(map[string]any{"status": status, "response": response, "expires_at": rec.ExpiresAt})
			if upd.Error == nil && upd.RowsAffected > 0 {
				return rec, nil
			}
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
