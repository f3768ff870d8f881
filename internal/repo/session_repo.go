// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// WorkflowSession model, including the conditional "claim" update that the
// state machine relies on for at-most-once billing.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a session is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Concurrency:
//   - ClaimSession is the compare-and-swap primitive: the UPDATE carries the
//     expected prior status and confirmation token as a WHERE precondition,
//     and RowsAffected distinguishes the winner from losers. Duplicate
//     confirm requests race on this single-row update, never on app state.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetSession fetches the session row for (userID, sessionID). If the record
// does not exist, it returns ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, userID, sessionID string) (*domain.WorkflowSession, error) {
	var s domain.WorkflowSession
	err := db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a fresh idle session row for (userID, sessionID) with
// the given TTL. The row ID is a randomly generated UUID.
func CreateSession(ctx context.Context, db *gorm.DB, userID, sessionID string, ttl time.Duration) (*domain.WorkflowSession, error) {
	now := time.Now().UTC()
	s := &domain.WorkflowSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Status:    domain.StatusIdle,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSession persists the full session row. ExpiresAt is pushed forward by
// ttl so active conversations do not expire mid-flow.
func SaveSession(ctx context.Context, db *gorm.DB, s *domain.WorkflowSession, ttl time.Duration) error {
	s.ExpiresAt = time.Now().UTC().Add(ttl)
	return db.WithContext(ctx).Save(s).Error
}

// ClaimSession atomically transitions the session identified by its row ID
// from (expectedStatus, expectedToken) to the column values in updates. It
// returns true only when this caller won the claim; false means a concurrent
// request already moved the row (or the token was cleared), in which case the
// caller must re-read the session and answer without billing.
func ClaimSession(ctx context.Context, db *gorm.DB, rowID, expectedStatus, expectedToken string, updates map[string]any) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.WorkflowSession{}).
		Where("id = ? AND status = ? AND confirmation_token = ?", rowID, expectedStatus, expectedToken).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetArtifact fetches a generated artifact by id scoped to its owner.
func GetArtifact(ctx context.Context, db *gorm.DB, id, userID string) (*domain.GeneratedArtifact, error) {
	var a domain.GeneratedArtifact
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArtifact inserts a generated artifact row owned by the session's user.
func CreateArtifact(ctx context.Context, db *gorm.DB, a *domain.GeneratedArtifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(a).Error
}

// MarkArtifactSaved flips SavedToInventory on the artifact. Saving is
// idempotent at the service layer; this write is unconditional.
func MarkArtifactSaved(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.GeneratedArtifact{}).
		Where("id = ?", id).
		Update("saved_to_inventory", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
