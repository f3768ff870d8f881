// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// InventoryItem model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// CreateInventoryItem inserts a new inventory row owned by userID.
func CreateInventoryItem(ctx context.Context, db *gorm.DB, item *domain.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(item).Error
}

// CountInventoryItems returns the total number of inventory items owned by
// userID.
func CountInventoryItems(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.InventoryItem{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListInventoryPage returns a paginated slice of the user's inventory,
// ordered by most recently updated first.
func ListInventoryPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// FindItemByArtifact returns the inventory row created from the given
// artifact, or ErrNotFound. Saving an artifact twice must be a no-op, and
// this lookup is how the service detects the first save.
func FindItemByArtifact(ctx context.Context, db *gorm.DB, userID, artifactID string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := db.WithContext(ctx).
		Where("user_id = ? AND source_artifact_id = ?", userID, artifactID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
