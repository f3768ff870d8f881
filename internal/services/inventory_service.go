// Package services – InventoryService
//
// Thin read service over the permanent inventory, backing the paginated
// GET /inventory endpoint. Writes happen through the workflow engine (save
// and autosave); the mobile client's upload flow writes through a separate
// ingestion pipeline outside this repo.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// InventoryRepo defines the repository contract required by InventoryService.
type InventoryRepo interface {
	// CountInventoryItems returns the total number of items for pagination.
	CountInventoryItems(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListInventoryPage returns a page of items, newest first.
	ListInventoryPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.InventoryItem, error)
}

// InventoryService lists a user's permanent inventory.
type InventoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the inventory repository.
	Repo InventoryRepo
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(db *gorm.DB, r InventoryRepo) *InventoryService {
	return &InventoryService{DB: db, Repo: r}
}

// ListPage returns one page of the user's inventory plus the total count.
func (s *InventoryService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.InventoryItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	total, err := s.Repo.CountInventoryItems(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Repo.ListInventoryPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
