// Package services – CreditService
//
// Reference implementation of the credit ledger over a per-(user, day) usage
// row. CanSpend is advisory and checked before billable work; Spend bumps the
// day's counter atomically after success. Deployments with a central billing
// system swap this out behind the same interface.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// CreditService tracks daily credit spend. Days roll over at UTC midnight.
type CreditService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// DailyLimit is the per-user credit budget per UTC day.
	DailyLimit int
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewCreditService constructs a CreditService with the given daily budget.
func NewCreditService(db *gorm.DB, dailyLimit int) *CreditService {
	return &CreditService{DB: db, DailyLimit: dailyLimit}
}

// CanSpend reports whether amount more credits fit in today's budget.
func (s *CreditService) CanSpend(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return true, nil
	}
	var row domain.CreditUsage
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, s.day()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return amount <= s.DailyLimit, nil
	}
	if err != nil {
		return false, err
	}
	return row.Used+amount <= s.DailyLimit, nil
}

// Spend records amount against today's counter. The bump is a single
// conditional UPDATE; a missing day row is created on first spend.
func (s *CreditService) Spend(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return nil
	}
	day := s.day()
	res := s.DB.WithContext(ctx).
		Model(&domain.CreditUsage{}).
		Where("user_id = ? AND day = ?", userID, day).
		UpdateColumn("used", gorm.Expr("used + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	row := domain.CreditUsage{
		ID:     uuid.NewString(),
		UserID: userID,
		Day:    day,
		Used:   amount,
	}
	err := s.DB.WithContext(ctx).Create(&row).Error
	if err == nil {
		return nil
	}
	// Lost the first-spend race; fall back to the bump.
	return s.DB.WithContext(ctx).
		Model(&domain.CreditUsage{}).
		Where("user_id = ? AND day = ?", userID, day).
		UpdateColumn("used", gorm.Expr("used + ?", amount)).Error
}

func (s *CreditService) day() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format("2006-01-02")
}
