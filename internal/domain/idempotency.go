// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency outcome statuses. A "success" record is replayed verbatim
// without rebilling; a "failed" record does not block a retry.
const (
	IdemStatusSuccess = "success"
	IdemStatusFailed  = "failed"
)

// Idempotency represents a recorded outcome of a previously processed
// request, keyed by (user_id, kind, key). It enables exactly-once replay for
// billable POST operations: when a client retries with the same
// Idempotency-Key, the originally produced response is returned without
// re-executing side effects or charging credits again.
type Idempotency struct {
	ID       string `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID   string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_kind_key,priority:1"`
	Kind     string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_kind_key,priority:2"`
	Key      string `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_kind_key,priority:3"`
	Status   string `gorm:"type:TEXT NOT NULL"` // success|failed
	Response string `gorm:"type:TEXT"`          // stored response body (JSON)

	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
