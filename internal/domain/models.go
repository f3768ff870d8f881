// Package domain defines the persistence models for workflow sessions,
// generated artifacts, inventory items, and response caching. These types are
// mapped with GORM and form the core data layer of the wardrobe assistant.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Workflow session statuses. The session row is the single source of truth
// for the guided-creation state machine; every turn reads it at the start and
// writes it at the end.
const (
	StatusIdle            = "idle"
	StatusCollecting      = "collecting"
	StatusChoosingMode    = "choosing_mode"
	StatusConfirming      = "confirming"
	StatusGenerating      = "generating"
	StatusGenerated       = "generated"
	StatusEditing         = "editing"
	StatusTryOnConfirming = "tryon_confirming"
	StatusTryOnGenerating = "tryon_generating"
	StatusCancelled       = "cancelled"
	StatusError           = "error"
)

// WorkflowSession is one persisted row per (user, session). It carries the
// machine status, the fields collected so far, the pending billable action
// with its quoted cost, and the single-use confirmation token.
//
// Invariant: ConfirmationToken is non-empty iff Status is "confirming" or
// "tryon_confirming". The token is cleared the moment it is consumed or the
// pending action is cancelled.
type WorkflowSession struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_user_session,priority:1"`
	SessionID string `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_user_session,priority:2"`
	Status    string `json:"status"     gorm:"type:varchar(24);not null;default:'idle'"`

	// Collected intent. Parsed text never erases a non-empty value here;
	// explicit payload overrides do.
	Occasion    string `json:"occasion,omitempty"     gorm:"type:varchar(64)"`
	Style       string `json:"style,omitempty"        gorm:"type:varchar(64)"`
	Category    string `json:"category,omitempty"     gorm:"type:varchar(16)"`
	RequestText string `json:"request_text,omitempty" gorm:"type:varchar(512)"`
	Strategy    string `json:"strategy,omitempty"     gorm:"type:varchar(16)"` // direct|guided

	// Pending billable action awaiting confirmation.
	PendingAction      string `json:"pending_action,omitempty" gorm:"type:varchar(16)"` // generate|edit|tryon
	PendingCostCredits int    `json:"pending_cost_credits,omitempty"`
	ConfirmationToken  string `json:"-" gorm:"type:char(36)"`

	// Edit / try-on state.
	EditInstruction string `json:"edit_instruction,omitempty" gorm:"type:varchar(512)"`
	TryOnSelfieRef  string `json:"tryon_selfie_ref,omitempty" gorm:"type:varchar(512)"`
	TryOnResultRef  string `json:"tryon_result_ref,omitempty" gorm:"type:varchar(512)"`

	// ArtifactID references the session's current GeneratedArtifact, retained
	// for follow-on edit/try-on turns even after a save.
	ArtifactID      string `json:"artifact_id,omitempty" gorm:"type:char(36)"`
	AutosaveEnabled bool   `json:"autosave_enabled"`

	ErrorCode string `json:"error_code,omitempty" gorm:"type:varchar(32)"`

	ExpiresAt time.Time      `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for WorkflowSession.
func (WorkflowSession) TableName() string { return "workflow_sessions" }

// GeneratedArtifact is a generated garment image plus the structured metadata
// inferred at generation time. It is owned by the session until an explicit
// save (or autosave) copies it into the user's permanent inventory; the
// session keeps its reference afterwards regardless.
type GeneratedArtifact struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null;index"`
	SessionID string `json:"session_id" gorm:"type:varchar(64);not null;index"`

	ImageRef     string   `json:"image_ref"              gorm:"type:varchar(512);not null"`
	Category     string   `json:"category"               gorm:"type:varchar(16);not null"`
	Subcategory  string   `json:"subcategory,omitempty"  gorm:"type:varchar(64)"`
	PrimaryColor string   `json:"primary_color"          gorm:"type:varchar(32)"`
	StyleTags    []string `json:"style_tags,omitempty"   gorm:"serializer:json"`
	Seasons      []string `json:"seasons,omitempty"      gorm:"serializer:json"`
	Prompt       string   `json:"prompt"                 gorm:"type:text"`

	SavedToInventory bool `json:"saved_to_inventory"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for GeneratedArtifact.
func (GeneratedArtifact) TableName() string { return "generated_artifacts" }

// InventoryItem is a garment in the user's permanent inventory. Rows are
// created either by the mobile client's upload flow or by saving a generated
// artifact; SourceArtifactID links back in the latter case.
type InventoryItem struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID string `json:"user_id" gorm:"type:varchar(64);not null;index:idx_user_items"`

	Name         string `json:"name"                   gorm:"type:varchar(128);not null"`
	Category     string `json:"category"               gorm:"type:varchar(16);not null"`
	Subcategory  string `json:"subcategory,omitempty"  gorm:"type:varchar(64)"`
	PrimaryColor string `json:"primary_color,omitempty" gorm:"type:varchar(32)"`
	ImageRef     string `json:"image_ref,omitempty"    gorm:"type:varchar(512)"`

	SourceArtifactID string `json:"source_artifact_id,omitempty" gorm:"type:char(36);index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for InventoryItem.
func (InventoryItem) TableName() string { return "inventory_items" }

// ResponseCache stores one prior reply on the plain single-shot path, keyed
// by the semantic content of the request rather than the raw request: user,
// response kind, inventory-snapshot hash, and prompt hash. A hit increments
// Hits and is served with creditsUsed=0.
type ResponseCache struct {
	ID            string `gorm:"type:char(36);primaryKey"`
	UserID        string `gorm:"type:varchar(64);not null;uniqueIndex:ux_cache_key,priority:1"`
	Kind          string `gorm:"type:varchar(32);not null;uniqueIndex:ux_cache_key,priority:2"`
	InventoryHash string `gorm:"type:char(64);not null;uniqueIndex:ux_cache_key,priority:3"`
	PromptHash    string `gorm:"type:char(64);not null;uniqueIndex:ux_cache_key,priority:4"`

	Response string `gorm:"type:text;not null"`
	Hits     int64  `gorm:"not null;default:0"`

	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName returns the database table name for ResponseCache.
func (ResponseCache) TableName() string { return "response_cache" }

// CreditUsage tracks per-user daily credit spend for the reference ledger
// implementation. One row per (user, day); Used is bumped atomically.
type CreditUsage struct {
	ID     string `gorm:"type:char(36);primaryKey"`
	UserID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_credit_day,priority:1"`
	Day    string `gorm:"type:char(10);not null;uniqueIndex:ux_credit_day,priority:2"` // YYYY-MM-DD (UTC)
	Used   int    `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name for CreditUsage.
func (CreditUsage) TableName() string { return "credit_usage" }
