package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateSession_Defaults(t *testing.T) {
	db := newRepoDB(t, &domain.WorkflowSession{})

	before := time.Now().UTC()
	s, err := CreateSession(context.Background(), db, "u1", "s1", 30*time.Minute)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID == "" || s.UserID != "u1" || s.SessionID != "s1" {
		t.Fatalf("unexpected fields: %+v", s)
	}
	if s.Status != domain.StatusIdle {
		t.Fatalf("status = %q, want idle", s.Status)
	}
	if s.ExpiresAt.Before(before.Add(29 * time.Minute)) {
		t.Fatalf("ExpiresAt not pushed by TTL: %v", s.ExpiresAt)
	}

	got, err := GetSession(context.Background(), db, "u1", "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ID != s.ID {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.WorkflowSession{})
	_, err := GetSession(context.Background(), db, "u1", "ghost")
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSession_PushesExpiry(t *testing.T) {
	db := newRepoDB(t, &domain.WorkflowSession{})
	s, err := CreateSession(context.Background(), db, "u1", "s1", time.Minute)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	s.Status = domain.StatusCollecting
	if err := SaveSession(context.Background(), db, s, time.Hour); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := GetSession(context.Background(), db, "u1", "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != domain.StatusCollecting {
		t.Fatalf("status = %q", got.Status)
	}
	if got.ExpiresAt.Before(time.Now().UTC().Add(50 * time.Minute)) {
		t.Fatalf("expiry not pushed forward: %v", got.ExpiresAt)
	}
}

func TestClaimSession_SingleWinner(t *testing.T) {
	db := newRepoDB(t, &domain.WorkflowSession{})
	s, err := CreateSession(context.Background(), db, "u1", "s1", time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	s.Status = domain.StatusConfirming
	s.ConfirmationToken = "tok-1"
	if err := SaveSession(context.Background(), db, s, time.Hour); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	updates := map[string]any{
		"status":             domain.StatusGenerating,
		"confirmation_token": "",
	}

	won, err := ClaimSession(context.Background(), db, s.ID, domain.StatusConfirming, "tok-1", updates)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !won {
		t.Fatal("first claim lost")
	}

	// Same precondition again: the token is gone, so the claim must fail.
	won, err = ClaimSession(context.Background(), db, s.ID, domain.StatusConfirming, "tok-1", updates)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if won {
		t.Fatal("claim won twice for the same token")
	}

	got, err := GetSession(context.Background(), db, "u1", "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != domain.StatusGenerating || got.ConfirmationToken != "" {
		t.Fatalf("row after claim: %+v", got)
	}
}

func TestClaimSession_WrongTokenFails(t *testing.T) {
	db := newRepoDB(t, &domain.WorkflowSession{})
	s, _ := CreateSession(context.Background(), db, "u1", "s1", time.Hour)
	s.Status = domain.StatusConfirming
	s.ConfirmationToken = "tok-1"
	_ = SaveSession(context.Background(), db, s, time.Hour)

	won, err := ClaimSession(context.Background(), db, s.ID, domain.StatusConfirming, "forged",
		map[string]any{"status": domain.StatusGenerating})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if won {
		t.Fatal("claim won with the wrong token")
	}

	got, _ := GetSession(context.Background(), db, "u1", "s1")
	if got.Status != domain.StatusConfirming || got.ConfirmationToken != "tok-1" {
		t.Fatalf("row mutated by a failed claim: %+v", got)
	}
}

func TestArtifactRoundTripAndOwnership(t *testing.T) {
	db := newRepoDB(t, &domain.GeneratedArtifact{})

	a := &domain.GeneratedArtifact{
		UserID:    "u1",
		SessionID: "s1",
		ImageRef:  "https://cdn/garment.png",
		Category:  "top",
	}
	if err := CreateArtifact(context.Background(), db, a); err != nil {
		t.Fatalf("CreateArtifact: %v", err)
	}
	if a.ID == "" {
		t.Fatal("artifact id not filled in")
	}

	got, err := GetArtifact(context.Background(), db, a.ID, "u1")
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if got.ImageRef != a.ImageRef {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Another user cannot read it.
	if _, err := GetArtifact(context.Background(), db, a.ID, "u2"); err == nil {
		t.Fatal("artifact readable across users")
	}
}

func TestMarkArtifactSaved(t *testing.T) {
	db := newRepoDB(t, &domain.GeneratedArtifact{})
	a := &domain.GeneratedArtifact{UserID: "u1", SessionID: "s1", ImageRef: "r", Category: "top"}
	if err := CreateArtifact(context.Background(), db, a); err != nil {
		t.Fatalf("CreateArtifact: %v", err)
	}

	if err := MarkArtifactSaved(context.Background(), db, a.ID); err != nil {
		t.Fatalf("MarkArtifactSaved: %v", err)
	}
	got, _ := GetArtifact(context.Background(), db, a.ID, "u1")
	if !got.SavedToInventory {
		t.Fatal("SavedToInventory not set")
	}

	if err := MarkArtifactSaved(context.Background(), db, "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound for unknown artifact", err)
	}
}
