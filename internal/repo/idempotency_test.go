package repo

import (
	"context"
	"testing"
	"time"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

func TestPutIdempotency_RoundTrip(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, `{"ok":true}`, time.Hour); err != nil {
		t.Fatalf("PutIdempotency: %v", err)
	}

	rec, err := GetIdempotency(ctx, db, "u1", "style_advice", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if rec.Status != domain.IdemStatusSuccess || rec.Response != `{"ok":true}` {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestGetIdempotency_BlankKey(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	if _, err := GetIdempotency(context.Background(), db, "u1", "style_advice", "  ", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound for blank key", err)
	}
}

func TestGetIdempotency_ExpiredNotServed(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, "r", time.Minute); err != nil {
		t.Fatalf("PutIdempotency: %v", err)
	}

	_, err := GetIdempotency(ctx, db, "u1", "style_advice", "k1", time.Now().UTC().Add(2*time.Minute))
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound for expired record", err)
	}
}

func TestPutIdempotency_SuccessIsImmutable(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, "first", time.Hour); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, "second", time.Hour); err != ErrDuplicate {
		t.Fatalf("err = %v, want ErrDuplicate over a live success", err)
	}

	rec, err := GetIdempotency(ctx, db, "u1", "style_advice", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if rec.Response != "first" {
		t.Fatalf("response = %q, original success was overwritten", rec.Response)
	}
}

func TestPutIdempotency_FailedIsOverwritten(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusFailed, "boom", time.Hour); err != nil {
		t.Fatalf("failed put: %v", err)
	}
	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, "recovered", time.Hour); err != nil {
		t.Fatalf("retry put: %v", err)
	}

	rec, err := GetIdempotency(ctx, db, "u1", "style_advice", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if rec.Status != domain.IdemStatusSuccess || rec.Response != "recovered" {
		t.Fatalf("failed record not upgraded: %+v", rec)
	}
}

func TestPutIdempotency_KeysAreScoped(t *testing.T) {
	db := newRepoDB(t, &domain.Idempotency{})
	ctx := context.Background()

	// Same key under a different user or kind is a distinct record.
	if _, err := PutIdempotency(ctx, db, "u1", "style_advice", "k1", domain.IdemStatusSuccess, "a", time.Hour); err != nil {
		t.Fatalf("put u1: %v", err)
	}
	if _, err := PutIdempotency(ctx, db, "u2", "style_advice", "k1", domain.IdemStatusSuccess, "b", time.Hour); err != nil {
		t.Fatalf("put u2: %v", err)
	}
	if _, err := PutIdempotency(ctx, db, "u1", "other_kind", "k1", domain.IdemStatusSuccess, "c", time.Hour); err != nil {
		t.Fatalf("put other kind: %v", err)
	}

	rec, err := GetIdempotency(ctx, db, "u2", "style_advice", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency u2: %v", err)
	}
	if rec.Response != "b" {
		t.Fatalf("cross-user bleed: %+v", rec)
	}
}
