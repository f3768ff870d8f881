package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
	"github.com/vestiq/go-wardrobe-backend/internal/genclient"
	"github.com/vestiq/go-wardrobe-backend/internal/workflow"
)

// ----- Fake ledger repo -----

type fakeLedgerRepo struct {
	idem  map[string]*domain.Idempotency
	cache map[string]string

	putIdemCalls  int
	putCacheCalls int
	putCacheErr   error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		idem:  map[string]*domain.Idempotency{},
		cache: map[string]string{},
	}
}

func idemK(userID, kind, key string) string      { return userID + "|" + kind + "|" + key }
func cacheK(userID, kind, ih, ph string) string  { return userID + "|" + kind + "|" + ih + "|" + ph }

func (f *fakeLedgerRepo) GetIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key string, now time.Time) (*domain.Idempotency, error) {
	rec, ok := f.idem[idemK(userID, kind, key)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeLedgerRepo) PutIdempotency(ctx context.Context, db *gorm.DB, userID, kind, key, status, response string, ttl time.Duration) (*domain.Idempotency, error) {
	f.putIdemCalls++
	rec := &domain.Idempotency{UserID: userID, Kind: kind, Key: key, Status: status, Response: response}
	f.idem[idemK(userID, kind, key)] = rec
	cp := *rec
	return &cp, nil
}

func (f *fakeLedgerRepo) GetCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash string, now time.Time) (*domain.ResponseCache, error) {
	resp, ok := f.cache[cacheK(userID, kind, inventoryHash, promptHash)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &domain.ResponseCache{Response: resp}, nil
}

func (f *fakeLedgerRepo) PutCachedResponse(ctx context.Context, db *gorm.DB, userID, kind, inventoryHash, promptHash, response string, ttl time.Duration) error {
	f.putCacheCalls++
	if f.putCacheErr != nil {
		return f.putCacheErr
	}
	f.cache[cacheK(userID, kind, inventoryHash, promptHash)] = response
	return nil
}

// ----- Fake advisor and ledger -----

type fakeAdvisor struct {
	calls int
	reply string
	err   error
}

func (a *fakeAdvisor) StyleAdvice(ctx context.Context, req genclient.AdviceRequest) (string, error) {
	a.calls++
	return a.reply, a.err
}

type fakeCredits struct {
	allow      bool
	spendCalls int
}

func (c *fakeCredits) CanSpend(ctx context.Context, userID string, amount int) (bool, error) {
	return c.allow, nil
}

func (c *fakeCredits) Spend(ctx context.Context, userID string, amount int) error {
	c.spendCalls++
	return nil
}

func newAssistService(ledger *fakeLedgerRepo, gen *fakeAdvisor, credits *fakeCredits) *AssistService {
	return &AssistService{
		Ledger:         ledger,
		Gen:            gen,
		Credits:        credits,
		AdviceCost:     1,
		CacheTTL:       6 * time.Hour,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// ----- Tests -----

func TestReply_FreshQuestionBills(t *testing.T) {
	ledger := newFakeLedgerRepo()
	gen := &fakeAdvisor{reply: "combina la camisa con jeans"}
	credits := &fakeCredits{allow: true}
	s := newAssistService(ledger, gen, credits)

	res, err := s.Reply(context.Background(), "u1", "key-1", "¿qué me pongo?", nil)
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if res.Content != "combina la camisa con jeans" {
		t.Fatalf("content = %q", res.Content)
	}
	if res.CreditsUsed != 1 || credits.spendCalls != 1 {
		t.Fatalf("creditsUsed=%d spendCalls=%d, want 1/1", res.CreditsUsed, credits.spendCalls)
	}
	if res.Replayed || res.CacheHit {
		t.Fatalf("fresh answer flagged as replay/cache: %+v", res)
	}
	if ledger.putCacheCalls != 1 {
		t.Fatal("answer not cached")
	}
	if ledger.idem[idemK("u1", "style_advice", "key-1")] == nil {
		t.Fatal("success not recorded in the ledger")
	}
}

func TestReply_IdempotentReplayDoesNotBill(t *testing.T) {
	ledger := newFakeLedgerRepo()
	gen := &fakeAdvisor{reply: "respuesta"}
	credits := &fakeCredits{allow: true}
	s := newAssistService(ledger, gen, credits)

	if _, err := s.Reply(context.Background(), "u1", "key-1", "hola estilo", nil); err != nil {
		t.Fatalf("first reply: %v", err)
	}

	res, err := s.Reply(context.Background(), "u1", "key-1", "hola estilo", nil)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Replayed {
		t.Fatal("replay not flagged")
	}
	if res.Content != "respuesta" {
		t.Fatalf("replayed content = %q", res.Content)
	}
	if res.CreditsUsed != 0 || credits.spendCalls != 1 {
		t.Fatalf("replay billed: creditsUsed=%d spendCalls=%d", res.CreditsUsed, credits.spendCalls)
	}
	if gen.calls != 1 {
		t.Fatalf("provider called %d times, want 1", gen.calls)
	}
}

func TestReply_FailedRecordDoesNotBlockRetry(t *testing.T) {
	ledger := newFakeLedgerRepo()
	gen := &fakeAdvisor{err: &genclient.ProviderError{Kind: genclient.KindProvider, Op: "advice", Err: errors.New("down")}}
	credits := &fakeCredits{allow: true}
	s := newAssistService(ledger, gen, credits)

	if _, err := s.Reply(context.Background(), "u1", "key-1", "pregunta", nil); err == nil {
		t.Fatal("provider failure swallowed")
	}
	rec := ledger.idem[idemK("u1", "style_advice", "key-1")]
	if rec == nil || rec.Status != domain.IdemStatusFailed {
		t.Fatalf("failure not recorded: %+v", rec)
	}
	if credits.spendCalls != 0 {
		t.Fatal("failed call billed")
	}

	// Retry with the same key succeeds and overwrites the record.
	gen.err = nil
	gen.reply = "ahora sí"
	res, err := s.Reply(context.Background(), "u1", "key-1", "pregunta", nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Replayed || res.Content != "ahora sí" {
		t.Fatalf("retry answered from the failed record: %+v", res)
	}
	if got := ledger.idem[idemK("u1", "style_advice", "key-1")].Status; got != domain.IdemStatusSuccess {
		t.Fatalf("ledger status = %q after retry", got)
	}
}

func TestReply_CacheHitIsFree(t *testing.T) {
	ledger := newFakeLedgerRepo()
	gen := &fakeAdvisor{reply: "respuesta"}
	credits := &fakeCredits{allow: true}
	s := newAssistService(ledger, gen, credits)

	inv := []workflow.SnapshotItem{{ID: "i1", Category: "camiseta"}}

	if _, err := s.Reply(context.Background(), "u1", "", "Qué me pongo hoy", inv); err != nil {
		t.Fatalf("first: %v", err)
	}

	// Same content, different idempotency key: the hash cache answers.
	res, err := s.Reply(context.Background(), "u1", "other-key", "qué  me pongo   HOY", inv)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !res.CacheHit {
		t.Fatal("normalized duplicate missed the cache")
	}
	if res.CreditsUsed != 0 || credits.spendCalls != 1 {
		t.Fatalf("cache hit billed: %+v", res)
	}
	if gen.calls != 1 {
		t.Fatalf("provider called %d times, want 1", gen.calls)
	}
}

func TestReply_DifferentInventoryMissesCache(t *testing.T) {
	ledger := newFakeLedgerRepo()
	gen := &fakeAdvisor{reply: "respuesta"}
	credits := &fakeCredits{allow: true}
	s := newAssistService(ledger, gen, credits)

	if _, err := s.Reply(context.Background(), "u1", "", "qué me pongo",
		[]workflow.SnapshotItem{{ID: "i1", Category: "camiseta"}}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := s.Reply(context.Background(), "u1", "", "qué me pongo",
		[]workflow.SnapshotItem{{ID: "i2", Category: "jeans"}}); err != nil {
		t.Fatalf("second: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("provider calls = %d, want 2 (inventory changed)", gen.calls)
	}
}

func TestReply_BudgetExhausted(t *testing.T) {
	s := newAssistService(newFakeLedgerRepo(), &fakeAdvisor{}, &fakeCredits{allow: false})
	_, err := s.Reply(context.Background(), "u1", "", "pregunta", nil)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
}

func TestReply_InputValidation(t *testing.T) {
	s := newAssistService(newFakeLedgerRepo(), &fakeAdvisor{}, &fakeCredits{allow: true})

	if _, err := s.Reply(context.Background(), "u1", "", "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
	long := strings.Repeat("a", 2001)
	if _, err := s.Reply(context.Background(), "u1", "", long, nil); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("err = %v, want ErrMessageTooLong", err)
	}
}

func TestReply_CacheWriteFailureStillAnswers(t *testing.T) {
	ledger := newFakeLedgerRepo()
	ledger.putCacheErr = errors.New("disk full")
	gen := &fakeAdvisor{reply: "respuesta"}
	s := newAssistService(ledger, gen, &fakeCredits{allow: true})

	res, err := s.Reply(context.Background(), "u1", "", "pregunta", nil)
	if err != nil {
		t.Fatalf("cache write failure surfaced: %v", err)
	}
	if res.Content != "respuesta" {
		t.Fatalf("content = %q", res.Content)
	}
}
