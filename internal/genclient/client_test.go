package genclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		HTTP:         srv.Client(),
		MaxAttempts:  3,
		BaseBackoff:  time.Millisecond,
		Timeout:      2 * time.Second,
		TryOnTimeout: 2 * time.Second,
	}
}

func TestGenerateGarment_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{
			"image_url": "https://cdn/garment.png",
			"metadata": {
				"subcategory": "camiseta",
				"primary_color": "azul",
				"style_tags": ["casual", "urbano"],
				"seasons": ["verano"]
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	res, err := c.GenerateGarment(context.Background(), GarmentRequest{
		Category: "top", Style: "casual", Occasion: "oficina",
	})
	if err != nil {
		t.Fatalf("GenerateGarment: %v", err)
	}
	if res.ImageRef != "https://cdn/garment.png" {
		t.Fatalf("ImageRef = %q", res.ImageRef)
	}
	if res.Subcategory != "camiseta" || res.PrimaryColor != "azul" {
		t.Fatalf("metadata not parsed: %+v", res)
	}
	if len(res.StyleTags) != 2 || len(res.Seasons) != 1 {
		t.Fatalf("tags/seasons not parsed: %+v", res)
	}
	if res.Prompt == "" {
		t.Fatal("prompt not recorded on the result")
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestGenerateGarment_MetadataFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"url": "https://cdn/alt.png"}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).GenerateGarment(context.Background(), GarmentRequest{
		Category: "top", Style: "formal", RequestText: "una camisa roja",
	})
	if err != nil {
		t.Fatalf("GenerateGarment: %v", err)
	}
	if res.ImageRef != "https://cdn/alt.png" {
		t.Fatalf("data.0.url fallback not used: %q", res.ImageRef)
	}
	if res.PrimaryColor != "rojo" {
		t.Fatalf("color not inferred from text: %q", res.PrimaryColor)
	}
	if len(res.StyleTags) != 1 || res.StyleTags[0] != "formal" {
		t.Fatalf("style tag fallback wrong: %v", res.StyleTags)
	}
	if len(res.Seasons) != 1 || res.Seasons[0] != "todo_el_año" {
		t.Fatalf("season default wrong: %v", res.Seasons)
	}
}

func TestGenerateGarment_MissingImageRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "done"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindProvider {
		t.Fatalf("err = %v, want provider-kind ProviderError", err)
	}
}

func TestDoJSON_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"image_url": "https://cdn/ok.png"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv).GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	if err != nil {
		t.Fatalf("GenerateGarment after retry: %v", err)
	}
	if res.ImageRef != "https://cdn/ok.png" {
		t.Fatalf("ImageRef = %q", res.ImageRef)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("provider calls = %d, want 2", got)
	}
}

func TestDoJSON_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.MaxAttempts = 2
	_, err := c.GenerateGarment(context.Background(), GarmentRequest{Category: "top"})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if pe.Kind != KindProvider || pe.Attempts != 2 {
		t.Fatalf("kind=%s attempts=%d, want provider/2", pe.Kind, pe.Attempts)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("provider calls = %d, want 2", got)
	}
}

func TestDoJSON_BillingRejectionNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindInsufficientCredits {
		t.Fatalf("err = %v, want insufficient_credits", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("provider calls = %d, want 1 (no retry)", got)
	}
}

func TestDoJSON_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindBadRequest {
		t.Fatalf("err = %v, want bad_request", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("provider calls = %d, want 1 (no retry)", got)
	}
}

func TestDoJSON_TimeoutRetriedUntilAttemptsExhausted(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv)
	c.Timeout = 30 * time.Millisecond

	_, err := c.GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindTimeout {
		t.Fatalf("err = %v, want timeout", err)
	}
	if pe.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", pe.Attempts)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("provider calls = %d, want 3 (each attempt gets its own deadline)", got)
	}
}

func TestDoJSON_CallerCancellationStopsRetries(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv)
	c.Timeout = 30 * time.Millisecond
	c.BaseBackoff = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	_, err := c.GenerateGarment(ctx, GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindTimeout {
		t.Fatalf("err = %v, want timeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want wrapped context.Canceled", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("provider calls = %d, want 1 (cancelled before second attempt)", got)
	}
}

func TestDoJSON_InvalidJSONIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all {`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	c.MaxAttempts = 1
	_, err := c.GenerateGarment(context.Background(), GarmentRequest{Category: "top"})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindProvider {
		t.Fatalf("err = %v, want provider kind for invalid JSON", err)
	}
}

func TestTryOn_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tryon" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"image_url": "https://cdn/tryon.png"}`))
	}))
	defer srv.Close()

	ref, err := newTestClient(srv).TryOn(context.Background(), TryOnRequest{
		GarmentRef: "https://cdn/garment.png", SelfieRef: "https://cdn/selfie.jpg",
	})
	if err != nil || ref != "https://cdn/tryon.png" {
		t.Fatalf("TryOn = %q, %v", ref, err)
	}
}

func TestSuggestOutfit_ParsesCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"top_id": "t1", "bottom_id": "b1", "shoes_id": "s1",
			"explanation": "combinan bien", "confidence": 0.75,
			"missing_piece": "un cinturón"
		}`))
	}))
	defer srv.Close()

	cand, err := newTestClient(srv).SuggestOutfit(context.Background(), OutfitRequest{
		GarmentRef: "https://cdn/garment.png", GarmentCategory: "top",
	})
	if err != nil {
		t.Fatalf("SuggestOutfit: %v", err)
	}
	if cand.TopID != "t1" || cand.BottomID != "b1" || cand.ShoesID != "s1" {
		t.Fatalf("ids wrong: %+v", cand)
	}
	if cand.Confidence != 0.75 || cand.MissingPiece != "un cinturón" {
		t.Fatalf("optional fields wrong: %+v", cand)
	}
}

func TestStyleAdvice_ContentFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "usa capas ligeras"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv).StyleAdvice(context.Background(), AdviceRequest{Message: "qué me pongo"})
	if err != nil {
		t.Fatalf("StyleAdvice: %v", err)
	}
	if out != "usa capas ligeras" {
		t.Fatalf("content = %q", out)
	}
}
