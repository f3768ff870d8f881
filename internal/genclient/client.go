package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Client talks to the image generation provider over HTTP. All operations
// retry transient failures with exponential backoff and return *ProviderError
// on failure. Fields are set once at construction and never mutated, so a
// single Client is safe for concurrent use.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	// MaxAttempts bounds retries for transient failures and per-attempt
	// timeouts; billing rejections and bad requests are never retried.
	MaxAttempts int
	BaseBackoff time.Duration

	// Timeout applies per content generation call; TryOnTimeout applies to
	// try-on composition, which the provider takes longer on.
	Timeout      time.Duration
	TryOnTimeout time.Duration
}

// GarmentRequest describes a single-garment generation.
type GarmentRequest struct {
	Occasion    string
	Style       string
	Category    string
	RequestText string
	Strategy    string
}

// GarmentResult is the provider's artifact plus back-filled metadata.
type GarmentResult struct {
	ImageRef    string
	Category    string
	Subcategory string
	PrimaryColor string
	StyleTags   []string
	Seasons     []string
	Prompt      string
}

// EditRequest asks the provider to re-render an existing artifact with an
// instruction applied.
type EditRequest struct {
	ImageRef    string
	Instruction string
}

// TryOnRequest composes a garment onto a selfie.
type TryOnRequest struct {
	GarmentRef string
	SelfieRef  string
}

// OutfitItem is one inventory entry offered to the outfit builder.
type OutfitItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// OutfitRequest asks the provider to pick a three-slot outfit around a
// garment from the caller's inventory.
type OutfitRequest struct {
	GarmentRef      string
	GarmentCategory string
	Items           []OutfitItem
}

// OutfitCandidate is the provider's raw pick, validated by the caller
// against the actual inventory before it reaches a user.
type OutfitCandidate struct {
	TopID        string
	BottomID     string
	ShoesID      string
	Explanation  string
	Confidence   float64
	MissingPiece string
}

// GenerateGarment renders a new garment image from the collected intent.
func (c *Client) GenerateGarment(ctx context.Context, req GarmentRequest) (*GarmentResult, error) {
	prompt := buildGarmentPrompt(req)
	body := map[string]any{
		"prompt":   prompt,
		"category": req.Category,
		"style":    req.Style,
	}
	res, perr := c.doJSON(ctx, "garment", "/v1/generations", c.Timeout, body)
	if perr != nil {
		return nil, perr
	}
	ref := res.Get("image_url").String()
	if ref == "" {
		ref = res.Get("data.0.url").String()
	}
	if ref == "" {
		return nil, &ProviderError{Kind: KindProvider, Op: "garment", Err: errors.New("response missing image reference")}
	}
	out := &GarmentResult{
		ImageRef:    ref,
		Category:    req.Category,
		Subcategory: res.Get("metadata.subcategory").String(),
		Prompt:      prompt,
	}
	fillMetadata(out, req, res)
	return out, nil
}

// EditGarment re-renders an artifact with the instruction applied.
func (c *Client) EditGarment(ctx context.Context, req EditRequest) (*GarmentResult, error) {
	body := map[string]any{
		"image_url":   req.ImageRef,
		"instruction": req.Instruction,
	}
	res, perr := c.doJSON(ctx, "edit", "/v1/edits", c.Timeout, body)
	if perr != nil {
		return nil, perr
	}
	ref := res.Get("image_url").String()
	if ref == "" {
		ref = res.Get("data.0.url").String()
	}
	if ref == "" {
		return nil, &ProviderError{Kind: KindProvider, Op: "edit", Err: errors.New("response missing image reference")}
	}
	return &GarmentResult{
		ImageRef:     ref,
		Subcategory:  res.Get("metadata.subcategory").String(),
		PrimaryColor: inferPrimaryColor(req.Instruction),
		Prompt:       req.Instruction,
	}, nil
}

// TryOn composes the garment onto the selfie and returns the result image
// reference.
func (c *Client) TryOn(ctx context.Context, req TryOnRequest) (string, error) {
	body := map[string]any{
		"garment_url": req.GarmentRef,
		"selfie_url":  req.SelfieRef,
	}
	res, perr := c.doJSON(ctx, "tryon", "/v1/tryon", c.TryOnTimeout, body)
	if perr != nil {
		return "", perr
	}
	ref := res.Get("image_url").String()
	if ref == "" {
		return "", &ProviderError{Kind: KindProvider, Op: "tryon", Err: errors.New("response missing image reference")}
	}
	return ref, nil
}

// SuggestOutfit asks the provider to pick one item per slot from the offered
// inventory. The candidate is returned raw; validation happens upstream.
func (c *Client) SuggestOutfit(ctx context.Context, req OutfitRequest) (*OutfitCandidate, error) {
	body := map[string]any{
		"garment_url":      req.GarmentRef,
		"garment_category": req.GarmentCategory,
		"items":            req.Items,
	}
	res, perr := c.doJSON(ctx, "outfit", "/v1/outfits", c.Timeout, body)
	if perr != nil {
		return nil, perr
	}
	return &OutfitCandidate{
		TopID:        res.Get("top_id").String(),
		BottomID:     res.Get("bottom_id").String(),
		ShoesID:      res.Get("shoes_id").String(),
		Explanation:  res.Get("explanation").String(),
		Confidence:   res.Get("confidence").Float(),
		MissingPiece: res.Get("missing_piece").String(),
	}, nil
}

// doJSON posts body to path with a per-attempt timeout, retrying transient
// failures and timed-out attempts up to MaxAttempts with backoff
// base*2^(n-1) plus jitter. Cancellation of the caller's context ends the
// loop between attempts. It returns the parsed response or a classified
// *ProviderError.
func (c *Client) doJSON(ctx context.Context, op, path string, timeout time.Duration, body any) (gjson.Result, *ProviderError) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, &ProviderError{Kind: KindBadRequest, Op: op, Err: err}
	}

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last *ProviderError
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := c.BaseBackoff << (attempt - 2)
			if backoff > 0 {
				backoff += rand.N(backoff / 2)
			}
			select {
			case <-ctx.Done():
				return gjson.Result{}, &ProviderError{Kind: KindTimeout, Op: op, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		res, perr := c.attempt(ctx, op, path, timeout, payload)
		if perr == nil {
			return res, nil
		}
		perr.Attempts = attempt
		if !perr.Retryable() {
			return gjson.Result{}, perr
		}
		last = perr
	}
	return gjson.Result{}, last
}

func (c *Client) attempt(ctx context.Context, op, path string, timeout time.Duration, payload []byte) (gjson.Result, *ProviderError) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, &ProviderError{Kind: KindBadRequest, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}

	resp, err := httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
			cctx.Err() != nil {
			return gjson.Result{}, &ProviderError{Kind: KindTimeout, Op: op, Err: err}
		}
		return gjson.Result{}, &ProviderError{Kind: KindProvider, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return gjson.Result{}, &ProviderError{Kind: KindProvider, Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if !gjson.ValidBytes(raw) {
			return gjson.Result{}, &ProviderError{Kind: KindProvider, Op: op, StatusCode: resp.StatusCode, Err: errors.New("invalid JSON in response")}
		}
		return gjson.ParseBytes(raw), nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return gjson.Result{}, &ProviderError{Kind: KindInsufficientCredits, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("provider rejected billing: %s", snippet(raw))}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return gjson.Result{}, &ProviderError{Kind: KindProvider, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("provider error: %s", snippet(raw))}
	default:
		return gjson.Result{}, &ProviderError{Kind: KindBadRequest, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("request rejected: %s", snippet(raw))}
	}
}

func snippet(raw []byte) string {
	const max = 200
	if len(raw) > max {
		raw = raw[:max]
	}
	return string(raw)
}
