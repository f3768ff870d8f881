package genclient

import (
	"context"
	"errors"
)

// AdviceRequest is a plain single-shot styling question: a free-text message
// plus the caller's inventory for grounding. No session is involved.
type AdviceRequest struct {
	Message string
	Items   []OutfitItem
}

// StyleAdvice answers a single-shot styling question and returns the reply
// text. Same retry and error contract as the generation operations.
func (c *Client) StyleAdvice(ctx context.Context, req AdviceRequest) (string, error) {
	body := map[string]any{
		"message": req.Message,
		"items":   req.Items,
	}
	res, perr := c.doJSON(ctx, "advice", "/v1/advice", c.Timeout, body)
	if perr != nil {
		return "", perr
	}
	content := res.Get("content").String()
	if content == "" {
		content = res.Get("choices.0.message.content").String()
	}
	if content == "" {
		return "", &ProviderError{Kind: KindProvider, Op: "advice", Err: errors.New("response missing content")}
	}
	return content, nil
}
