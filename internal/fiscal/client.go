// Package fiscal talks to the external fiscal authority that registers
// cash transactions and issues receipts.
package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUpstream marks any failure of the fiscal authority call, transport or
// application level. Callers match it with errors.Is.
var ErrUpstream = errors.New("fiscalization failed")

// Request is the payload registered with the fiscal authority.
type Request struct {
	TradeID string  `json:"trade_id"`
	Amount  float64 `json:"amount"`
	UserTIN string  `json:"user_tin"`
}

// Receipt is the proof of fiscalization. Only the ID is persisted on the
// trade; the rest is returned to the caller untouched.
type Receipt struct {
	ID       string    `json:"id"`
	Number   string    `json:"number,omitempty"`
	IssuedAt time.Time `json:"issued_at,omitempty"`
}

// Client registers a cash-bearing trade and returns its receipt.
type Client interface {
	Fiscalize(ctx context.Context, req Request) (*Receipt, error)
}

// HTTPClient is the production Client, speaking JSON over HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fiscalize POSTs the request to the authority's receipts endpoint. Each
// call carries a fresh idempotency key so the authority can dedupe retries.
func (c *HTTPClient) Fiscalize(ctx context.Context, req Request) (*Receipt, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: no fiscal service configured", ErrUpstream)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/receipts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("fiscal service rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("trade_id", req.TradeID),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if receipt.ID == "" {
		return nil, fmt.Errorf("%w: response missing receipt id", ErrUpstream)
	}
	return &receipt, nil
}
