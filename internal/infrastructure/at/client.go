// Package at implements the HTTP client for the Autoridade Tributária
// transmission API.
package at

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moztech/fiscal-mz/pkg/config"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// Result is the normalized outcome of one transmission attempt.
type Result struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code"`
	Reference  string          `json:"reference,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// Client posts fiscal payloads to the AT endpoint. One attempt per call;
// retries are the caller's decision.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient builds the AT client from configuration. The timeout bounds
// the whole request.
func NewClient(cfg config.ATConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Submit sends one payload. The body is marshaled exactly once; the
// bytes that produce the checksum are the bytes that travel.
func (c *Client) Submit(ctx context.Context, companyNUIT, transmissionType string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("at: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("at: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Company-NUIT", companyNUIT)
	req.Header.Set("X-Transmission-Type", transmissionType)

	c.log.Debug().
		Str("type", transmissionType).
		Int("body_bytes", len(body)).
		Msg("submitting to AT")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("at: network error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("at: read response: %w", err)
	}

	return c.parseResponse(resp.StatusCode, raw), nil
}

// parseResponse normalizes the AT answer. Only HTTP 200 counts as
// accepted; the body is parsed defensively because the AT is not
// guaranteed to return JSON.
func (c *Client) parseResponse(statusCode int, raw []byte) *Result {
	if statusCode != http.StatusOK {
		return &Result{
			Success:    false,
			Message:    fmt.Sprintf("AT API error: %d", statusCode),
			StatusCode: statusCode,
			Response:   quoteRaw(raw),
		}
	}

	res := &Result{
		Success:    true,
		Message:    "Transmission successful",
		StatusCode: statusCode,
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		res.Response = quoteRaw(raw)
		return res
	}
	res.Response = json.RawMessage(raw)
	if ref, ok := parsed["reference"].(string); ok {
		res.Reference = ref
	}
	if msg, ok := parsed["message"].(string); ok && msg != "" {
		res.Message = msg
	}
	return res
}

// quoteRaw wraps a non-JSON body as a JSON string so Result always
// serializes cleanly into the ledger.
func quoteRaw(raw []byte) json.RawMessage {
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}
