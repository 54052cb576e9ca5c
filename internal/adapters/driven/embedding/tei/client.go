// Package tei adapts a HuggingFace text-embeddings-inference server to the
// Tokenizer and Encoder ports. The server hosts the BERT tokenizer and
// network; this package only moves token ids and hidden states.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 60 * time.Second
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// Config holds configuration for the TEI client.
type Config struct {
	// BaseURL is the server root (default: http://localhost:8080).
	BaseURL string

	// Timeout bounds one request (default: 60s).
	Timeout time.Duration

	// RequestsPerSecond limits the request rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the token bucket size. Defaults to RequestsPerSecond.
	Burst int

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to one TEI server. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *RateLimiter
}

// ServerInfo is the subset of GET /info used by the CLI.
type ServerInfo struct {
	ModelID        string `json:"model_id"`
	ModelDType     string `json:"model_dtype"`
	MaxInputLength int    `json:"max_input_length"`
	Version        string `json:"version"`
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("tei error (status %d): %s", e.StatusCode, e.Message)
}

// NewClient creates a TEI client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the server is up and the model is loaded.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Info returns the model served by the server.
func (c *Client) Info(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes a JSON response into out.
// A nil out discards the body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			c.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the TEI {"error": "..."} message, or the raw body.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "failed to read response"
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
