package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	userAgent = "motortrack-go/1.0"

	headerRequestID      = "X-Request-Id"
	headerIdempotencyKey = "Idempotency-Key"

	// maxErrorBodyBytes bounds how much of an error response is read when
	// extracting the backend's message.
	maxErrorBodyBytes = 64 * 1024
)

// TokenSource provides a bearer token for API requests.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource returning a fixed bearer token.
type StaticToken string

func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// Client is an HTTP client for the backend REST API. It performs single
// requests only: read paths fall back to cached data on failure, and write
// paths retry through the Pipeline, so the client itself never loops.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
}

// NewClient creates an API client. baseURL has no trailing slash
// (e.g. "https://api.motortrack.app").
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
	}
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, "")
}

// putJSON performs a PUT request with a JSON body. A non-empty
// idempotencyKey is sent as the Idempotency-Key header.
func (c *Client) putJSON(ctx context.Context, path string, body, out any, idempotencyKey string) error {
	return c.do(ctx, http.MethodPut, path, body, out, idempotencyKey)
}

// postJSON performs a POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body, out any, idempotencyKey string) error {
	return c.do(ctx, http.MethodPost, path, body, out, idempotencyKey)
}

// do builds, authorizes, and executes one HTTP request. Transport failures
// are returned wrapped so callers can classify them; HTTP error statuses
// become *APIError values.
func (c *Client) do(ctx context.Context, method, path string, body, out any, idempotencyKey string) error {
	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshaling %s %s body: %w", method, path, err)
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: building %s %s request: %w", method, path, err)
	}

	tok, err := c.token.Token()
	if err != nil {
		return fmt.Errorf("api: acquiring token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s %s response: %w", method, path, err)
	}

	return nil
}

// errorFromResponse converts a non-2xx response into an *APIError,
// extracting the backend's message when the body carries one.
func (c *Client) errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(headerRequestID),
		Message:    errorMessage(data, resp.StatusCode),
		Err:        classifyStatus(resp.StatusCode),
	}

	c.logger.Debug("api request failed",
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", apiErr.RequestID),
		slog.String("message", apiErr.Message))

	return apiErr
}

// errorMessage pulls a human-readable message out of an error body. The
// backend is inconsistent: some handlers send {"message": ...}, others
// {"error": ...}, a few plain text.
func errorMessage(data []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}

		if envelope.Error != "" {
			return envelope.Error
		}
	}

	if text := strings.TrimSpace(string(data)); text != "" && len(text) <= 200 {
		return text
	}

	return http.StatusText(status)
}
