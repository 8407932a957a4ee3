// Package api is the HTTP client for the study backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/version"
)

// DefaultTimeout bounds every request unless the caller's context is shorter
const DefaultTimeout = 30 * time.Second

// Client is the study backend API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu          sync.RWMutex
	tokenSource func() string

	validate *validator.Validate
	logger   *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTimeout sets the http.Client timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource sets where the bearer token comes from. The source is
// consulted on every request, so the session owner stays the single writer.
func (c *Client) SetTokenSource(src func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = src
}

// SetToken pins a fixed bearer token
func (c *Client) SetToken(token string) {
	c.SetTokenSource(func() string { return token })
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource()
}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an APIError
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the backend's error message carried by err, if any
func MessageOf(err error) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// errorBody covers FastAPI's {"detail": ...} as well as {"error"} / {"message"} shapes
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		var details []validationDetail
		if err := json.Unmarshal(eb.Detail, &details); err == nil && len(details) > 0 {
			msgs := make([]string, 0, len(details))
			for _, d := range details {
				msgs = append(msgs, d.Msg)
			}
			return strings.Join(msgs, "; ")
		}
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}

// do performs a JSON request and decodes a 2xx response into target
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAPITransport, "failed to marshal request body", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPITransport, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.GetInfo().UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With("method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "request failed", "error", err)
		return errors.Wrap(errors.ErrCodeAPITransport, fmt.Sprintf("%s %s failed", method, path), err).
			WithSuggestion("Check that the backend is reachable (api.url / STUDYDASH_API_URL)")
	}
	defer resp.Body.Close()

	logger.DebugContext(ctx, "request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			RequestID:  requestID,
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Wrap(errors.ErrCodeAuthSessionExpired, "session is not authorized", apiErr).
				WithSuggestion("Run 'studydash auth login' to sign in again")
		}
		return errors.Wrap(errors.ErrCodeAPIStatus, fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode), apiErr)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, fmt.Sprintf("failed to decode %s response", path), err)
	}

	if err := c.validate.Struct(target); err != nil {
		var invalid *validator.InvalidValidationError
		if stderrors.As(err, &invalid) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeAPIInvalidResponse, fmt.Sprintf("unexpected %s response shape", path), err)
	}

	return nil
}
