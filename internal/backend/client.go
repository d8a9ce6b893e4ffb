// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "http://localhost:8181/chat"

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 512

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the same type, so errors.Is(err, ErrTimeout)
// holds for every timeout regardless of its cause.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok || !isSentinel(t) {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeStatus
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeRateLimited
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeStatus:
		return "status"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking with errors.Is.
var (
	ErrUnavailable = &ClientError{Type: ErrTypeConnection, Message: "chat backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrBadStatus   = &ClientError{Type: ErrTypeStatus, Message: "unexpected status from chat backend"}
	ErrBadResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response from chat backend"}
)

func isSentinel(e *ClientError) bool {
	return e == ErrUnavailable || e == ErrTimeout || e == ErrBadStatus || e == ErrBadResponse
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// Endpoint is the full URL of the chat endpoint
	// (default: http://localhost:8181/chat)
	Endpoint string

	// Timeout for a whole request (default: 60s)
	Timeout time.Duration

	// RequestsPerSecond limits outgoing requests; 0 disables the limit
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint: DefaultEndpoint,
		Timeout:  60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the chat backend.
//
// The Client is safe for concurrent use.
type Client struct {
	mu         sync.RWMutex
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return c
}

// Endpoint returns the current chat endpoint.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// SetEndpoint replaces the chat endpoint. Requests already in flight keep
// the old URL.
func (c *Client) SetEndpoint(endpoint string) {
	if endpoint == "" {
		return
	}
	c.mu.Lock()
	c.endpoint = endpoint
	c.mu.Unlock()
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one query and returns the decoded answer.
// Any non-2xx status, transport failure or undecodable body is an error.
func (c *Client) Chat(ctx context.Context, query string) (*ChatResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Type: ErrTypeRateLimited, Message: "rate limit wait aborted", Cause: err}
		}
	}

	body, err := json.Marshal(ChatRequest{Query: query})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: ErrUnavailable.Message, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("API error: %s", resp.Status)
		if text := bytes.TrimSpace(snippet); len(text) > 0 {
			msg += " (" + string(text) + ")"
		}
		return nil, &ClientError{Type: ErrTypeStatus, Message: msg, StatusCode: resp.StatusCode}
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// isTimeout reports whether err came from a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
