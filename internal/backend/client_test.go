// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != "http://localhost:8181/chat" {
		t.Errorf("Endpoint = %q, want 'http://localhost:8181/chat'", cfg.Endpoint)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.RequestsPerSecond != 0 {
		t.Errorf("RequestsPerSecond = %v, want 0", cfg.RequestsPerSecond)
	}
}

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Nil(t, c.limiter)

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())

	c = NewClientWithConfig(&ClientConfig{RequestsPerSecond: 0.5})
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}

func TestSetEndpoint(t *testing.T) {
	c := NewClient()
	c.SetEndpoint("http://example.org/chat")
	assert.Equal(t, "http://example.org/chat", c.Endpoint())

	c.SetEndpoint("")
	assert.Equal(t, "http://example.org/chat", c.Endpoint(), "empty endpoint is ignored")
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_Success(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"response": "Hi",
			"sources": [{"Title":"T","FilePath":"/base/doc.md","Author":"A","ID":7,"Content":"c","PublicationDate":"2024-01-02"}],
			"references": ["ignored"]
		}`)
	}))
	defer server.Close()

	c := NewClientWithConfig(&ClientConfig{Endpoint: server.URL})
	resp, err := c.Chat(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"query": "hello there"}, gotBody, "request carries only the query")
	assert.Equal(t, "Hi", resp.Response)
	require.True(t, resp.HasSources())
	src := resp.Sources[0]
	assert.Equal(t, "T", src.Title)
	assert.Equal(t, "/base/doc.md", src.FilePath)
	assert.Equal(t, "A", src.Author)
	assert.Equal(t, 7, src.ID)
	assert.Equal(t, "2024-01-02", src.PublicationDate)
	assert.Equal(t, 0, src.Slot, "the backend never assigns slots")
}

func TestChat_NoSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"response": "plain"}`)
	}))
	defer server.Close()

	resp, err := NewClientWithConfig(&ClientConfig{Endpoint: server.URL}).Chat(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "plain", resp.Response)
	assert.False(t, resp.HasSources())
}

func TestChat_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClientWithConfig(&ClientConfig{Endpoint: server.URL}).Chat(context.Background(), "q")
	require.Error(t, err)

	var clientErr *ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ErrTypeStatus, clientErr.Type)
	assert.Equal(t, http.StatusInternalServerError, clientErr.StatusCode)
	assert.Contains(t, clientErr.Error(), "500")
	assert.Contains(t, clientErr.Error(), "boom")
	assert.True(t, errors.Is(err, ErrBadStatus))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestChat_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>not json</html>`)
	}))
	defer server.Close()

	_, err := NewClientWithConfig(&ClientConfig{Endpoint: server.URL}).Chat(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadResponse))
}

func TestChat_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClientWithConfig(&ClientConfig{Endpoint: url}).Chat(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClientWithConfig(&ClientConfig{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Chat(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestChat_ContextCanceledWhileRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"response":"ok"}`)
	}))
	defer server.Close()

	c := NewClientWithConfig(&ClientConfig{Endpoint: server.URL, RequestsPerSecond: 0.001})
	_, err := c.Chat(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Chat(ctx, "second")

	var clientErr *ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ErrTypeRateLimited, clientErr.Type)
}

func TestErrorType_String(t *testing.T) {
	tests := map[ErrorType]string{
		ErrTypeUnknown:         "unknown",
		ErrTypeStatus:          "status",
		ErrTypeConnection:      "connection",
		ErrTypeTimeout:         "timeout",
		ErrTypeInvalidResponse: "invalid_response",
		ErrTypeRateLimited:     "rate_limited",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
