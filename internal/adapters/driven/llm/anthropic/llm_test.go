package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repodoc-cli/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "sk-test"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultTimeout, svc.client.Timeout)
	assert.NoError(t, svc.Close())
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestComplete_Success(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"# Getting "},{"type":"tool_use"},{"type":"text","text":"Started"}]}`))
	})

	text, err := svc.Complete(context.Background(), driven.CompletionRequest{
		System:    "You document code.",
		Prompt:    "Describe widget",
		MaxTokens: 500,
	})

	require.NoError(t, err)
	assert.Equal(t, "# Getting Started", text)
	assert.Equal(t, "You document code.", got["system"])
	assert.EqualValues(t, 500, got["max_tokens"])
	assert.EqualValues(t, 0, got["temperature"], "zero temperature is sent explicitly")
	assert.Contains(t, got, "temperature")
}

func TestComplete_DefaultMaxTokens(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultMaxTokens, body.MaxTokens)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	})

	_, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
}

func TestComplete_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, "slow down", true},
		{"overloaded", 529, `{"error":{"type":"overloaded_error","message":"overloaded"}}`, "overloaded", true},
		{"bad request", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"prompt is too long"}}`, "prompt is too long", false},
		{"unauthorized", http.StatusUnauthorized, `not json`, "not json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "p"})

			var completionErr *driven.CompletionError
			require.ErrorAs(t, err, &completionErr)
			assert.Equal(t, tt.status, completionErr.StatusCode)
			assert.Equal(t, tt.message, completionErr.Message)
			assert.Equal(t, tt.retryable, driven.IsRetryable(err))
		})
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "p"})
	assert.Error(t, err)
	assert.False(t, driven.IsRetryable(err))
}

func TestComplete_CanceledContext(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Complete(ctx, driven.CompletionRequest{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, driven.IsRetryable(err))
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("x-api-key") != "sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))

	svc.apiKey = "wrong"
	assert.Error(t, svc.Ping(context.Background()))
}
