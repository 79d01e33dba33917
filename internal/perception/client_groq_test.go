package perception

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqClient(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGroqClientWithConfig(GroqConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestGroqClient_Generate(t *testing.T) {
	var gotReq groqRequest
	client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`))
	})

	text, err := client.Generate(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "system prompt", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "test-model", gotReq.Model)
}

func TestGroqClient_Generate_APIError(t *testing.T) {
	client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit"}}`))
	})

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "groq", genErr.Provider)
	assert.Contains(t, genErr.Error(), "rate limit exceeded")
}

func TestGroqClient_Generate_NoAPIKey(t *testing.T) {
	client := NewGroqClient("")
	_, err := client.Generate(context.Background(), "", "prompt")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestGroqClient_Generate_EmptyChoices(t *testing.T) {
	client := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
