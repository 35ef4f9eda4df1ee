package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-labs/recall/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var gotReq messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(textResponse("0.85")) //nolint:errcheck
	})

	response, err := svc.Generate(context.Background(), "score this", driven.GenerateOptions{
		MaxTokens:   8,
		Temperature: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, "0.85", response)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "score this", gotReq.Messages[0].Content)
	assert.Equal(t, 8, gotReq.MaxTokens)
}

func TestGenerateDefaultsMaxTokens(t *testing.T) {
	var gotReq messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(textResponse("ok")) //nolint:errcheck
	})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.NoError(t, err)
	// The messages API rejects requests without max_tokens.
	assert.Equal(t, 1024, gotReq.MaxTokens)
}

func TestChatExtractsSystemTurn(t *testing.T) {
	var gotReq messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(textResponse("answer")) //nolint:errcheck
	})

	response, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "question"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "answer", response)
	assert.Equal(t, "be terse", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestGenerateAPIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestGenerateConcatenatesTextBlocks(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"content": []map[string]any{
				{"type": "text", "text": "first "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "second"},
			},
		})
	})

	response, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "first second", response)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
