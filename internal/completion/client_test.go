package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/models"
	"github.com/keetrykee/Kilua/internal/persona"
	"github.com/keetrykee/Kilua/internal/session"
)

type capturedRequest struct {
	Model            string `json:"model"`
	MaxTokens        int    `json:"max_tokens"`
	Temperature      float32
	TopP             float32 `json:"top_p"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
	PresencePenalty  float32 `json:"presence_penalty"`
	Messages         []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, history *session.History) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	if history == nil {
		history = session.NewHistory(20)
	}
	return NewClient("test-key", srv.URL+"/v1", 800, 5*time.Second, persona.NewRegistry(), history, zap.NewNop())
}

func completionBody(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` + jsonString(content) + `},"finish_reason":"stop"}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteExtractsReply(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("sure, whatever")))
	}, nil)

	reply, err := client.Complete(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, "sure, whatever", reply)

	assert.Equal(t, "openai/gpt-4o", got.Model)
	assert.Equal(t, 800, got.MaxTokens)
	assert.InDelta(t, 0.9, got.TopP, 1e-6)
	assert.InDelta(t, 0.3, got.FrequencyPenalty, 1e-6)
	assert.InDelta(t, 0.3, got.PresencePenalty, 1e-6)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, persona.DefaultPersonalities["default"], got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestCompleteIncludesHistoryWindow(t *testing.T) {
	history := session.NewHistory(20)
	history.Append(7, models.Turn{Role: models.RoleUser, Content: "earlier question"},
		models.Turn{Role: models.RoleAssistant, Content: "earlier answer"})

	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("ok")))
	}, history)

	_, err := client.Complete(context.Background(), 7, "next question")
	require.NoError(t, err)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "earlier question", got.Messages[1].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "next question", got.Messages[3].Content)
}

func TestCompleteBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}, nil)

	_, err := client.Complete(context.Background(), 1, "hello")
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindBadStatus, cerr.Kind)
}

func TestCompleteMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}, nil)

	_, err := client.Complete(context.Background(), 1, "hello")
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindMalformedResponse, cerr.Kind)
}

func TestCompleteTimeout(t *testing.T) {
	block := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	client := NewClient("test-key", srv.URL+"/v1", 800, 50*time.Millisecond,
		persona.NewRegistry(), session.NewHistory(20), zap.NewNop())

	_, err := client.Complete(context.Background(), 1, "hello")
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindTimeout, cerr.Kind)
}
