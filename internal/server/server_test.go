package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-support-assistant/server/internal/agent/model"
)

type fakeRunner struct {
	reply string
	err   error
	calls []model.QueryInput
}

func (f *fakeRunner) Invoke(ctx context.Context, in model.QueryInput) (string, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestChatForwardsLastMessage(t *testing.T) {
	runner := &fakeRunner{reply: "Заказ 1001 в пути."}
	s := New(runner)

	rec := postChat(t, s, `{"messages":["Привет","Где сейчас мой заказ 1001?"],"thread_id":"t-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Заказ 1001 в пути.", resp.Response)
	assert.Equal(t, "t-1", resp.ThreadID)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "t-1", runner.calls[0].ConversationID)
	assert.Equal(t, "Где сейчас мой заказ 1001?", runner.calls[0].Query)
}

func TestChatEmptyMessagesReturnsGreetingWithoutInvoking(t *testing.T) {
	runner := &fakeRunner{reply: "should not be used"}
	s := New(runner)

	for _, body := range []string{
		`{"messages":[],"thread_id":"t-2"}`,
		`{"messages":["","   "],"thread_id":"t-2"}`,
	} {
		rec := postChat(t, s, body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, DefaultGreeting, resp.Response)
	}

	assert.Empty(t, runner.calls, "graph must not run for empty requests")
}

func TestChatDefaultsThreadID(t *testing.T) {
	runner := &fakeRunner{reply: "ok"}
	s := New(runner)

	rec := postChat(t, s, `{"messages":["вопрос"]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "default", resp.ThreadID)
}

func TestChatGraphFailureBecomesJSONError(t *testing.T) {
	runner := &fakeRunner{err: assert.AnError}
	s := New(runner)

	rec := postChat(t, s, `{"messages":["вопрос"],"thread_id":"t-3"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestRootHealth(t *testing.T) {
	s := New(&fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}
