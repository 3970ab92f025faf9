package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/companion/internal/handlers"
	"github.com/avvvet/companion/internal/llm"
	"github.com/avvvet/companion/internal/memory"
	"github.com/avvvet/companion/internal/models"
	"github.com/avvvet/companion/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProvider struct{}

func (echoProvider) Complete(_ context.Context, request *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	last := request.Messages[len(request.Messages)-1]
	return &llm.CompletionResponse{Content: "эхо: " + last.Content}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mgr := memory.NewInMemoryManager(8, 4)
	opts := handlers.DefaultOptions()
	opts.Timeout = time.Second
	metrics := observability.NewMetrics("httptest")
	h := handlers.NewReplyHandler(echoProvider{}, mgr, handlers.NewChooser(1), opts, metrics)

	srv := httptest.NewServer(New(h, metrics, mgr.GetActiveSessionCount).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postReply(t *testing.T, srv *httptest.Server, userID, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/users/"+userID+"/reply", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestServer_ReplyThenStats(t *testing.T) {
	srv := newTestServer(t)

	resp := postReply(t, srv, "u1", `{"text":"Меня зовут Анна, люблю музыку"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chat models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chat))
	assert.Equal(t, "эхо: Меня зовут Анна, люблю музыку", chat.Reply)
	assert.Equal(t, "u1", chat.UserID)
	assert.False(t, chat.Degraded)

	statsResp, err := http.Get(srv.URL + "/v1/users/u1/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats models.Stats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, models.Stats{
		ConversationCount: 1,
		Name:              "Анна",
		Interests:         []string{"музыка"},
		HistoryLength:     2,
	}, stats)
}

func TestServer_ClearHistory(t *testing.T) {
	srv := newTestServer(t)

	resp := postReply(t, srv, "u1", `{"text":"привет"}`)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/users/u1/history", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	statsResp, err := http.Get(srv.URL + "/v1/users/u1/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats models.Stats
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 0, stats.HistoryLength)
	assert.Equal(t, 1, stats.ConversationCount)
}

func TestServer_ReplyRejectsEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	resp := postReply(t, srv, "u1", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "invalid_body", body.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp := postReply(t, srv, "u1", `{"command":"help"}`)
	resp.Body.Close()

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(health.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "active_sessions")

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
