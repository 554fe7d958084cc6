package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/config"
	"github.com/ramanasai/reflectboard/internal/db"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestServer(t *testing.T, c coach.Completer, cfg config.ServerConfig) (*httptest.Server, *db.Store) {
	t.Helper()
	dbh, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	store := db.NewStore(dbh)

	reg := prometheus.NewRegistry()
	metrics, err := coach.NewMetrics(reg)
	require.NoError(t, err)
	r := coach.NewResponder(c, coach.WithSleeper(noSleep), coach.WithMetrics(metrics))

	srv := httptest.NewServer(New(cfg, store, r, nil, WithGatherer(reg)).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestReflectionsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{})

	note := board.Note{ID: "1", Text: "Paired on the migration", Category: board.CategoryGood}
	resp := postJSON(t, srv.URL+"/api/reflections", map[string]any{
		"date":         "2026-10-18",
		"items":        []board.Note{note},
		"selectedItem": note,
		"chatMessages": []coach.Message{{ID: "m1", Text: "Why?", Sender: coach.SenderAI}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[db.Record](t, resp)
	assert.Equal(t, "2026-10-18", saved.Date)

	resp = postJSON(t, srv.URL+"/api/reflections", map[string]any{"date": "2026-10-19", "items": []board.Note{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/reflections")
	require.NoError(t, err)
	defer resp.Body.Close()
	list := decode[[]db.Record](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-10-19", list[0].Date)

	resp, err = http.Get(srv.URL + "/api/reflections?q=MIGRATION")
	require.NoError(t, err)
	defer resp.Body.Close()
	list = decode[[]db.Record](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-10-18", list[0].Date)

	resp, err = http.Get(srv.URL + "/api/reflections/2026-10-18")
	require.NoError(t, err)
	defer resp.Body.Close()
	got := decode[db.Record](t, resp)
	require.NotNil(t, got.SelectedItem)
	assert.Equal(t, "Paired on the migration", got.SelectedItem.Text)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/reflections/2026-10-18", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decode[map[string]any](t, resp)
	assert.Equal(t, true, env["error"])
	assert.EqualValues(t, http.StatusNotFound, env["code"])
}

func TestSaveReflectionValidatesDate(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{})

	resp := postJSON(t, srv.URL+"/api/reflections", map[string]any{"date": "19/10/2026"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env := decode[map[string]any](t, resp)
	assert.Equal(t, "date must be a date in the form YYYY-MM-DD", env["message"])

	resp = postJSON(t, srv.URL+"/api/reflections", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatMissingCredentials(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{})

	resp := postJSON(t, srv.URL+"/api/chat", map[string]any{
		"message":       "It went well",
		"selectedTopic": "Shipped on time",
		"messageCount":  0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[chatResponse](t, resp)
	assert.True(t, out.Fallback)
	assert.Equal(t, missingKeyHint, out.Error)
	assert.Contains(t, coach.FallbackQuestions(coach.StageInitial), out.Message)
}

func TestChatUpstreamFailureFallsBack(t *testing.T) {
	var calls atomic.Int32
	failing := coach.CompleterFunc(func(context.Context, coach.Request) (string, error) {
		calls.Add(1)
		return "", errors.New("boom")
	})
	srv, _ := newTestServer(t, failing, config.ServerConfig{})

	resp := postJSON(t, srv.URL+"/api/chat", map[string]any{
		"message":       "I learned a lot",
		"selectedTopic": "Shipped on time",
		"messageCount":  9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[chatResponse](t, resp)
	assert.True(t, out.Fallback)
	assert.Empty(t, out.Error)
	assert.Contains(t, coach.FallbackQuestions(coach.StageLate), out.Message)
	assert.Equal(t, int32(3), calls.Load())

	mresp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(mresp.Body)
	assert.Contains(t, buf.String(), `reflectboard_coach_fallbacks_total{reason="upstream_error"} 1`)
}

func TestChatStageFromClientCounts(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{})
	ai := func(text string) coach.Message { return coach.Message{ID: text, Text: text, Sender: coach.SenderAI} }
	user := func(text string) coach.Message { return coach.Message{ID: text, Text: text, Sender: coach.SenderUser} }

	tests := []struct {
		name  string
		body  map[string]any
		stage coach.Stage
	}{
		{"opening only", map[string]any{"messageCount": 1}, coach.StageInitial},
		{"one answer so far", map[string]any{"messageCount": 3}, coach.StageInitial},
		{"two answers so far", map[string]any{"messageCount": 5}, coach.StageMiddle},
		{"four answers so far", map[string]any{"messageCount": 9}, coach.StageLate},
		{
			"history wins over messageCount",
			map[string]any{
				"messageCount": 0,
				"history":      []coach.Message{ai("q1"), user("a1"), ai("q2"), user("a2"), ai("q3")},
			},
			coach.StageMiddle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.body["message"] = "It went well"
			tt.body["selectedTopic"] = "Shipped on time"
			resp := postJSON(t, srv.URL+"/api/chat", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			out := decode[chatResponse](t, resp)
			assert.True(t, out.Fallback)
			assert.Contains(t, coach.FallbackQuestions(tt.stage), out.Message)
		})
	}
}

func TestChatSuccessAndValidation(t *testing.T) {
	reqs := make(chan coach.Request, 1)
	ok := coach.CompleterFunc(func(_ context.Context, req coach.Request) (string, error) {
		reqs <- req
		return "What made the timing work?", nil
	})
	srv, _ := newTestServer(t, ok, config.ServerConfig{})

	resp := postJSON(t, srv.URL+"/api/chat", map[string]any{
		"message":       "  We cut scope early  ",
		"selectedTopic": "Shipped on time",
		"history":       []coach.Message{{ID: "a", Text: "Why this topic?", Sender: coach.SenderAI}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[chatResponse](t, resp)
	assert.Equal(t, "What made the timing work?", out.Message)
	assert.False(t, out.Fallback)
	got := <-reqs
	assert.Equal(t, "We cut scope early", got.Message)
	assert.Len(t, got.History, 1)
	assert.Contains(t, got.System, "Shipped on time")

	resp = postJSON(t, srv.URL+"/api/chat", map[string]any{"message": "   ", "selectedTopic": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatIsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{ChatRPS: 0.001, ChatBurst: 1})
	body := map[string]any{"message": "hi", "selectedTopic": "topic"}

	assert.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/chat", body).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(t, srv.URL+"/api/chat", body).StatusCode)
}

func TestHealthAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t, nil, config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "healthy", body["status"])
}
