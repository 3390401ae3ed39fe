package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/inventory"
	"github.com/liteapi-travel/room-matcher-async/internal/metrics"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
	"github.com/liteapi-travel/room-matcher-async/internal/service"
)

type brokenSource struct{}

func (brokenSource) Rooms(ctx context.Context) ([]model.Room, error) {
	return nil, errors.New("inventory offline")
}

func newTestRouter(src inventory.Source) http.Handler {
	m := metrics.New()
	return NewRouter(service.New(src, m, zap.NewNop()), m, zap.NewNop())
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestParseEndpoint(t *testing.T) {
	h := newTestRouter(inventory.Static(inventory.DefaultRooms()))

	rec := post(t, h, "/parse", `{"text":"room for 2 at 9am"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var c model.Constraints
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	require.NotNil(t, c.Capacity)
	assert.Equal(t, 2, *c.Capacity)
	assert.Equal(t, "09:00", c.Time)
	assert.Empty(t, c.Requirements)
}

func TestMatchEndpoint(t *testing.T) {
	h := newTestRouter(inventory.Static(inventory.DefaultRooms()))

	rec := post(t, h, "/match", `{"text":"I need a room for 6 people with a projector at 14:00"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "EXACT", body["matchType"])
	assert.Equal(t, float64(94), body["score"])
	room, ok := body["room"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Room B (Medium)", room["name"])
	assert.Contains(t, body, "alternatives")
}

func TestEndpoints_BadRequests(t *testing.T) {
	h := newTestRouter(inventory.Static(inventory.DefaultRooms()))

	for _, path := range []string{"/parse", "/match"} {
		rec := post(t, h, path, `{"text":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"No text provided"}`, rec.Body.String())

		rec = post(t, h, path, `{"text":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestMatchEndpoint_InventoryFailure(t *testing.T) {
	h := newTestRouter(brokenSource{})

	rec := post(t, h, "/match", `{"text":"room for 4"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(inventory.Static(inventory.DefaultRooms()))
	post(t, h, "/match", `{"text":"room for 4"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roommatch_matches_total")
	assert.Contains(t, rec.Body.String(), `route="/match"`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(inventory.Static(nil))

	req := httptest.NewRequest(http.MethodOptions, "/match", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())

	assert.NoError(t, err)
}
