package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmetanov/castline/configs/config"
	"github.com/vmetanov/castline/internal/fishing"
	"github.com/vmetanov/castline/internal/services"
)

func newTestSession() *services.Session {
	return services.NewSession(nil, &config.ServiceConfig{Port: "0"}, nil)
}

func newTestRouter(session *services.Session, cfg *config.ServiceConfig) http.Handler {
	if cfg == nil {
		cfg = &config.ServiceConfig{Port: "0"}
	}
	return NewApiHandler(session, cfg).Router()
}

func TestHealthEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(newTestSession(), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(newTestSession(), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var st services.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, 0, st.Connections)
	require.Equal(t, 0, st.Online)
	require.Equal(t, 0, st.Messages)
	require.Empty(t, st.Users)
}

func TestWelcomeEndpointCarriesInstanceName(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(newTestSession(), &config.ServiceConfig{Port: "0", Name: "reef"}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":"Welcome to reef api"}`, w.Body.String())

	// the name falls back to the default when unset
	w = httptest.NewRecorder()
	newTestRouter(newTestSession(), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, w.Body.String(), "castline")
}

func TestLeaderboardEndpoint(t *testing.T) {
	ctx := context.Background()
	repo := fishing.NewMemoryRepo()
	session := newTestSession()
	session.AttachGame(fishing.NewGame(repo))

	addrs := map[string]int{
		"0x1111111111111111111111111111111111111111": 10,
		"0x2222222222222222222222222222222222222222": 30,
		"0x3333333333333333333333333333333333333333": 20,
	}
	for addr, coins := range addrs {
		require.NoError(t, repo.Save(ctx, &fishing.Inventory{Address: addr, Coins: coins}))
	}

	w := httptest.NewRecorder()
	newTestRouter(session, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard?n=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var board []fishing.Inventory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 2)
	require.Equal(t, 30, board[0].Coins)
	require.Equal(t, 20, board[1].Coins)
}

func TestLeaderboardUnavailableWithoutGame(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(newTestSession(), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.JSONEq(t, `{"error":"leaderboard is not available"}`, w.Body.String())
}
