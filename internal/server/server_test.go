package server

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

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/pool"
)

type pinger struct{ err error }

func (p pinger) HealthCheck(context.Context) error { return p.err }

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		code     int
		database string
	}{
		{"no database", nil, http.StatusOK, "disabled"},
		{"healthy", pinger{}, http.StatusOK, "ok"},
		{"down", pinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(":0", tt.db, time.Now())
			rec := get(t, s, "/healthz")
			assert.Equal(t, tt.code, rec.Code)

			var body HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.database, body.Database)
		})
	}
}

func TestGames(t *testing.T) {
	cr := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	pl := game.NewRegistry[*pool.Game](game.KindPool)
	require.NoError(t, cr.Create(chainreaction.New(-2, 1, "a")))
	require.NoError(t, cr.Create(chainreaction.New(-1, 1, "a")))
	require.NoError(t, pl.Create(pool.New(-3, 1, "a")))

	s := New(":0", nil, time.Now(), cr, pl)

	rec := get(t, s, "/games")
	require.Equal(t, http.StatusOK, rec.Code)
	var body GamesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Games[game.KindChainReaction], 2)
	assert.Equal(t, int64(-2), body.Games[game.KindChainReaction][0].ChatID)
	assert.Equal(t, game.PhaseLobby, body.Games[game.KindPool][0].Phase)

	rec = get(t, s, "/games/8ball")
	require.Equal(t, http.StatusOK, rec.Code)
	body = GamesResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
	assert.NotContains(t, body.Games, game.KindChainReaction)

	rec = get(t, s, "/games/chess")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGamesMarksBusyChat(t *testing.T) {
	cr := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	require.NoError(t, cr.Create(chainreaction.New(-1, 1, "a")))
	s := New(":0", nil, time.Now(), cr)

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = cr.WithLock(-1, func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	rec := get(t, s, "/games/cr")
	require.Equal(t, http.StatusOK, rec.Code)
	var body GamesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Games[game.KindChainReaction], 1)
	view := body.Games[game.KindChainReaction][0]
	assert.True(t, view.Busy)
	assert.Empty(t, view.Phase)
}
