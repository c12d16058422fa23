package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/pkg/lock"
)

// sessionLockWait bounds how long /games waits on a chat that is handling a
// command.
const sessionLockWait = 500 * time.Millisecond

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// SessionView is one live session in the /games listing.
type SessionView struct {
	Session      string    `json:"session"`
	ChatID       int64     `json:"chat_id"`
	Phase        string    `json:"phase,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	// Busy is set when the chat stayed locked and the details were skipped.
	Busy bool `json:"busy,omitempty"`
}

// GamesResponse is the /games body.
type GamesResponse struct {
	Total int                          `json:"total"`
	Games map[game.Kind][]*SessionView `json:"games"`
}

// RegisterRoutes builds the router.
func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/games", s.GamesHandler).Methods(http.MethodGet)
	r.HandleFunc("/games/{kind}", s.GamesHandler).Methods(http.MethodGet)
	return r
}

// HealthHandler reports liveness and database reachability.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "disabled",
		Uptime:   time.Since(s.startedAt).Truncate(time.Second).String(),
	}
	code := http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	writeJSON(w, code, resp)
}

// GamesHandler lists live sessions, optionally filtered by kind.
func (s *Server) GamesHandler(w http.ResponseWriter, r *http.Request) {
	var filter game.Kind
	if name, ok := mux.Vars(r)["kind"]; ok {
		k, valid := game.ParseKind(name)
		if !valid {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown game " + name})
			return
		}
		filter = k
	}

	resp := GamesResponse{Games: make(map[game.Kind][]*SessionView)}
	for _, store := range s.stores {
		if filter != "" && store.Kind() != filter {
			continue
		}
		views := make([]*SessionView, 0)
		for _, sess := range store.Snapshot() {
			view := &SessionView{Session: sess.ID().String(), ChatID: sess.ScopeID()}
			err := store.WithLockTimeout(r.Context(), sess.ScopeID(), sessionLockWait, func() error {
				view.Phase = sess.Phase()
				view.StartedAt = sess.StartedAt()
				view.LastActivity = sess.LastActivity()
				return nil
			})
			if errors.Is(err, lock.ErrLockTimeout) {
				view.Busy = true
			}
			views = append(views, view)
		}
		sort.Slice(views, func(i, j int) bool { return views[i].ChatID < views[j].ChatID })
		resp.Games[store.Kind()] = views
		resp.Total += len(views)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
