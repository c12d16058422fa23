// Package server exposes the bot's health and live sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
)

// Pinger reports database health.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Server is the status HTTP server.
type Server struct {
	http      *http.Server
	db        Pinger
	stores    []game.Store
	startedAt time.Time
}

// New creates a server listening on addr. db may be nil when no database is
// configured.
func New(addr string, db Pinger, startedAt time.Time, stores ...game.Store) *Server {
	s := &Server{
		db:        db,
		stores:    stores,
		startedAt: startedAt,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Status server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
