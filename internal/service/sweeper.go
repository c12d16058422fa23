package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/config"
	"chat-game-bot/internal/game"
)

// ExpiryFunc is told about every session the sweeper removed for inactivity.
type ExpiryFunc func(ctx context.Context, s game.Session)

// Sweeper periodically ends lobbies nobody began and games nobody plays.
type Sweeper struct {
	cron      *cron.Cron
	schedule  string
	stores    []game.Store
	lobbyTTL  time.Duration
	activeTTL time.Duration
	onExpire  ExpiryFunc
	now       func() time.Time
}

// NewSweeper creates a sweeper over stores.
func NewSweeper(cfg config.SweeperConfig, onExpire ExpiryFunc, stores ...game.Store) *Sweeper {
	return &Sweeper{
		cron:      cron.New(),
		schedule:  cfg.Schedule,
		stores:    stores,
		lobbyTTL:  cfg.LobbyTTL,
		activeTTL: cfg.ActiveTTL,
		onExpire:  onExpire,
		now:       time.Now,
	}
}

// Start schedules the sweep and starts the cron runner.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if n := s.Sweep(context.Background()); n > 0 {
			log.Info().Int("removed", n).Msg("Idle sessions swept")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweeper %q: %w", s.schedule, err)
	}
	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Dur("lobby_ttl", s.lobbyTTL).
		Dur("active_ttl", s.activeTTL).
		Msg("Sweeper started")
	return nil
}

// Stop stops the runner and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass and returns how many sessions it removed. Ended
// sessions left behind are dropped silently; idle ones are reported through
// the expiry callback. Chats busy with a command are left for the next pass.
func (s *Sweeper) Sweep(ctx context.Context) int {
	removed := 0
	for _, store := range s.stores {
		for _, sess := range store.Snapshot() {
			scope, id := sess.ScopeID(), sess.ID()

			var gone game.Session
			var idle bool
			ran, _ := store.TryWithLock(scope, func() error {
				gone, _ = store.DeleteIf(scope, func(cur game.Session) bool {
					if cur.ID() != id {
						return false
					}
					idle = s.idle(cur)
					return idle || cur.Phase() == game.PhaseEnded
				})
				return nil
			})
			if !ran {
				log.Debug().Int64("chat_id", scope).Str("game", string(store.Kind())).Msg("Chat busy, sweep skipped")
				continue
			}
			if gone == nil {
				continue
			}

			removed++
			log.Info().
				Int64("chat_id", scope).
				Str("game", string(store.Kind())).
				Str("session", id.String()).
				Bool("idle", idle).
				Msg("Session swept")
			if idle && s.onExpire != nil {
				s.onExpire(ctx, gone)
			}
		}
	}
	return removed
}

func (s *Sweeper) idle(sess game.Session) bool {
	ttl := s.activeTTL
	switch sess.Phase() {
	case game.PhaseEnded:
		return false
	case game.PhaseLobby:
		ttl = s.lobbyTTL
	}
	return ttl > 0 && s.now().Sub(sess.LastActivity()) > ttl
}
