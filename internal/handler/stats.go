package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/model"
	"chat-game-bot/internal/service"
)

// StatsReader answers the statistics commands.
type StatsReader interface {
	PlayerStats(ctx context.Context, playerID int64) ([]*model.PlayerStat, error)
	TopWinners(ctx context.Context, name string) (game.Kind, []*model.TopWinner, error)
	MatchCount(ctx context.Context, kind game.Kind) (int, error)
}

// StatsHandler handles /gamestats and /gametop.
type StatsHandler struct {
	*base
	stats StatsReader
}

// NewStatsHandler creates a new StatsHandler. A nil stats reader means no
// database is configured.
func NewStatsHandler(stats StatsReader, out Messenger) *StatsHandler {
	return &StatsHandler{base: &base{out: out}, stats: stats}
}

func (h *StatsHandler) unavailable(ctx context.Context, req *Request) bool {
	if h.stats != nil {
		return false
	}
	h.say(ctx, req.ChatID, "📊 Statistics are not available right now.")
	return true
}

// HandleStats handles /gamestats, showing the sender's record per game.
func (h *StatsHandler) HandleStats(ctx context.Context, req *Request) {
	if h.unavailable(ctx, req) {
		return
	}
	stats, err := h.stats.PlayerStats(ctx, req.Sender.ID)
	if errors.Is(err, service.ErrNoRecord) {
		h.say(ctx, req.ChatID, "📊 %s has no recorded games yet.", req.Sender.Name)
		return
	}
	if err != nil {
		h.fail(ctx, req, err)
		return
	}

	msg := fmt.Sprintf("📊 %s's games\n", req.Sender.Name)
	msg += "━━━━━━━━━━━━━━━\n"
	for _, s := range stats {
		msg += fmt.Sprintf("%s: %d won / %d played\n", game.Kind(s.Kind).Title(), s.Won, s.Played)
	}
	msg += "━━━━━━━━━━━━━━━"
	h.say(ctx, req.ChatID, "%s", msg)
}

// HandleTop handles /gametop <game>.
func (h *StatsHandler) HandleTop(ctx context.Context, req *Request) {
	if h.unavailable(ctx, req) {
		return
	}
	if len(req.Args) == 0 {
		h.say(ctx, req.ChatID, "Usage: /gametop <cr|pool|mafia|wcg>")
		return
	}
	kind, winners, err := h.stats.TopWinners(ctx, strings.ToLower(req.Args[0]))
	if errors.Is(err, service.ErrUnknownKind) {
		h.say(ctx, req.ChatID, "❌ Unknown game %q. Try cr, pool, mafia or wcg.", req.Args[0])
		return
	}
	if err != nil {
		h.fail(ctx, req, err)
		return
	}

	msg := fmt.Sprintf("🏆 %s TOP %d\n", kind.Title(), service.TopLimit)
	msg += "━━━━━━━━━━━━━━━\n"
	if len(winners) == 0 {
		msg += "No games recorded yet.\n"
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, w := range winners {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := w.Username
		if name == "" {
			name = fmt.Sprintf("User%d", w.PlayerID)
		}
		msg += fmt.Sprintf("%s %s: %d wins (%d played)\n", rank, name, w.Wins, w.Played)
	}
	msg += "━━━━━━━━━━━━━━━"
	if n, err := h.stats.MatchCount(ctx, kind); err != nil {
		log.Warn().Err(err).Str("game", string(kind)).Msg("Failed to count matches")
	} else if n > 0 {
		msg += fmt.Sprintf("\n%d games recorded", n)
	}
	h.say(ctx, req.ChatID, "%s", msg)
}
