package handler

import (
	"context"
	"strings"
	"time"

	"chat-game-bot/internal/dictionary"
)

// Commands lists every top-level command the bot answers.
var Commands = []string{"cr", "pool", "mafia", "wcg", "gamestats", "gametop", "uptime", "help"}

const helpText = `🎲 Games
/cr - Chain Reaction (2-8 players)
/pool - 8-Ball Pool (2 players)
/mafia - Mafia (4+ players)
/wcg - Word Chain (2-10 players)

Send /<game> help for the rules of each game.

📊 Stats
/gamestats - your wins per game
/gametop <game> - the leaderboard
/uptime - how long the bot has been running`

// HelpHandler handles /help, /uptime and unknown commands.
type HelpHandler struct {
	*base
	startedAt time.Time
	now       func() time.Time
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(out Messenger, startedAt time.Time) *HelpHandler {
	return &HelpHandler{base: &base{out: out}, startedAt: startedAt, now: time.Now}
}

// HandleHelp handles /help and /start.
func (h *HelpHandler) HandleHelp(ctx context.Context, req *Request) {
	h.say(ctx, req.ChatID, "%s", helpText)
}

// HandleUptime handles /uptime.
func (h *HelpHandler) HandleUptime(ctx context.Context, req *Request) {
	up := h.now().Sub(h.startedAt).Truncate(time.Second)
	h.say(ctx, req.ChatID, "⏱ Up for %s (since %s).", up, h.startedAt.UTC().Format(time.RFC3339))
}

// HandleUnknown suggests the closest known command for a mistyped one.
// It reports whether a suggestion was sent.
func (h *HelpHandler) HandleUnknown(ctx context.Context, req *Request, command string) bool {
	cmd := strings.ToLower(strings.TrimPrefix(command, "/"))
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	best, ok := dictionary.Closest(cmd, Commands, 2)
	if !ok || best == cmd {
		return false
	}
	h.say(ctx, req.ChatID, "🤔 Unknown command /%s. Did you mean /%s?", cmd, best)
	return true
}
