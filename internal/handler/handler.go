// Package handler turns chat commands into game operations and formats the
// replies. It talks to the chat network only through Messenger so every
// handler can be driven without a live bot.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/pool"
	"chat-game-bot/internal/model"
)

// Sender identifies who issued a command.
type Sender struct {
	ID   int64
	Name string
}

// Request is one inbound command or button press.
type Request struct {
	ChatID  int64
	Private bool
	Sender  Sender
	// Args are the words after the command, e.g. ["move", "12"].
	Args []string
	// Mentions holds the ids of users mentioned in the message, in order.
	Mentions []int64
}

// Sub returns the lowercased first argument.
func (r *Request) Sub() string {
	if len(r.Args) == 0 {
		return ""
	}
	return strings.ToLower(r.Args[0])
}

// Rest returns the arguments after the first one.
func (r *Request) Rest() []string {
	if len(r.Args) < 2 {
		return nil
	}
	return r.Args[1:]
}

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Message is an outbound message. When Image is set, Text is its caption.
type Message struct {
	Text    string
	Image   []byte
	Buttons [][]Button
}

// Messenger delivers messages to chats and to individual users.
type Messenger interface {
	SendChat(ctx context.Context, chatID int64, msg *Message) error
	SendDirect(ctx context.Context, userID int64, msg *Message) error
}

// Renderer draws game state.
type Renderer interface {
	ChainReaction(s *chainreaction.Snapshot) ([]byte, error)
	Pool(s *pool.Snapshot) ([]byte, error)
}

// Recorder stores finished games.
type Recorder interface {
	RecordMatch(ctx context.Context, m *model.Match) error
}

// Command returns the chat command for kind.
func Command(kind game.Kind) string {
	switch kind {
	case game.KindChainReaction:
		return "cr"
	case game.KindWordChain:
		return "wcg"
	default:
		return string(kind)
	}
}

// base holds what every game handler needs to talk back.
type base struct {
	out      Messenger
	recorder Recorder
	isAdmin  func(userID int64) bool
}

func (b *base) send(ctx context.Context, chatID int64, msg *Message) {
	if err := b.out.SendChat(ctx, chatID, msg); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver message")
	}
}

func (b *base) say(ctx context.Context, chatID int64, format string, args ...any) {
	b.send(ctx, chatID, &Message{Text: fmt.Sprintf(format, args...)})
}

// direct messages a user and reports whether it arrived.
func (b *base) direct(ctx context.Context, userID int64, msg *Message) bool {
	if err := b.out.SendDirect(ctx, userID, msg); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to deliver direct message")
		return false
	}
	return true
}

// picture sends text with the rendered image. A failed render still delivers
// the text.
func (b *base) picture(ctx context.Context, chatID int64, text string, draw func() ([]byte, error)) {
	img, err := draw()
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to render game state")
		b.send(ctx, chatID, &Message{Text: text})
		return
	}
	b.send(ctx, chatID, &Message{Text: text, Image: img})
}

// fail replies to req with the text for err. A nil err is ignored.
func (b *base) fail(ctx context.Context, req *Request, err error) {
	if err == nil {
		return
	}
	logRejection(req, err)
	b.send(ctx, req.ChatID, &Message{Text: "❌ " + ReplyText(err)})
}

func (b *base) admin(userID int64) bool {
	return b.isAdmin != nil && b.isAdmin(userID)
}

// record stores the match when a recorder is configured. Failures are only
// logged.
func (b *base) record(ctx context.Context, s game.Session, reason string, players []*model.MatchPlayer) {
	if b.recorder == nil {
		return
	}
	m := &model.Match{
		ID:        s.ID(),
		Kind:      string(s.Kind()),
		ChatID:    s.ScopeID(),
		Reason:    reason,
		StartedAt: s.StartedAt(),
		Players:   players,
	}
	if err := b.recorder.RecordMatch(ctx, m); err != nil {
		log.Error().Err(err).
			Str("game", string(s.Kind())).
			Int64("chat_id", s.ScopeID()).
			Msg("Failed to record match")
	}
}
