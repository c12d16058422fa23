package handler

import (
	"context"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
)

// lobbySession is what the shared lobby commands need from an engine.
type lobbySession interface {
	game.Session
	IsHost(id int64) bool
	HostName() string
	Len() int
	InLobby() bool
	Join(id int64, name string) error
	Leave(id int64) (bool, error)
	End(ctx context.Context) error
}

// lifecycle implements start, join, leave and end on top of a registry.
type lifecycle[S lobbySession] struct {
	*base
	kind game.Kind
	reg  *game.Registry[S]
}

// with runs fn on the chat's live session while holding the chat lock.
func (l *lifecycle[S]) with(chatID int64, fn func(S) error) error {
	return l.reg.WithLock(chatID, func() error {
		s, ok := l.reg.Get(chatID)
		if !ok || s.Phase() == game.PhaseEnded {
			return game.Reject(game.ErrNoActiveGame, "No %s game in this chat. Start one with /%s start.",
				l.kind.Title(), Command(l.kind))
		}
		return fn(s)
	})
}

// finish removes an ended session from the registry.
func (l *lifecycle[S]) finish(s S) {
	l.reg.DeleteIf(s.ScopeID(), func(cur game.Session) bool { return cur.ID() == s.ID() })
}

func (l *lifecycle[S]) start(ctx context.Context, req *Request, open func() (S, error), intro string) {
	err := l.reg.WithLock(req.ChatID, func() error {
		if cur, ok := l.reg.Get(req.ChatID); ok && cur.Phase() != game.PhaseEnded {
			return game.Reject(game.ErrAlreadyActive, "A %s game is already running here. Use /%s status.",
				l.kind.Title(), Command(l.kind))
		}
		s, err := open()
		if err != nil {
			return err
		}
		if err := l.reg.Create(s); err != nil {
			s.Close()
			return err
		}
		log.Info().
			Int64("chat_id", req.ChatID).
			Int64("user_id", req.Sender.ID).
			Str("game", string(l.kind)).
			Str("session", s.ID().String()).
			Msg("Lobby opened")
		l.say(ctx, req.ChatID, "🎮 %s opened a %s lobby.\n%s", req.Sender.Name, l.kind.Title(), intro)
		return nil
	})
	l.fail(ctx, req, err)
}

func (l *lifecycle[S]) join(ctx context.Context, req *Request) {
	l.fail(ctx, req, l.with(req.ChatID, func(s S) error {
		if err := s.Join(req.Sender.ID, req.Sender.Name); err != nil {
			return err
		}
		l.say(ctx, req.ChatID, "✅ %s joined (%d players). Host %s can /%s begin.",
			req.Sender.Name, s.Len(), s.HostName(), Command(l.kind))
		return nil
	}))
}

func (l *lifecycle[S]) leave(ctx context.Context, req *Request) {
	l.fail(ctx, req, l.with(req.ChatID, func(s S) error {
		hostChanged, err := s.Leave(req.Sender.ID)
		if err != nil {
			return err
		}
		if s.Len() == 0 {
			l.reg.Delete(req.ChatID)
			l.say(ctx, req.ChatID, "👋 %s left. The lobby is empty and has been closed.", req.Sender.Name)
			return nil
		}
		msg := "👋 " + req.Sender.Name + " left."
		if hostChanged {
			msg += " " + s.HostName() + " is the new host."
		}
		l.say(ctx, req.ChatID, "%s", msg)
		return nil
	}))
}

// end stops the game. Only the host or a bot admin may do it.
func (l *lifecycle[S]) end(ctx context.Context, req *Request) {
	l.fail(ctx, req, l.with(req.ChatID, func(s S) error {
		if !s.IsHost(req.Sender.ID) && !l.admin(req.Sender.ID) {
			return game.Reject(game.ErrNotHost, "Only the host (%s) can end the game.", s.HostName())
		}
		if err := s.End(ctx); err != nil {
			return err
		}
		l.reg.Delete(req.ChatID)
		log.Info().
			Int64("chat_id", req.ChatID).
			Int64("user_id", req.Sender.ID).
			Str("game", string(l.kind)).
			Msg("Game stopped")
		l.say(ctx, req.ChatID, "🛑 The %s game was ended by %s.", l.kind.Title(), req.Sender.Name)
		return nil
	}))
}
