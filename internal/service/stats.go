// Package service provides business logic on top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/model"
	"chat-game-bot/internal/repository"
)

// Stats errors.
var (
	ErrNoParticipants = errors.New("match has no participants")
	ErrNoWinner       = errors.New("match has no winner")
	ErrUnknownKind    = errors.New("unknown game")
	ErrNoRecord       = errors.New("player has no recorded games")
)

// TopLimit is the leaderboard length.
const TopLimit = 10

// PlayerStore persists players.
type PlayerStore interface {
	Upsert(ctx context.Context, telegramID int64, username string) (*model.Player, error)
	GetByID(ctx context.Context, telegramID int64) (*model.Player, error)
}

// MatchStore persists matches and answers leaderboard queries.
type MatchStore interface {
	Create(ctx context.Context, m *model.Match) error
	StatsForPlayer(ctx context.Context, playerID int64) ([]*model.PlayerStat, error)
	TopWinners(ctx context.Context, kind string, limit int) ([]*model.TopWinner, error)
	CountMatches(ctx context.Context, kind string) (int, error)
}

// StatsService records finished games and serves the leaderboards.
type StatsService struct {
	players PlayerStore
	matches MatchStore
	now     func() time.Time
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(players PlayerStore, matches MatchStore) *StatsService {
	return &StatsService{
		players: players,
		matches: matches,
		now:     time.Now,
	}
}

// RecordMatch stores a finished game. Only games that produced a winner are
// recorded; a zero EndedAt is filled with the current time.
func (s *StatsService) RecordMatch(ctx context.Context, m *model.Match) error {
	if len(m.Players) == 0 {
		return ErrNoParticipants
	}
	if len(m.Winners()) == 0 {
		return ErrNoWinner
	}
	if m.EndedAt.IsZero() {
		m.EndedAt = s.now()
	}

	for _, p := range m.Players {
		if _, err := s.players.Upsert(ctx, p.PlayerID, p.Name); err != nil {
			return fmt.Errorf("record match %s: %w", m.ID, err)
		}
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return fmt.Errorf("record match %s: %w", m.ID, err)
	}

	log.Info().
		Str("match_id", m.ID.String()).
		Str("game", m.Kind).
		Int64("chat_id", m.ChatID).
		Str("reason", m.Reason).
		Int("players", len(m.Players)).
		Msg("Match recorded")
	return nil
}

// PlayerStats returns the caller's record per game kind, in display order,
// including kinds never played. Players never seen in a recorded match get
// ErrNoRecord.
func (s *StatsService) PlayerStats(ctx context.Context, playerID int64) ([]*model.PlayerStat, error) {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	stored, err := s.matches.StatsForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	byKind := make(map[string]*model.PlayerStat, len(stored))
	for _, st := range stored {
		byKind[st.Kind] = st
	}
	out := make([]*model.PlayerStat, 0, len(game.Kinds))
	for _, k := range game.Kinds {
		if st, ok := byKind[string(k)]; ok {
			out = append(out, st)
			continue
		}
		out = append(out, &model.PlayerStat{Kind: string(k)})
	}
	return out, nil
}

// TopWinners returns the leaderboard for the named game.
func (s *StatsService) TopWinners(ctx context.Context, name string) (game.Kind, []*model.TopWinner, error) {
	kind, ok := game.ParseKind(name)
	if !ok {
		return "", nil, ErrUnknownKind
	}
	top, err := s.matches.TopWinners(ctx, string(kind), TopLimit)
	if err != nil {
		return kind, nil, err
	}
	return kind, top, nil
}

// MatchCount returns how many matches of kind have been recorded.
func (s *StatsService) MatchCount(ctx context.Context, kind game.Kind) (int, error) {
	return s.matches.CountMatches(ctx, string(kind))
}
