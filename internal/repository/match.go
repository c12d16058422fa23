package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-game-bot/internal/model"
)

// MatchRepository stores finished games and answers leaderboard queries.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// Create stores the match and its participants in one transaction. Every
// participant must already exist in the players table.
func (r *MatchRepository) Create(ctx context.Context, m *model.Match) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertMatch = `
			INSERT INTO matches (id, kind, chat_id, reason, started_at, ended_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, insertMatch, m.ID, m.Kind, m.ChatID, m.Reason, m.StartedAt, m.EndedAt); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}

		const insertPlayer = `
			INSERT INTO match_players (match_id, player_id, name, won, score)
			VALUES ($1, $2, $3, $4, $5)
		`
		batch := &pgx.Batch{}
		for _, p := range m.Players {
			batch.Queue(insertPlayer, m.ID, p.PlayerID, p.Name, p.Won, p.Score)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to create match players: %w", err)
		}
		return nil
	})
}

// StatsForPlayer returns the player's played and won counts per game kind.
func (r *MatchRepository) StatsForPlayer(ctx context.Context, playerID int64) ([]*model.PlayerStat, error) {
	const query = `
		SELECT m.kind, COUNT(*) AS played, COUNT(*) FILTER (WHERE mp.won) AS won
		FROM match_players mp
		JOIN matches m ON m.id = mp.match_id
		WHERE mp.player_id = $1
		GROUP BY m.kind
		ORDER BY m.kind
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.PlayerStat
	for rows.Next() {
		var s model.PlayerStat
		if err := rows.Scan(&s.Kind, &s.Played, &s.Won); err != nil {
			return nil, fmt.Errorf("failed to scan player stat: %w", err)
		}
		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player stats: %w", err)
	}

	return stats, nil
}

// TopWinners returns the players with the most wins in kind. Ties go to the
// player with fewer games played.
func (r *MatchRepository) TopWinners(ctx context.Context, kind string, limit int) ([]*model.TopWinner, error) {
	const query = `
		SELECT mp.player_id, p.username,
		       COUNT(*) FILTER (WHERE mp.won) AS wins,
		       COUNT(*) AS played
		FROM match_players mp
		JOIN matches m ON m.id = mp.match_id
		JOIN players p ON p.telegram_id = mp.player_id
		WHERE m.kind = $1
		GROUP BY mp.player_id, p.username
		HAVING COUNT(*) FILTER (WHERE mp.won) > 0
		ORDER BY wins DESC, played ASC, mp.player_id ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top winners: %w", err)
	}
	defer rows.Close()

	var top []*model.TopWinner
	for rows.Next() {
		var w model.TopWinner
		if err := rows.Scan(&w.PlayerID, &w.Username, &w.Wins, &w.Played); err != nil {
			return nil, fmt.Errorf("failed to scan top winner: %w", err)
		}
		top = append(top, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top winners: %w", err)
	}

	return top, nil
}

// CountMatches returns how many matches of kind are stored.
func (r *MatchRepository) CountMatches(ctx context.Context, kind string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE kind = $1`, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}
