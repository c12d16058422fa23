// Package model defines the persisted records of the game bot.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Player is a chat user that has finished at least one recorded game.
type Player struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Match is one finished game with a result.
type Match struct {
	ID        uuid.UUID      `db:"id"`
	Kind      string         `db:"kind"`
	ChatID    int64          `db:"chat_id"`
	Reason    string         `db:"reason"`
	StartedAt time.Time      `db:"started_at"`
	EndedAt   time.Time      `db:"ended_at"`
	Players   []*MatchPlayer `db:"-"`
}

// MatchPlayer is one participant's line in a match.
type MatchPlayer struct {
	MatchID  uuid.UUID `db:"match_id"`
	PlayerID int64     `db:"player_id"`
	Name     string    `db:"name"`
	Won      bool      `db:"won"`
	Score    int       `db:"score"`
}

// Winners returns the participants marked as winners.
func (m *Match) Winners() []*MatchPlayer {
	var out []*MatchPlayer
	for _, p := range m.Players {
		if p.Won {
			out = append(out, p)
		}
	}
	return out
}

// PlayerStat aggregates a player's record in one game kind.
type PlayerStat struct {
	Kind   string `db:"kind"`
	Played int    `db:"played"`
	Won    int    `db:"won"`
}

// TopWinner is a leaderboard line for one game kind.
type TopWinner struct {
	PlayerID int64  `db:"player_id"`
	Username string `db:"username"`
	Wins     int    `db:"wins"`
	Played   int    `db:"played"`
}

// Match end reasons.
const (
	ReasonCapture   = "capture"    // chain reaction: one colour left
	ReasonEightBall = "eight_ball" // pool: eight pocketed
	ReasonTown      = "town"       // mafia: murderers gone
	ReasonMurderer  = "murderer"   // mafia: murderers not outnumbered
	ReasonScore     = "score"      // word chain: challenges done or target reached
)
