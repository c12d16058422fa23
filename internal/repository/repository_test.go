// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"chat-game-bot/internal/model"
	"chat-game-bot/internal/pkg/db"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// setupTestDB creates a PostgreSQL container with the schema applied.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pool))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})
	return pool
}

func newMatch(kind string, players ...*model.MatchPlayer) *model.Match {
	start := time.Now().Add(-10 * time.Minute).UTC().Truncate(time.Second)
	return &model.Match{
		ID:        uuid.New(),
		Kind:      kind,
		ChatID:    -100,
		Reason:    model.ReasonCapture,
		StartedAt: start,
		EndedAt:   start.Add(10 * time.Minute),
		Players:   players,
	}
}

func TestPlayerRepository_Upsert(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	p, err := repo.Upsert(ctx, 12345, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.TelegramID)
	assert.Equal(t, "alice", p.Username)
	assert.False(t, p.CreatedAt.IsZero())

	p, err = repo.Upsert(ctx, 12345, "alice_renamed")
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", p.Username)

	got, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", got.Username)
}

func TestPlayerRepository_GetByID_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewPlayerRepository(pool)

	_, err := repo.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestMatchRepository_CreateAndStats(t *testing.T) {
	pool := setupTestDB(t)
	players := NewPlayerRepository(pool)
	matches := NewMatchRepository(pool)
	ctx := context.Background()

	for id, name := range map[int64]string{1: "alice", 2: "bob"} {
		_, err := players.Upsert(ctx, id, name)
		require.NoError(t, err)
	}

	require.NoError(t, matches.Create(ctx, newMatch("chainreaction",
		&model.MatchPlayer{PlayerID: 1, Name: "alice", Won: true, Score: 7},
		&model.MatchPlayer{PlayerID: 2, Name: "bob"},
	)))
	require.NoError(t, matches.Create(ctx, newMatch("chainreaction",
		&model.MatchPlayer{PlayerID: 1, Name: "alice"},
		&model.MatchPlayer{PlayerID: 2, Name: "bob", Won: true},
	)))
	require.NoError(t, matches.Create(ctx, newMatch("pool",
		&model.MatchPlayer{PlayerID: 1, Name: "alice", Won: true},
		&model.MatchPlayer{PlayerID: 2, Name: "bob"},
	)))

	n, err := matches.CountMatches(ctx, "chainreaction")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := matches.StatsForPlayer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, model.PlayerStat{Kind: "chainreaction", Played: 2, Won: 1}, *stats[0])
	assert.Equal(t, model.PlayerStat{Kind: "pool", Played: 1, Won: 1}, *stats[1])

	stats, err = matches.StatsForPlayer(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestMatchRepository_CreateRollsBackOnUnknownPlayer(t *testing.T) {
	pool := setupTestDB(t)
	matches := NewMatchRepository(pool)
	ctx := context.Background()

	err := matches.Create(ctx, newMatch("pool", &model.MatchPlayer{PlayerID: 777, Name: "ghost", Won: true}))
	require.Error(t, err)

	n, err := matches.CountMatches(ctx, "pool")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMatchRepository_TopWinners(t *testing.T) {
	pool := setupTestDB(t)
	players := NewPlayerRepository(pool)
	matches := NewMatchRepository(pool)
	ctx := context.Background()

	for id, name := range map[int64]string{1: "alice", 2: "bob", 3: "carol"} {
		_, err := players.Upsert(ctx, id, name)
		require.NoError(t, err)
	}

	// alice 2 wins of 3, bob 2 wins of 2, carol none.
	results := []struct{ winner, loser int64 }{{1, 3}, {1, 2}, {2, 1}, {2, 3}}
	for _, r := range results {
		require.NoError(t, matches.Create(ctx, newMatch("wordchain",
			&model.MatchPlayer{PlayerID: r.winner, Name: "w", Won: true},
			&model.MatchPlayer{PlayerID: r.loser, Name: "l"},
		)))
	}

	top, err := matches.TopWinners(ctx, "wordchain", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, model.TopWinner{PlayerID: 2, Username: "bob", Wins: 2, Played: 2}, *top[0])
	assert.Equal(t, model.TopWinner{PlayerID: 1, Username: "alice", Wins: 2, Played: 3}, *top[1])

	top, err = matches.TopWinners(ctx, "wordchain", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	top, err = matches.TopWinners(ctx, "mafia", 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
