package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-game-bot/internal/config"
	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/wordchain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSweepRemovesIdleSessions(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	cr := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	wcg := game.NewRegistry[*wordchain.Game](game.KindWordChain)

	idleLobby := chainreaction.New(-1, 1, "a")
	idleLobby.SetClock(clk.now)
	require.NoError(t, cr.Create(idleLobby))

	busy := chainreaction.New(-2, 1, "a")
	busy.SetClock(clk.now)
	require.NoError(t, busy.Join(1, "a"))
	require.NoError(t, busy.Join(2, "b"))
	require.NoError(t, busy.Begin(ctx, 1, 3, 3))
	require.NoError(t, cr.Create(busy))

	word := wordchain.New(-3, 1, "a", wordchain.Options{TurnTimeout: time.Hour})
	word.SetClock(clk.now)
	require.NoError(t, word.Join(1, "a"))
	require.NoError(t, word.Join(2, "b"))
	_, err := word.Begin(ctx, 1, wordchain.Easy)
	require.NoError(t, err)
	require.NoError(t, wcg.Create(word))

	var expired []game.Session
	sw := NewSweeper(config.SweeperConfig{
		Schedule:  "@every 1m",
		LobbyTTL:  10 * time.Minute,
		ActiveTTL: time.Hour,
	}, func(_ context.Context, s game.Session) { expired = append(expired, s) }, cr, wcg)
	sw.now = clk.now

	clk.t = clk.t.Add(20 * time.Minute)
	assert.Equal(t, 1, sw.Sweep(ctx))
	require.Len(t, expired, 1)
	assert.Equal(t, idleLobby.ID(), expired[0].ID())
	_, ok := cr.Get(-1)
	assert.False(t, ok)

	busy.Touch()
	clk.t = clk.t.Add(50 * time.Minute)
	assert.Equal(t, 1, sw.Sweep(ctx))
	assert.Equal(t, word.ID(), expired[1].ID())
	assert.False(t, word.TimerArmed())
	assert.Equal(t, 1, cr.Len())
	assert.Zero(t, wcg.Len())
}

func TestSweepDropsEndedSessionsQuietly(t *testing.T) {
	ctx := context.Background()
	cr := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	g := chainreaction.New(-1, 1, "a")
	require.NoError(t, g.End(ctx))
	require.NoError(t, cr.Create(g))

	called := false
	sw := NewSweeper(config.SweeperConfig{LobbyTTL: time.Hour, ActiveTTL: time.Hour},
		func(context.Context, game.Session) { called = true }, cr)

	assert.Equal(t, 1, sw.Sweep(ctx))
	assert.False(t, called)
	assert.Zero(t, cr.Len())
}

func TestSweepSkipsBusyChat(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cr := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	g := chainreaction.New(-1, 1, "a")
	g.SetClock(clk.now)
	require.NoError(t, cr.Create(g))

	sw := NewSweeper(config.SweeperConfig{LobbyTTL: time.Minute, ActiveTTL: time.Hour}, nil, cr)
	sw.now = clk.now
	clk.t = clk.t.Add(time.Hour)

	_ = cr.WithLock(-1, func() error {
		assert.Zero(t, sw.Sweep(ctx))
		return nil
	})
	assert.Equal(t, 1, cr.Len())

	assert.Equal(t, 1, sw.Sweep(ctx))
	assert.Zero(t, cr.Len())
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	sw := NewSweeper(config.SweeperConfig{Schedule: "not a schedule"}, nil)
	assert.Error(t, sw.Start())
}
