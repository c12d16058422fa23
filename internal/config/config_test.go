package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Bot.PollTimeout)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "@every 1m", cfg.Sweeper.Schedule)
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.LobbyTTL)
	assert.Equal(t, 6, cfg.Games.ChainReaction.Width)
	assert.Equal(t, 8, cfg.Games.ChainReaction.Height)
	assert.Equal(t, 65.0, cfg.Games.Pool.DefaultPower)
	assert.Equal(t, 30*time.Second, cfg.Games.WordChain.TurnTimeout)
	assert.Equal(t, 4, cfg.Games.Mafia.MinPlayers)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
bot:
  token: file-token
admin:
  user_ids: [7, 8]
whitelist:
  chat_ids: [-100]
games:
  wordchain:
    challenges: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, 5, cfg.Games.WordChain.Challenges)
	assert.True(t, cfg.IsAdmin(7))
	assert.False(t, cfg.IsAdmin(9))
	assert.True(t, cfg.IsChatAllowed(-100))
	assert.False(t, cfg.IsChatAllowed(-200))
}

func TestEmptyWhitelistAllowsAll(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsChatAllowed(-1))
	assert.True(t, cfg.IsChatAllowed(42))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", d.DSN())
}
