// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Whitelist  WhitelistConfig  `mapstructure:"whitelist"`
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Games      GamesConfig      `mapstructure:"games"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	// Enabled turns the results ledger on; without it stats commands are unavailable.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig lists users allowed to end any game.
type AdminConfig struct {
	UserIDs []int64 `mapstructure:"user_ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	ChatIDs []int64 `mapstructure:"chat_ids"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds the status HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SweeperConfig controls the idle session sweeper.
type SweeperConfig struct {
	Schedule  string        `mapstructure:"schedule"`
	LobbyTTL  time.Duration `mapstructure:"lobby_ttl"`
	ActiveTTL time.Duration `mapstructure:"active_ttl"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	ChainReaction ChainReactionConfig `mapstructure:"chainreaction"`
	Pool          PoolConfig          `mapstructure:"pool"`
	WordChain     WordChainConfig     `mapstructure:"wordchain"`
	Mafia         MafiaConfig         `mapstructure:"mafia"`
}

// ChainReactionConfig holds the default board size.
type ChainReactionConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// PoolConfig holds pool configuration.
type PoolConfig struct {
	DefaultPower float64 `mapstructure:"default_power"`
}

// WordChainConfig holds word chain configuration.
type WordChainConfig struct {
	TurnTimeout  time.Duration `mapstructure:"turn_timeout"`
	Challenges   int           `mapstructure:"challenges"`
	WinningScore int           `mapstructure:"winning_score"`
}

// MafiaConfig holds mafia configuration.
type MafiaConfig struct {
	MinPlayers int `mapstructure:"min_players"`
}

// DictionaryConfig points at the optional word list.
type DictionaryConfig struct {
	Path string `mapstructure:"path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in configPath, the working directory and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, DATABASE_HOST, SWEEPER_LOBBY_TTL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamebot")
	v.SetDefault("database.name", "gamebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("sweeper.schedule", "@every 1m")
	v.SetDefault("sweeper.lobby_ttl", "15m")
	v.SetDefault("sweeper.active_ttl", "1h")

	v.SetDefault("games.chainreaction.width", 6)
	v.SetDefault("games.chainreaction.height", 8)
	v.SetDefault("games.pool.default_power", 65)
	v.SetDefault("games.wordchain.turn_timeout", "30s")
	v.SetDefault("games.wordchain.challenges", 20)
	v.SetDefault("games.wordchain.winning_score", 20)
	v.SetDefault("games.mafia.min_players", 4)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admin.UserIDs, userID)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
// An empty whitelist allows every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.Whitelist.ChatIDs) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.ChatIDs, chatID)
}
