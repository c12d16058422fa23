// Package main is the entry point for the chat game bot.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/bot"
	"chat-game-bot/internal/config"
	"chat-game-bot/internal/dictionary"
	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/mafia"
	"chat-game-bot/internal/game/pool"
	"chat-game-bot/internal/game/wordchain"
	"chat-game-bot/internal/handler"
	"chat-game-bot/internal/pkg/db"
	"chat-game-bot/internal/render"
	"chat-game-bot/internal/repository"
	"chat-game-bot/internal/server"
	"chat-game-bot/internal/service"
)

func main() {
	startedAt := time.Now()

	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, keeping info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Results ledger
	var (
		pinger   server.Pinger
		recorder handler.Recorder
		stats    handler.StatsReader
	)
	if cfg.Database.Enabled {
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		if err := db.Migrate(ctx, dbPool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		statsService := service.NewStatsService(
			repository.NewPlayerRepository(dbPool.Pool),
			repository.NewMatchRepository(dbPool.Pool),
		)
		pinger, recorder, stats = dbPool, statsService, statsService
	} else {
		log.Warn().Msg("Database disabled, game results will not be recorded")
	}

	var dict wordchain.Dictionary
	if cfg.Dictionary.Path != "" {
		d, err := dictionary.Load(cfg.Dictionary.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Dictionary.Path).Msg("Dictionary unavailable, spell checking disabled")
		} else {
			log.Info().Int("words", d.Len()).Msg("Dictionary loaded")
			dict = d
		}
	} else {
		log.Info().Msg("No dictionary configured, word chain checks letter and length only")
	}

	// Session registries
	crGames := game.NewRegistry[*chainreaction.Game](game.KindChainReaction)
	poolGames := game.NewRegistry[*pool.Game](game.KindPool)
	mafiaGames := game.NewRegistry[*mafia.Game](game.KindMafia)
	wordGames := game.NewRegistry[*wordchain.Game](game.KindWordChain)
	stores := []game.Store{crGames, poolGames, mafiaGames, wordGames}

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Context:       ctx,
		Config:        cfg,
		Renderer:      render.New(),
		Recorder:      recorder,
		Stats:         stats,
		Dictionary:    dict,
		StartedAt:     startedAt,
		ChainReaction: crGames,
		Pool:          poolGames,
		Mafia:         mafiaGames,
		WordChain:     wordGames,
		Directory:     mafia.NewDirectory(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	out := telegramBot.Messenger()
	sweeper := service.NewSweeper(cfg.Sweeper, func(ctx context.Context, s game.Session) {
		msg := &handler.Message{Text: "⌛ The " + s.Kind().Title() + " game was closed after a period of inactivity."}
		if err := out.SendChat(ctx, s.ScopeID(), msg); err != nil {
			log.Warn().Err(err).Int64("chat_id", s.ScopeID()).Msg("Failed to announce expired game")
		}
	}, stores...)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sweeper")
	}

	statusServer := server.New(cfg.Server.Addr, pinger, startedAt, stores...)
	go func() {
		if err := statusServer.Start(); err != nil {
			log.Error().Err(err).Msg("Status server stopped")
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	telegramBot.Stop()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop status server")
	}
	cancel()

	for _, store := range stores {
		for _, s := range store.Snapshot() {
			s.Close()
		}
	}
	log.Info().Msg("Bot stopped gracefully")
}
