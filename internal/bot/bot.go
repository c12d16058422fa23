// Package bot connects the game handlers to Telegram.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chat-game-bot/internal/config"
	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/chainreaction"
	"chat-game-bot/internal/game/mafia"
	"chat-game-bot/internal/game/pool"
	"chat-game-bot/internal/game/wordchain"
	"chat-game-bot/internal/handler"
)

const handlerTimeout = 30 * time.Second

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config
	ctx context.Context
	out *messenger

	chainReaction *handler.ChainReactionHandler
	pool          *handler.PoolHandler
	mafia         *handler.MafiaHandler
	wordChain     *handler.WordChainHandler
	stats         *handler.StatsHandler
	help          *handler.HelpHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	// Context bounds handler work; cancel it on shutdown.
	Context  context.Context
	Config   *config.Config
	Renderer handler.Renderer
	// Recorder and Stats are nil when no database is configured.
	Recorder   handler.Recorder
	Stats      handler.StatsReader
	Dictionary wordchain.Dictionary
	StartedAt  time.Time

	ChainReaction *game.Registry[*chainreaction.Game]
	Pool          *game.Registry[*pool.Game]
	Mafia         *game.Registry[*mafia.Game]
	WordChain     *game.Registry[*wordchain.Game]
	Directory     *mafia.Directory
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: deps.Config.Bot.PollTimeout},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newBot(teleBot, deps), nil
}

func newBot(teleBot *tele.Bot, deps *Dependencies) *Bot {
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := deps.Config
	b := &Bot{
		bot: teleBot,
		cfg: cfg,
		ctx: ctx,
		out: &messenger{bot: teleBot},
	}

	games := cfg.Games
	b.chainReaction = handler.NewChainReactionHandler(deps.ChainReaction, b.out, deps.Renderer, deps.Recorder,
		cfg.IsAdmin, games.ChainReaction.Width, games.ChainReaction.Height)
	b.pool = handler.NewPoolHandler(deps.Pool, b.out, deps.Renderer, deps.Recorder,
		cfg.IsAdmin, games.Pool.DefaultPower)
	b.mafia = handler.NewMafiaHandler(deps.Mafia, deps.Directory, b.out, deps.Recorder,
		cfg.IsAdmin, games.Mafia.MinPlayers)
	b.wordChain = handler.NewWordChainHandler(ctx, deps.WordChain, b.out, deps.Recorder, cfg.IsAdmin,
		handler.WordChainOptions{
			TurnTimeout:  games.WordChain.TurnTimeout,
			Challenges:   games.WordChain.Challenges,
			WinningScore: games.WordChain.WinningScore,
			Dictionary:   deps.Dictionary,
		})
	b.stats = handler.NewStatsHandler(deps.Stats, b.out)
	b.help = handler.NewHelpHandler(b.out, deps.StartedAt)

	b.registerMiddleware()
	b.registerHandlers()
	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.command(b.help.HandleHelp))
	b.bot.Handle("/help", b.command(b.help.HandleHelp))
	b.bot.Handle("/uptime", b.command(b.help.HandleUptime))

	b.bot.Handle("/cr", b.command(b.chainReaction.Handle))
	b.bot.Handle("/pool", b.command(b.pool.Handle))
	b.bot.Handle("/mafia", b.command(b.mafia.Handle))
	b.bot.Handle("/wcg", b.command(b.wordChain.Handle))

	b.bot.Handle("/gamestats", b.command(b.stats.HandleStats))
	b.bot.Handle("/gametop", b.command(b.stats.HandleTop))

	b.bot.Handle(tele.OnText, b.handleText)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// command adapts a handler function to telebot.
func (b *Bot) command(fn func(context.Context, *handler.Request)) tele.HandlerFunc {
	return func(c tele.Context) error {
		req := request(c)
		if req == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
		defer cancel()
		fn(ctx, req)
		return nil
	}
}

// handleText feeds plain words to Word Chain and suggests fixes for
// mistyped commands.
func (b *Bot) handleText(c tele.Context) error {
	req := request(c)
	if req == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		b.help.HandleUnknown(ctx, req, strings.Fields(text)[0])
		return nil
	}
	if !req.Private {
		b.wordChain.HandleText(ctx, req, text)
	}
	return nil
}

// handleCallback routes inline button presses to the game that sent them.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	name, verb, param, ok := handler.DecodeCallback(data)
	if !ok {
		return c.Respond()
	}
	req := request(c)
	if req == nil {
		return c.Respond()
	}
	req.Args = []string{verb, param}

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()

	kind, _ := game.ParseKind(name)
	switch kind {
	case game.KindMafia:
		b.mafia.Handle(ctx, req)
	case game.KindChainReaction:
		b.chainReaction.Handle(ctx, req)
	case game.KindPool:
		b.pool.Handle(ctx, req)
	case game.KindWordChain:
		b.wordChain.Handle(ctx, req)
	default:
		log.Warn().Str("data", data).Msg("Callback for unknown game")
	}
	return c.Respond()
}

// Messenger returns the outbound side of the bot for background jobs.
func (b *Bot) Messenger() handler.Messenger { return b.out }

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
