package handler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/wordchain"
	"chat-game-bot/internal/model"
)

const wordChainHelp = `🔤 Word Chain
/wcg start - open a lobby
/wcg join, /wcg leave
/wcg begin [easy|normal|hard] - host starts the game
/wcg <word> or just send the word when it's your turn
/wcg status - show the current challenge and scores
/wcg end - stop the game

Each turn you get a letter and a minimum length. Answer within %s. First to %d correct answers wins, otherwise the best score after %d challenges.`

// WordChainOptions carries the configurable game settings.
type WordChainOptions struct {
	TurnTimeout  time.Duration
	Challenges   int
	WinningScore int
	// Dictionary may be nil, in which case only letter and length are checked.
	Dictionary wordchain.Dictionary
}

// WordChainHandler handles /wcg and plain-text answers.
type WordChainHandler struct {
	lifecycle[*wordchain.Game]
	opts WordChainOptions
	// ctx is used for turn expiries, which arrive outside any request.
	ctx context.Context
}

// NewWordChainHandler creates a new WordChainHandler. ctx bounds the work
// done when a turn times out.
func NewWordChainHandler(ctx context.Context, reg *game.Registry[*wordchain.Game], out Messenger,
	recorder Recorder, isAdmin func(int64) bool, opts WordChainOptions) *WordChainHandler {
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = wordchain.TurnTimeout
	}
	if opts.Challenges <= 0 {
		opts.Challenges = wordchain.ChallengeCount
	}
	if opts.WinningScore <= 0 {
		opts.WinningScore = wordchain.WinningScore
	}
	return &WordChainHandler{
		lifecycle: lifecycle[*wordchain.Game]{
			base: &base{out: out, recorder: recorder, isAdmin: isAdmin},
			kind: game.KindWordChain,
			reg:  reg,
		},
		opts: opts,
		ctx:  ctx,
	}
}

// Handle dispatches a /wcg command.
func (h *WordChainHandler) Handle(ctx context.Context, req *Request) {
	switch req.Sub() {
	case "", "help":
		h.say(ctx, req.ChatID, wordChainHelp, h.opts.TurnTimeout, h.opts.WinningScore, h.opts.Challenges)
	case "start":
		h.start(ctx, req, func() (*wordchain.Game, error) {
			return wordchain.New(req.ChatID, req.Sender.ID, req.Sender.Name, wordchain.Options{
				TurnTimeout:  h.opts.TurnTimeout,
				Challenges:   h.opts.Challenges,
				WinningScore: h.opts.WinningScore,
				Dictionary:   h.opts.Dictionary,
				OnTimeout:    h.onTimeout,
				Rand:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
			}), nil
		}, "Join with /wcg join, then the host starts with /wcg begin [easy|normal|hard].")
	case "join":
		h.join(ctx, req)
	case "leave":
		h.leave(ctx, req)
	case "end", "stop":
		h.end(ctx, req)
	case "begin":
		h.begin(ctx, req)
	case "status":
		h.status(ctx, req)
	case "play", "answer":
		h.answer(ctx, req, strings.Join(req.Rest(), " "))
	default:
		h.answer(ctx, req, strings.Join(req.Args, " "))
	}
}

// HandleText treats a single plain word from the player on the clock as an
// answer. It reports whether the text was consumed.
func (h *WordChainHandler) HandleText(ctx context.Context, req *Request, text string) bool {
	word := strings.TrimSpace(text)
	if word == "" || strings.ContainsFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }) {
		return false
	}
	if _, ok := h.reg.Get(req.ChatID); !ok {
		return false
	}
	consumed := false
	err := h.reg.WithLock(req.ChatID, func() error {
		g, ok := h.reg.Get(req.ChatID)
		if !ok || !g.InPlay() {
			return nil
		}
		if p, ok := g.Current(); !ok || p.ID != req.Sender.ID {
			return nil
		}
		consumed = true
		return h.play(ctx, g, req.Sender.ID, word)
	})
	if consumed {
		h.fail(ctx, req, err)
	}
	return consumed
}

func difficultyArg(args []string) (wordchain.Difficulty, error) {
	d, ok := wordchain.ParseDifficulty(strings.Join(args, " "))
	if !ok {
		return "", game.Reject(game.ErrInvalidArgument, "Difficulty must be easy, normal or hard.")
	}
	return d, nil
}

func (h *WordChainHandler) begin(ctx context.Context, req *Request) {
	d, err := difficultyArg(req.Rest())
	if err != nil {
		h.fail(ctx, req, err)
		return
	}
	h.fail(ctx, req, h.with(req.ChatID, func(g *wordchain.Game) error {
		turn, err := g.Begin(ctx, req.Sender.ID, d)
		if err != nil {
			return err
		}
		log.Info().
			Int64("chat_id", req.ChatID).
			Str("difficulty", string(d)).
			Int("players", g.Len()).
			Msg("Word chain started")
		h.say(ctx, req.ChatID, "🔤 Word Chain begins on %s!\n\n%s", d, h.prompt(turn))
		return nil
	}))
}

func (h *WordChainHandler) status(ctx context.Context, req *Request) {
	h.fail(ctx, req, h.with(req.ChatID, func(g *wordchain.Game) error {
		if g.InLobby() {
			h.say(ctx, req.ChatID, "⏳ Word Chain lobby (%d players), host %s.", g.Len(), g.HostName())
			return nil
		}
		h.say(ctx, req.ChatID, "%s\n\n%s", h.prompt(g.CurrentTurn()), h.standings(g.Standings()))
		return nil
	}))
}

func (h *WordChainHandler) answer(ctx context.Context, req *Request, word string) {
	if strings.TrimSpace(word) == "" {
		h.fail(ctx, req, game.Reject(game.ErrInvalidArgument, "Send a word: /wcg <word>"))
		return
	}
	h.fail(ctx, req, h.with(req.ChatID, func(g *wordchain.Game) error {
		return h.play(ctx, g, req.Sender.ID, word)
	}))
}

func (h *WordChainHandler) play(ctx context.Context, g *wordchain.Game, actor int64, word string) error {
	rep, err := g.Answer(ctx, actor, word)
	if err != nil {
		return err
	}
	h.report(ctx, g, rep)
	return nil
}

// onTimeout runs on the timer goroutine when a turn expires. Expiries from a
// game that has since been replaced in the chat are dropped.
func (h *WordChainHandler) onTimeout(scopeID int64, sessionID uuid.UUID, seq uint64) {
	err := h.reg.WithLock(scopeID, func() error {
		g, ok := h.reg.Get(scopeID)
		if !ok || g.ID() != sessionID {
			return nil
		}
		rep, err := g.Timeout(h.ctx, seq)
		if err != nil {
			return err
		}
		h.report(h.ctx, g, rep)
		return nil
	})
	if err != nil && !errors.Is(err, wordchain.ErrStaleTimer) {
		log.Error().Err(err).Int64("chat_id", scopeID).Msg("Failed to expire word chain turn")
	}
}

func (h *WordChainHandler) report(ctx context.Context, g *wordchain.Game, rep *wordchain.AnswerReport) {
	var b strings.Builder
	v := rep.Verdict
	switch {
	case rep.TimedOut:
		fmt.Fprintf(&b, "⏰ %s ran out of time.", rep.Player.Name)
	case v.Correct:
		fmt.Fprintf(&b, "✅ %s: \"%s\" is correct (%d).", rep.Player.Name, v.Word, rep.Player.Correct)
	case v.Suggestion != "":
		fmt.Fprintf(&b, "❌ %s: %s. Try: %s", rep.Player.Name, v.Reason, v.Suggestion)
	default:
		fmt.Fprintf(&b, "❌ %s: %s.", rep.Player.Name, v.Reason)
	}

	if rep.Final != nil {
		fmt.Fprintf(&b, "\n\n🏁 Game over!\n%s", h.standings(rep.Final))
		h.say(ctx, g.ScopeID(), "%s", b.String())
		if winners := h.results(rep.Final); winners != nil {
			h.record(ctx, g, model.ReasonScore, winners)
		}
		h.finish(g)
		return
	}
	fmt.Fprintf(&b, "\n\n%s", h.prompt(rep.Next))
	h.say(ctx, g.ScopeID(), "%s", b.String())
}

func (h *WordChainHandler) prompt(t *wordchain.Turn) string {
	if t == nil {
		return "No challenge right now."
	}
	return fmt.Sprintf("🎯 Challenge %d/%d for %s: a word starting with %c, at least %d letters. %s on the clock.",
		t.Number, t.Total, t.Player.Name, unicode.ToUpper(t.Challenge.Letter), t.Challenge.Length, t.Timeout)
}

func (h *WordChainHandler) standings(players []*wordchain.Player) string {
	lines := make([]string, 0, len(players))
	for i, p := range players {
		lines = append(lines, fmt.Sprintf("%d. %s: %d correct, %d missed", i+1, p.Name, p.Correct, p.Incorrect))
	}
	return strings.Join(lines, "\n")
}

// results marks the top scorers as winners. It returns nil when nobody
// answered anything correctly.
func (h *WordChainHandler) results(final []*wordchain.Player) []*model.MatchPlayer {
	if len(final) == 0 || final[0].Correct == 0 {
		return nil
	}
	best := final[0].Correct
	out := make([]*model.MatchPlayer, 0, len(final))
	for _, p := range final {
		out = append(out, &model.MatchPlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Won:      p.Correct == best,
			Score:    p.Correct,
		})
	}
	return out
}
