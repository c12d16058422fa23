// Package wordchain implements the Word Chain game: each turn a player gets a
// letter and a minimum length and must answer with a fitting word before the
// turn timer runs out.
package wordchain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"chat-game-bot/internal/game"
)

// Defaults.
const (
	MaxPlayers     = 10
	MinPlayers     = 2
	ChallengeCount = 20
	WinningScore   = 20
	TurnTimeout    = 30 * time.Second
)

// ErrStaleTimer is returned when an expiry arrives for a turn that has
// already been resolved.
var ErrStaleTimer = errors.New("stale turn timer")

// Player is a seat in a Word Chain game.
type Player struct {
	ID        int64
	Name      string
	Correct   int
	Incorrect int
}

func (p *Player) PlayerID() int64     { return p.ID }
func (p *Player) DisplayName() string { return p.Name }

// Options configure a game.
type Options struct {
	TurnTimeout  time.Duration
	Challenges   int
	WinningScore int
	Dictionary   Dictionary
	// OnTimeout is called from the timer goroutine when a turn expires. The
	// callee must take the session lock, check that sessionID is still the
	// live game, and pass seq to Timeout.
	OnTimeout func(scopeID int64, sessionID uuid.UUID, seq uint64)
	Rand      *rand.Rand
}

func (o *Options) fill() {
	if o.TurnTimeout <= 0 {
		o.TurnTimeout = TurnTimeout
	}
	if o.Challenges <= 0 {
		o.Challenges = ChallengeCount
	}
	if o.WinningScore <= 0 {
		o.WinningScore = WinningScore
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
}

// Turn is the prompt for the player on the clock.
type Turn struct {
	Player    *Player
	Challenge Challenge
	Number    int
	Total     int
	Timeout   time.Duration
}

// AnswerReport is the outcome of an answer or an expired turn.
type AnswerReport struct {
	Player   *Player
	Verdict  Verdict
	TimedOut bool
	// Next is the following prompt, nil when the game ended.
	Next *Turn
	// Final holds the standings once the game is over.
	Final []*Player
}

// Game is one Word Chain session.
type Game struct {
	*game.Lobby[*Player]
	opts       Options
	difficulty Difficulty
	challenges []Challenge
	index      int
	timer      game.TurnTimer
}

var _ game.Session = (*Game)(nil)

// New opens an empty lobby. The host joins like everyone else.
func New(scopeID, hostID int64, hostName string, opts Options) *Game {
	opts.fill()
	g := &Game{
		Lobby: game.NewLobby[*Player](scopeID, hostID, game.Rules{
			Capacity:   MaxPlayers,
			MinPlayers: MinPlayers,
		}),
		opts:       opts,
		difficulty: Normal,
	}
	g.NameHost(hostName)
	return g
}

func (g *Game) Kind() game.Kind { return game.KindWordChain }

// Close cancels the turn timer.
func (g *Game) Close() { g.timer.Stop() }

// Difficulty returns the chosen difficulty.
func (g *Game) Difficulty() Difficulty { return g.difficulty }

// Join seats a player.
func (g *Game) Join(id int64, name string) error {
	return g.Lobby.Join(&Player{ID: id, Name: name})
}

// Begin draws the challenges and starts the first turn.
func (g *Game) Begin(ctx context.Context, requester int64, d Difficulty) (*Turn, error) {
	if err := g.CheckBegin(requester); err != nil {
		return nil, err
	}
	g.difficulty = d
	g.challenges = newChallenges(g.opts.Rand, d, g.opts.Challenges)
	g.index = 0
	for _, p := range g.Players() {
		p.Correct, p.Incorrect = 0, 0
	}
	if err := g.Lobby.Begin(ctx); err != nil {
		return nil, err
	}
	return g.startTurn(), nil
}

// startTurn arms the timer for the current player and returns their prompt.
func (g *Game) startTurn() *Turn {
	g.timer.Arm(g.opts.TurnTimeout, func(seq uint64) {
		if g.opts.OnTimeout != nil {
			g.opts.OnTimeout(g.ScopeID(), g.ID(), seq)
		}
	})
	return g.CurrentTurn()
}

// CurrentTurn returns the live prompt, or nil outside play.
func (g *Game) CurrentTurn() *Turn {
	p, ok := g.Current()
	if !ok || g.index >= len(g.challenges) {
		return nil
	}
	return &Turn{
		Player:    p,
		Challenge: g.challenges[g.index],
		Number:    g.index + 1,
		Total:     len(g.challenges),
		Timeout:   g.opts.TurnTimeout,
	}
}

// Answer scores actor's word for the current challenge and passes the turn.
func (g *Game) Answer(ctx context.Context, actor int64, word string) (*AnswerReport, error) {
	if !g.InPlay() {
		return nil, game.Reject(game.ErrWrongPhase, "The game hasn't begun yet.")
	}
	p, _ := g.Current()
	if p.ID != actor {
		return nil, game.Reject(game.ErrNotYourTurn, "It's %s's turn.", p.Name)
	}

	rep := &AnswerReport{Player: p, Verdict: Validate(word, g.challenges[g.index], g.opts.Dictionary)}
	if rep.Verdict.Correct {
		p.Correct++
	} else {
		p.Incorrect++
	}
	return rep, g.advance(ctx, rep)
}

// Timeout handles an expired turn armed with seq. Expiries for a turn that
// was already resolved return ErrStaleTimer.
func (g *Game) Timeout(ctx context.Context, seq uint64) (*AnswerReport, error) {
	if !g.InPlay() || !g.timer.Live(seq) {
		return nil, ErrStaleTimer
	}
	p, _ := g.Current()
	p.Incorrect++
	rep := &AnswerReport{Player: p, TimedOut: true, Verdict: Verdict{Reason: "time is up"}}
	return rep, g.advance(ctx, rep)
}

func (g *Game) advance(ctx context.Context, rep *AnswerReport) error {
	g.timer.Stop()
	g.challenges[g.index].Answered = true
	g.index++
	g.Touch()

	if rep.Player.Correct >= g.opts.WinningScore || g.index >= len(g.challenges) {
		rep.Final = g.Standings()
		return g.End(ctx)
	}
	if _, err := g.AdvanceTurn(nil); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	rep.Next = g.startTurn()
	return nil
}

// End stops the timer and closes the game.
func (g *Game) End(ctx context.Context) error {
	g.timer.Stop()
	return g.Lobby.End(ctx)
}

// TimerArmed reports whether a turn deadline is pending.
func (g *Game) TimerArmed() bool { return g.timer.Armed() }

// Standings ranks players by correct answers, then fewest misses.
func (g *Game) Standings() []*Player {
	out := g.Players()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Correct != out[j].Correct {
			return out[i].Correct > out[j].Correct
		}
		return out[i].Incorrect < out[j].Incorrect
	})
	return out
}
