// Package pool implements two-player 8-ball on a simulated table.
package pool

import (
	"context"
	"fmt"
	"math"

	"chat-game-bot/internal/game"
	"chat-game-bot/internal/game/geom"
)

// MaxPlayers is the table size.
const MaxPlayers = 2

// Player is one side of the table.
type Player struct {
	ID   int64
	Name string
	Set  BallType
}

func (p *Player) PlayerID() int64     { return p.ID }
func (p *Player) DisplayName() string { return p.Name }

// Foul reasons.
const (
	FoulScratch   = "cue ball pocketed"
	FoulWrongBall = "wrong ball hit first"
)

// ShotReport is the rule-level outcome of a shot.
type ShotReport struct {
	Shooter  *Player
	Degrees  float64
	Power    float64
	Result   ShotResult
	Assigned bool
	Foul     string
	KeepTurn bool
	Winner   *Player
	Next     *Player
}

// Fouled reports whether the shot was a foul.
func (r *ShotReport) Fouled() bool { return r.Foul != "" }

// Game is one pool session.
type Game struct {
	*game.Lobby[*Player]
	table *Table
	shots int
}

var _ game.Session = (*Game)(nil)

// New opens a table with the host seated as the first player.
func New(scopeID, hostID int64, hostName string) *Game {
	g := &Game{
		Lobby: game.NewLobby[*Player](scopeID, hostID, game.Rules{
			Capacity:   MaxPlayers,
			MinPlayers: MaxPlayers,
		}),
		table: NewTable(),
	}
	_ = g.Join(hostID, hostName)
	return g
}

func (g *Game) Kind() game.Kind { return game.KindPool }

func (g *Game) Close() {}

// Table returns the live table.
func (g *Game) Table() *Table { return g.table }

// Shots returns how many shots have been taken.
func (g *Game) Shots() int { return g.shots }

// Join seats a player.
func (g *Game) Join(id int64, name string) error {
	return g.Lobby.Join(&Player{ID: id, Name: name})
}

// Begin racks the balls and gives the break to the first seat.
func (g *Game) Begin(ctx context.Context, requester int64) error {
	if err := g.CheckBegin(requester); err != nil {
		return err
	}
	g.table = NewTable()
	g.shots = 0
	for _, p := range g.Players() {
		p.Set = TypeNone
	}
	return g.Lobby.Begin(ctx)
}

// Opponent returns the other player.
func (g *Game) Opponent(p *Player) *Player {
	for _, o := range g.Players() {
		if o.ID != p.ID {
			return o
		}
	}
	return nil
}

// Shoot plays actor's shot and applies the rules.
func (g *Game) Shoot(ctx context.Context, actor int64, degrees, power float64) (*ShotReport, error) {
	if !g.InPlay() {
		return nil, game.Reject(game.ErrWrongPhase, "The game hasn't begun yet.")
	}
	shooter, _ := g.Current()
	if shooter.ID != actor {
		return nil, game.Reject(game.ErrNotYourTurn, "It's %s's shot.", shooter.Name)
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, game.Reject(game.ErrInvalidDirection, "Direction must be an angle between 0 and 360.")
	}
	if math.IsNaN(power) || math.IsInf(power, 0) {
		return nil, game.Reject(game.ErrInvalidDirection, "Power must be between %.0f and %.0f.", MinPower, MaxPower)
	}

	if g.table.Balls[CueBall].Pocketed {
		g.table.RespotCue()
	}

	rep := &ShotReport{
		Shooter: shooter,
		Degrees: geom.NormalizeDegrees(degrees),
		Power:   geom.Clamp(power, MinPower, MaxPower),
	}
	heldSet := shooter.Set
	rep.Result = Simulate(g.table, rep.Degrees, rep.Power)
	res := rep.Result
	g.shots++
	g.Touch()

	if !res.Scratch {
		rep.Assigned = g.assignSets(shooter, res.Pocketed)
	}

	switch {
	case res.Scratch:
		rep.Foul = FoulScratch
	case heldSet != TypeNone && res.FirstHit != TypeNone &&
		res.FirstHit != heldSet && res.FirstHit != TypeEight:
		rep.Foul = FoulWrongBall
	}

	if res.Eight {
		rep.Winner = g.eightBallWinner(shooter)
		return rep, g.End(ctx)
	}

	if res.Scratch {
		g.table.RespotCue()
	}

	rep.KeepTurn = !rep.Fouled() && g.pocketedOwn(shooter, res.Pocketed)
	if rep.KeepTurn {
		rep.Next = shooter
		return rep, nil
	}
	next, err := g.AdvanceTurn(nil)
	if err != nil {
		return nil, fmt.Errorf("advance turn: %w", err)
	}
	rep.Next = next
	return rep, nil
}

// assignSets gives the shooter the set of the first object ball pocketed
// while nobody holds a set yet.
func (g *Game) assignSets(shooter *Player, pocketed []int) bool {
	for _, p := range g.Players() {
		if p.Set != TypeNone {
			return false
		}
	}
	for _, id := range pocketed {
		bt := TypeOf(id)
		if bt != TypeSolid && bt != TypeStripe {
			continue
		}
		shooter.Set = bt
		if opp := g.Opponent(shooter); opp != nil {
			opp.Set = bt.Opposite()
		}
		return true
	}
	return false
}

func (g *Game) pocketedOwn(shooter *Player, pocketed []int) bool {
	for _, id := range pocketed {
		bt := TypeOf(id)
		if shooter.Set != TypeNone {
			if bt == shooter.Set {
				return true
			}
		} else if bt == TypeSolid || bt == TypeStripe {
			return true
		}
	}
	return false
}

// eightBallWinner decides the game once the eight drops. A shooter without a
// set always loses; otherwise they win only if their set is already cleared.
func (g *Game) eightBallWinner(shooter *Player) *Player {
	if shooter.Set == TypeNone {
		return g.Opponent(shooter)
	}
	if g.table.Remaining(shooter.Set) == 0 {
		return shooter
	}
	return g.Opponent(shooter)
}

// BallView is a render-ready ball.
type BallView struct {
	ID       int
	Type     BallType
	X, Y     float64
	Pocketed bool
}

// Snapshot is a render-ready copy of the table.
type Snapshot struct {
	Width, Height float64
	Balls         []BallView
	Pockets       []geom.Vec
	Players       []Player
	Turn          int
}

// Snapshot captures the table for rendering.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Width:   TableWidth,
		Height:  TableHeight,
		Pockets: Pockets[:],
		Turn:    g.TurnIndex(),
	}
	for _, b := range g.table.Balls {
		s.Balls = append(s.Balls, BallView{ID: b.ID, Type: b.Type, X: b.Pos.X, Y: b.Pos.Y, Pocketed: b.Pocketed})
	}
	for _, p := range g.Players() {
		s.Players = append(s.Players, *p)
	}
	return s
}
