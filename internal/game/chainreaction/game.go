// Package chainreaction implements the Chain Reaction orb game: players take
// turns dropping orbs, overfull cells explode into their neighbours and
// capture them, and the last player holding orbs wins.
package chainreaction

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"chat-game-bot/internal/game"
)

// Game limits.
const (
	MaxPlayers    = 8
	MinPlayers    = 2
	DefaultWidth  = 6
	DefaultHeight = 8
	MinSide       = 2
	MaxSide       = 10
)

// Palette holds the player colors, assigned by join order.
var Palette = []string{
	"#e74c3c", "#3498db", "#f1c40f", "#9b59b6",
	"#1abc9c", "#e67e22", "#2ecc71", "#95a5a6",
}

// Player is a seat in a Chain Reaction game.
type Player struct {
	ID         int64
	Name       string
	Color      string
	Eliminated bool
}

func (p *Player) PlayerID() int64     { return p.ID }
func (p *Player) DisplayName() string { return p.Name }

// MoveResult describes what a single placement did.
type MoveResult struct {
	Player     *Player
	X, Y       int
	Explosions int
	Truncated  bool
	Eliminated []*Player
	Winner     *Player
	Next       *Player
}

// Game is one Chain Reaction session.
type Game struct {
	*game.Lobby[*Player]
	board *Board
	moves int
}

var _ game.Session = (*Game)(nil)

// New opens an empty lobby in scopeID. The host joins like everyone else.
func New(scopeID, hostID int64, hostName string) *Game {
	g := &Game{
		Lobby: game.NewLobby[*Player](scopeID, hostID, game.Rules{
			Capacity:   MaxPlayers,
			MinPlayers: MinPlayers,
		}),
		board: NewBoard(DefaultWidth, DefaultHeight),
	}
	g.NameHost(hostName)
	return g
}

func (g *Game) Kind() game.Kind { return game.KindChainReaction }

func (g *Game) Close() {}

// Board returns the live board.
func (g *Game) Board() *Board { return g.board }

// Moves returns the number of placements made so far.
func (g *Game) Moves() int { return g.moves }

// Join seats a player and gives them the next palette color.
func (g *Game) Join(id int64, name string) error {
	p := &Player{ID: id, Name: name, Color: Palette[g.Len()%len(Palette)]}
	return g.Lobby.Join(p)
}

// Begin resets the board to width x height and starts play with seat 0.
func (g *Game) Begin(ctx context.Context, requester int64, width, height int) error {
	if err := g.CheckBegin(requester); err != nil {
		return err
	}
	if width < MinSide || width > MaxSide || height < MinSide || height > MaxSide {
		return game.Reject(game.ErrInvalidCell, "Board size must be between %dx%d and %dx%d.",
			MinSide, MinSide, MaxSide, MaxSide)
	}
	g.board = NewBoard(width, height)
	g.moves = 0
	for _, p := range g.Players() {
		p.Eliminated = false
	}
	return g.Lobby.Begin(ctx)
}

// PlaceCell places at a 1-based, row-major cell number.
func (g *Game) PlaceCell(ctx context.Context, actor int64, n int) (*MoveResult, error) {
	total := g.board.width * g.board.height
	if n < 1 || n > total {
		return nil, game.Reject(game.ErrInvalidCell, "Pick a cell between 1 and %d.", total)
	}
	return g.Place(ctx, actor, (n-1)%g.board.width, (n-1)/g.board.width)
}

// Place drops an orb for actor at zero-based (x, y).
func (g *Game) Place(ctx context.Context, actor int64, x, y int) (*MoveResult, error) {
	if !g.InPlay() {
		return nil, game.Reject(game.ErrWrongPhase, "The game hasn't begun yet.")
	}
	current, _ := g.Current()
	if current.ID != actor {
		return nil, game.Reject(game.ErrNotYourTurn, "It's %s's turn.", current.Name)
	}
	if !g.board.InBounds(x, y) {
		return nil, game.Reject(game.ErrInvalidCell, "Coordinates must be within 1-%d and 1-%d.",
			g.board.width, g.board.height)
	}
	if owner := g.board.Cell(x, y).Owner; owner != 0 && owner != actor {
		return nil, game.Reject(game.ErrNotYourCell, "That cell belongs to another player.")
	}

	res := &MoveResult{Player: current, X: x, Y: y}
	res.Explosions, res.Truncated = g.board.Place(x, y, actor)
	if res.Truncated {
		log.Warn().
			Int64("chat_id", g.ScopeID()).
			Int("explosions", res.Explosions).
			Msg("Chain reaction cascade truncated")
	}
	g.moves++
	g.Touch()

	res.Eliminated = g.eliminate()
	if w := g.winner(); w != nil {
		res.Winner = w
		return res, g.End(ctx)
	}

	next, err := g.AdvanceTurn(func(p *Player) bool { return !p.Eliminated })
	if err != nil {
		return nil, fmt.Errorf("advance turn: %w", err)
	}
	res.Next = next
	return res, nil
}

// eliminate marks players left without cells, but only once every seat has
// had the chance to move.
func (g *Game) eliminate() []*Player {
	players := g.Players()
	if g.moves < len(players) {
		return nil
	}
	var out []*Player
	for _, p := range players {
		if !p.Eliminated && g.board.CellsOwned(p.ID) == 0 {
			p.Eliminated = true
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) winner() *Player {
	var last *Player
	active := 0
	for _, p := range g.Players() {
		if !p.Eliminated {
			active++
			last = p
		}
	}
	if active == 1 && g.board.CellsOwned(last.ID) > 0 {
		return last
	}
	return nil
}

// Active returns the players still in the game.
func (g *Game) Active() []*Player {
	var out []*Player
	for _, p := range g.Players() {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot is a render-ready copy of the board.
type Snapshot struct {
	Width, Height int
	Counts        [][]int
	Colors        [][]string
	Capacity      [][]int
}

// Snapshot captures the current board with owner colors resolved.
func (g *Game) Snapshot() *Snapshot {
	colors := make(map[int64]string, g.Len())
	for _, p := range g.Players() {
		colors[p.ID] = p.Color
	}
	rows := g.board.Rows()
	s := &Snapshot{
		Width:    g.board.width,
		Height:   g.board.height,
		Counts:   make([][]int, len(rows)),
		Colors:   make([][]string, len(rows)),
		Capacity: make([][]int, len(rows)),
	}
	for y, row := range rows {
		s.Counts[y] = make([]int, len(row))
		s.Colors[y] = make([]string, len(row))
		s.Capacity[y] = make([]int, len(row))
		for x, c := range row {
			s.Counts[y][x] = c.Count
			s.Colors[y][x] = colors[c.Owner]
			s.Capacity[y][x] = g.board.Capacity(x, y)
		}
	}
	return s
}
