// Package mafia implements the social deduction game: a hidden murderer
// kills at night, the doctor protects, the sheriff investigates and the town
// votes someone out each day.
package mafia

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"chat-game-bot/internal/game"
)

// MinPlayers is the smallest table that can begin.
const MinPlayers = 4

// Player is a seat at the Mafia table.
type Player struct {
	ID    int64
	Name  string
	Seat  int
	Role  Role
	Alive bool
}

func (p *Player) PlayerID() int64     { return p.ID }
func (p *Player) DisplayName() string { return p.Name }

func alive(p *Player) bool { return p.Alive }

// ActionReport is the outcome of a night action.
type ActionReport struct {
	Action     Action
	Actor      *Player
	Target     *Player
	IsMurderer bool
	// Resolution is set when this action completed the night.
	Resolution *Resolution
}

// VoteCount is one line of the day tally.
type VoteCount struct {
	Target *Player
	Votes  int
}

// Resolution describes what happened when a night or day was resolved.
type Resolution struct {
	// Phase is the phase that was resolved.
	Phase      string
	Victim     *Player
	Saved      bool
	Tally      []VoteCount
	Eliminated *Player
	Tie        bool
	NoVotes    bool
	NewHost    *Player
	Winner     Winner
}

// Game is one Mafia session.
type Game struct {
	*game.Lobby[*Player]
	dir    *Directory
	rng    *rand.Rand
	acted  map[int64]bool
	kill   int64
	save   int64
	votes  map[int64]int64
	round  int
	winner Winner
}

var _ game.Session = (*Game)(nil)

// New opens a Mafia lobby with the host seated. The host must not already be
// in a game elsewhere.
func New(scopeID, hostID int64, hostName string, dir *Directory, rng *rand.Rand) (*Game, error) {
	g := &Game{
		Lobby: game.NewLobby[*Player](scopeID, hostID, game.Rules{
			MinPlayers: MinPlayers,
			DayNight:   true,
		}),
		dir:   dir,
		rng:   rng,
		acted: make(map[int64]bool),
		votes: make(map[int64]int64),
	}
	if err := g.Join(hostID, hostName); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Kind() game.Kind { return game.KindMafia }

// Close unlinks every player from the directory.
func (g *Game) Close() {
	for _, p := range g.Players() {
		g.dir.Unlink(p.ID, g.ScopeID())
	}
}

// Round returns the number of completed days.
func (g *Game) Round() int { return g.round }

// Winner returns the winning side once the game is over.
func (g *Game) Winner() Winner { return g.winner }

// Join seats a player with the next seat number.
func (g *Game) Join(id int64, name string) error {
	scope, seated := g.dir.Lookup(id)
	seated = seated && scope == g.ScopeID()
	if !g.dir.Link(id, g.ScopeID()) {
		return game.Reject(game.ErrAlreadyJoined, "%s is already playing Mafia in another chat.", name)
	}
	if err := g.Lobby.Join(&Player{ID: id, Name: name, Seat: g.Len() + 1, Alive: true}); err != nil {
		if !seated {
			g.dir.Unlink(id, g.ScopeID())
		}
		return err
	}
	return nil
}

// Leave removes a player from the lobby and renumbers the seats.
func (g *Game) Leave(id int64) (bool, error) {
	changed, err := g.Lobby.Leave(id)
	if err != nil {
		return false, err
	}
	g.dir.Unlink(id, g.ScopeID())
	for i, p := range g.Players() {
		p.Seat = i + 1
	}
	return changed, nil
}

// Begin shuffles the seating, deals roles and opens the first night. The
// returned players are in their new seat order, ready for role messages.
func (g *Game) Begin(ctx context.Context, requester int64) ([]*Player, error) {
	if err := g.CheckBegin(requester); err != nil {
		return nil, err
	}

	players := g.Players()
	g.rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	roles := rolePool(len(players))
	g.rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	for i, p := range players {
		p.Seat = i + 1
		p.Role = roles[i]
		p.Alive = true
	}
	g.Reseat(players)
	g.resetNight()
	g.votes = make(map[int64]int64)
	g.round = 0

	if err := g.Lobby.Begin(ctx); err != nil {
		return nil, err
	}
	return players, nil
}

func (g *Game) resetNight() {
	g.acted = make(map[int64]bool)
	g.kill = 0
	g.save = 0
}

// Alive returns the living players in seat order.
func (g *Game) Alive() []*Player {
	var out []*Player
	for _, p := range g.Players() {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Murderers returns every player holding the murderer role.
func (g *Game) Murderers() []*Player {
	var out []*Player
	for _, p := range g.Players() {
		if p.Role == RoleMurderer {
			out = append(out, p)
		}
	}
	return out
}

// Pending returns the living night-role players who have not acted yet.
func (g *Game) Pending() []*Player {
	var out []*Player
	for _, p := range g.Players() {
		if p.Alive && p.Role.ActsAtNight() && !g.acted[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) resolveTarget(t Target) (*Player, error) {
	p, ok := ResolveTarget(g.Players(), t)
	if !ok {
		return nil, game.Reject(game.ErrInvalidTarget, "No player matches %q. Use a seat number, a mention or part of a name.", t.Text)
	}
	if !p.Alive {
		return nil, game.Reject(game.ErrInvalidTarget, "%s is already dead.", p.Name)
	}
	return p, nil
}

// NightAction records a kill, save or check sent by actor. The night
// resolves on its own once every living night role has acted.
func (g *Game) NightAction(ctx context.Context, actor int64, action Action, t Target) (*ActionReport, error) {
	if g.Phase() != game.PhaseNight {
		return nil, game.Reject(game.ErrWrongPhase, "Night actions are only possible at night.")
	}
	p, ok := g.Player(actor)
	if !ok {
		return nil, game.Reject(game.ErrNotJoined, "You are not in this game.")
	}
	if !p.Alive {
		return nil, game.Reject(game.ErrNotAlive, "Dead players can't act.")
	}
	if g.acted[actor] {
		return nil, game.Reject(game.ErrAlreadyActed, "You have already acted tonight.")
	}
	if p.Role != action.Role() {
		return nil, game.Reject(game.ErrWrongRole, "Only the %s can %s.", action.Role(), action)
	}

	var target *Player
	if action == ActionSave && t.Empty() {
		target = p
	} else {
		var err error
		if target, err = g.resolveTarget(t); err != nil {
			return nil, err
		}
	}
	if action == ActionKill && target.ID == actor {
		return nil, game.Reject(game.ErrInvalidTarget, "You can't kill yourself.")
	}

	rep := &ActionReport{Action: action, Actor: p, Target: target}
	switch action {
	case ActionKill:
		g.kill = target.ID
	case ActionSave:
		g.save = target.ID
	case ActionCheck:
		rep.IsMurderer = target.Role == RoleMurderer
	}
	g.acted[actor] = true
	g.Touch()

	if len(g.Pending()) == 0 {
		res, err := g.resolveNight(ctx)
		if err != nil {
			return nil, err
		}
		rep.Resolution = res
	}
	return rep, nil
}

// Vote records voter's day vote, replacing any earlier one.
func (g *Game) Vote(voter int64, t Target) (*Player, error) {
	if g.Phase() != game.PhaseDay {
		return nil, game.Reject(game.ErrWrongPhase, "Voting is only open during the day.")
	}
	p, ok := g.Player(voter)
	if !ok {
		return nil, game.Reject(game.ErrNotJoined, "You are not in this game.")
	}
	if !p.Alive {
		return nil, game.Reject(game.ErrNotAlive, "Dead players can't vote.")
	}
	target, err := g.resolveTarget(t)
	if err != nil {
		return nil, err
	}
	g.votes[voter] = target.ID
	g.Touch()
	return target, nil
}

// Next lets the host force resolution of the current night or day.
func (g *Game) Next(ctx context.Context, requester int64) (*Resolution, error) {
	if !g.IsHost(requester) {
		return nil, game.Reject(game.ErrNotHost, "Only the host can move the game on.")
	}
	return g.Resolve(ctx)
}

// Resolve ends the current night or day.
func (g *Game) Resolve(ctx context.Context) (*Resolution, error) {
	switch g.Phase() {
	case game.PhaseNight:
		return g.resolveNight(ctx)
	case game.PhaseDay:
		return g.resolveDay(ctx)
	default:
		return nil, game.Reject(game.ErrWrongPhase, "The game hasn't begun yet.")
	}
}

func (g *Game) resolveNight(ctx context.Context) (*Resolution, error) {
	res := &Resolution{Phase: game.PhaseNight}
	if g.kill != 0 {
		victim, _ := g.Player(g.kill)
		switch {
		case g.kill == g.save:
			res.Saved = true
		case victim != nil && victim.Alive:
			victim.Alive = false
			res.Victim = victim
		}
	}
	g.resetNight()

	if done, err := g.afterDeath(ctx, res); done || err != nil {
		return res, err
	}
	g.votes = make(map[int64]int64)
	return res, g.Fire(ctx, game.EventDawn)
}

func (g *Game) resolveDay(ctx context.Context) (*Resolution, error) {
	res := &Resolution{Phase: game.PhaseDay, Tally: g.Tally()}

	switch {
	case len(res.Tally) == 0:
		res.NoVotes = true
	case len(res.Tally) > 1 && res.Tally[0].Votes == res.Tally[1].Votes:
		res.Tie = true
	default:
		res.Eliminated = res.Tally[0].Target
		res.Eliminated.Alive = false
	}

	g.round++
	if res.Eliminated != nil {
		if done, err := g.afterDeath(ctx, res); done || err != nil {
			return res, err
		}
	}
	g.votes = make(map[int64]int64)
	g.resetNight()
	return res, g.Fire(ctx, game.EventDusk)
}

// afterDeath moves the host off dead players and checks for a winner,
// ending the game when there is one.
func (g *Game) afterDeath(ctx context.Context, res *Resolution) (bool, error) {
	if host, ok := g.ReassignHost(alive); ok {
		res.NewHost = host
	}
	if w := CheckWin(g.Players()); w != WinnerNone {
		res.Winner = w
		g.winner = w
		if err := g.End(ctx); err != nil {
			return true, fmt.Errorf("end game: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// Tally counts votes from living voters, most votes first and ties in seat order.
func (g *Game) Tally() []VoteCount {
	counts := make(map[int64]int)
	for voter, target := range g.votes {
		if v, ok := g.Player(voter); ok && v.Alive {
			counts[target]++
		}
	}
	var out []VoteCount
	for _, p := range g.Players() {
		if n := counts[p.ID]; n > 0 {
			out = append(out, VoteCount{Target: p, Votes: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	return out
}
