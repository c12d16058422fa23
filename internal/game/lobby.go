package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog/log"
)

// Lifecycle phases. Mafia replaces PhaseActive with the night/day cycle.
const (
	PhaseLobby  = "lobby"
	PhaseActive = "active"
	PhaseNight  = "night"
	PhaseDay    = "day"
	PhaseEnded  = "ended"
)

// Phase events.
const (
	EventBegin = "begin"
	EventDawn  = "dawn"
	EventDusk  = "dusk"
	EventEnd   = "end"
)

// Participant is the minimal view of a seated player the lobby needs.
type Participant interface {
	PlayerID() int64
	DisplayName() string
}

// Rules configure a lobby for a particular game.
type Rules struct {
	// Capacity caps the number of players; zero means unbounded.
	Capacity int
	// MinPlayers is the minimum required to begin.
	MinPlayers int
	// DayNight swaps the single active phase for a night/day cycle.
	DayNight bool
}

// Lobby is the lobby/turn state machine shared by all engines.
// It is not safe for concurrent use; callers serialize through Registry.WithLock.
type Lobby[P Participant] struct {
	id        uuid.UUID
	scopeID   int64
	host      int64
	hostName  string
	hostNamed int64
	rules     Rules
	players   []P
	turn      int
	machine   *fsm.FSM
	startedAt time.Time
	touchedAt time.Time
	now       func() time.Time
}

// NewLobby opens a lobby in scopeID controlled by host.
func NewLobby[P Participant](scopeID, host int64, rules Rules) *Lobby[P] {
	l := &Lobby[P]{
		id:      uuid.New(),
		scopeID: scopeID,
		host:    host,
		rules:   rules,
		now:     time.Now,
	}
	l.machine = fsm.NewFSM(PhaseLobby, phaseEvents(rules.DayNight), fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			log.Debug().
				Int64("chat_id", l.scopeID).
				Str("session", l.id.String()).
				Str("from", e.Src).
				Str("to", e.Dst).
				Msg("Phase transition")
		},
	})
	l.startedAt = l.now()
	l.touchedAt = l.startedAt
	return l
}

func phaseEvents(dayNight bool) fsm.Events {
	if dayNight {
		return fsm.Events{
			{Name: EventBegin, Src: []string{PhaseLobby}, Dst: PhaseNight},
			{Name: EventDawn, Src: []string{PhaseNight}, Dst: PhaseDay},
			{Name: EventDusk, Src: []string{PhaseDay}, Dst: PhaseNight},
			{Name: EventEnd, Src: []string{PhaseLobby, PhaseNight, PhaseDay}, Dst: PhaseEnded},
		}
	}
	return fsm.Events{
		{Name: EventBegin, Src: []string{PhaseLobby}, Dst: PhaseActive},
		{Name: EventEnd, Src: []string{PhaseLobby, PhaseActive}, Dst: PhaseEnded},
	}
}

// ID returns the session id.
func (l *Lobby[P]) ID() uuid.UUID { return l.id }

// ScopeID returns the owning chat.
func (l *Lobby[P]) ScopeID() int64 { return l.scopeID }

// Host returns the controlling player's id.
func (l *Lobby[P]) Host() int64 { return l.host }

// HostName returns the host's display name, or "" when nobody hosts. A host
// who has not taken a seat is known by the name given to NameHost.
func (l *Lobby[P]) HostName() string {
	if p, ok := l.Player(l.host); ok {
		return p.DisplayName()
	}
	if l.host != 0 && l.host == l.hostNamed {
		return l.hostName
	}
	return ""
}

// NameHost records the current host's display name for when they are not
// seated.
func (l *Lobby[P]) NameHost(name string) {
	l.hostName = name
	l.hostNamed = l.host
}

// IsHost reports whether id controls the lobby.
func (l *Lobby[P]) IsHost(id int64) bool { return l.host == id }

// Phase returns the current phase.
func (l *Lobby[P]) Phase() string { return l.machine.Current() }

// InLobby reports whether players may still join.
func (l *Lobby[P]) InLobby() bool { return l.machine.Is(PhaseLobby) }

// InPlay reports whether the game has begun and not yet ended.
func (l *Lobby[P]) InPlay() bool {
	p := l.machine.Current()
	return p != PhaseLobby && p != PhaseEnded
}

// Ended reports whether the session reached its terminal phase.
func (l *Lobby[P]) Ended() bool { return l.machine.Is(PhaseEnded) }

// StartedAt returns when the lobby was opened.
func (l *Lobby[P]) StartedAt() time.Time { return l.startedAt }

// LastActivity returns the time of the last state change.
func (l *Lobby[P]) LastActivity() time.Time { return l.touchedAt }

// Touch records activity.
func (l *Lobby[P]) Touch() { l.touchedAt = l.now() }

// SetClock replaces the time source.
func (l *Lobby[P]) SetClock(now func() time.Time) {
	l.now = now
	l.startedAt = now()
	l.touchedAt = l.startedAt
}

// RaiseMinPlayers lifts the number of players needed to begin. It never
// lowers the engine's own minimum.
func (l *Lobby[P]) RaiseMinPlayers(n int) {
	if n > l.rules.MinPlayers {
		l.rules.MinPlayers = n
	}
}

// Players returns a copy of the seated players in seat order.
func (l *Lobby[P]) Players() []P {
	out := make([]P, len(l.players))
	copy(out, l.players)
	return out
}

// Len returns the number of seated players.
func (l *Lobby[P]) Len() int { return len(l.players) }

// At returns the player in seat i.
func (l *Lobby[P]) At(i int) P { return l.players[i] }

// Index returns the seat index of id, or -1.
func (l *Lobby[P]) Index(id int64) int {
	for i, p := range l.players {
		if p.PlayerID() == id {
			return i
		}
	}
	return -1
}

// Player looks up a seated player by id.
func (l *Lobby[P]) Player(id int64) (P, bool) {
	if i := l.Index(id); i >= 0 {
		return l.players[i], true
	}
	var zero P
	return zero, false
}

// Join seats p at the end of the table.
func (l *Lobby[P]) Join(p P) error {
	if !l.InLobby() {
		return Reject(ErrLobbyClosed, "The lobby is closed, the game has already begun.")
	}
	if l.rules.Capacity > 0 && len(l.players) >= l.rules.Capacity {
		return Reject(ErrFull, "The lobby is full (%d/%d).", len(l.players), l.rules.Capacity)
	}
	if l.Index(p.PlayerID()) >= 0 {
		return Reject(ErrAlreadyJoined, "%s is already in the lobby.", p.DisplayName())
	}
	l.players = append(l.players, p)
	l.Touch()
	return nil
}

// Leave removes id from the lobby. When the host leaves, the first remaining
// player becomes host and hostChanged is true. An emptied lobby is left
// host-less for the caller to delete.
func (l *Lobby[P]) Leave(id int64) (hostChanged bool, err error) {
	if !l.InLobby() {
		return false, Reject(ErrGameAlreadyStarted, "The game has already started, you can't leave now.")
	}
	i := l.Index(id)
	if i < 0 {
		return false, Reject(ErrNotJoined, "You are not in this lobby.")
	}
	l.players = append(l.players[:i], l.players[i+1:]...)
	l.Touch()

	if l.host != id {
		return false, nil
	}
	if len(l.players) == 0 {
		l.host = 0
		return false, nil
	}
	l.host = l.players[0].PlayerID()
	return true, nil
}

// CheckBegin validates that requester may start the game now.
func (l *Lobby[P]) CheckBegin(requester int64) error {
	if !l.InLobby() {
		return Reject(ErrGameAlreadyStarted, "The game has already begun.")
	}
	if !l.IsHost(requester) {
		return Reject(ErrNotHost, "Only the host can begin the game.")
	}
	if len(l.players) < l.rules.MinPlayers {
		return Reject(ErrInsufficientPlayers, "At least %d players are needed to begin (currently %d).",
			l.rules.MinPlayers, len(l.players))
	}
	return nil
}

// Fire runs a phase event.
func (l *Lobby[P]) Fire(ctx context.Context, event string) error {
	if err := l.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s from %s: %v", ErrWrongPhase, event, l.Phase(), err)
	}
	l.Touch()
	return nil
}

// Begin moves the lobby into play and hands the first turn to seat 0.
func (l *Lobby[P]) Begin(ctx context.Context) error {
	if err := l.Fire(ctx, EventBegin); err != nil {
		return err
	}
	l.turn = 0
	return nil
}

// End moves the session to its terminal phase. Ending twice is a no-op.
func (l *Lobby[P]) End(ctx context.Context) error {
	if l.Ended() {
		return nil
	}
	return l.Fire(ctx, EventEnd)
}

// TurnIndex returns the seat whose turn it is.
func (l *Lobby[P]) TurnIndex() int { return l.turn }

// SetTurn hands the turn to seat i.
func (l *Lobby[P]) SetTurn(i int) { l.turn = i }

// Current returns the player whose turn it is.
func (l *Lobby[P]) Current() (P, bool) {
	if !l.InPlay() || l.turn < 0 || l.turn >= len(l.players) {
		var zero P
		return zero, false
	}
	return l.players[l.turn], true
}

// AdvanceTurn moves the turn forward to the next player accepted by eligible,
// wrapping around at most once. Callers must rule out the no-eligible-player
// case with a win check first; hitting it returns ErrNoEligiblePlayer.
func (l *Lobby[P]) AdvanceTurn(eligible func(P) bool) (P, error) {
	n := len(l.players)
	for step := 1; step <= n; step++ {
		i := (l.turn + step) % n
		if eligible == nil || eligible(l.players[i]) {
			l.turn = i
			l.Touch()
			return l.players[i], nil
		}
	}
	var zero P
	return zero, fmt.Errorf("%w: scope %d", ErrNoEligiblePlayer, l.scopeID)
}

// ReassignHost moves the host role to the first eligible player in seat order
// when the current host is absent or no longer eligible.
func (l *Lobby[P]) ReassignHost(eligible func(P) bool) (P, bool) {
	var zero P
	if p, ok := l.Player(l.host); ok && (eligible == nil || eligible(p)) {
		return zero, false
	}
	for _, p := range l.players {
		if eligible == nil || eligible(p) {
			l.host = p.PlayerID()
			return p, true
		}
	}
	return zero, false
}

// Reseat replaces the seating order. Only valid before the game begins.
func (l *Lobby[P]) Reseat(order []P) {
	l.players = order
	l.turn = 0
}
