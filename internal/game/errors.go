package game

import (
	"errors"
	"fmt"
)

// Game errors. Every one of them is a user-facing rejection except
// ErrNoEligiblePlayer, which signals a broken invariant.
var (
	ErrNoActiveGame        = errors.New("no active game")
	ErrAlreadyActive       = errors.New("game already active")
	ErrLobbyClosed         = errors.New("lobby closed")
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrFull                = errors.New("lobby full")
	ErrAlreadyJoined       = errors.New("already joined")
	ErrNotJoined           = errors.New("not in game")
	ErrNotHost             = errors.New("not host")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrNotYourCell         = errors.New("cell owned by another player")
	ErrNotAlive            = errors.New("player not alive")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrInvalidCell         = errors.New("invalid cell")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrWrongPhase          = errors.New("action not allowed in this phase")
	ErrAlreadyActed        = errors.New("already acted")
	ErrWrongRole           = errors.New("role cannot perform action")
	ErrInvalidArgument     = errors.New("invalid command argument")

	// ErrNoEligiblePlayer means a turn advance found nobody to hand the turn
	// to. Win checks run before every advance, so reaching it is a bug.
	ErrNoEligiblePlayer = errors.New("no eligible player")
)

// RejectError pairs an error kind with a message fit to show the player.
type RejectError struct {
	Kind error
	Msg  string
}

func (e *RejectError) Error() string { return e.Msg }

func (e *RejectError) Unwrap() error { return e.Kind }

// Reject builds a RejectError of the given kind with a formatted message.
func Reject(kind error, format string, args ...any) error {
	return &RejectError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
