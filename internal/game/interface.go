// Package game defines the session contract, the shared lobby/turn state
// machine and the per-chat session registry used by every game engine.
package game

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the concrete engine behind a Session.
type Kind string

// Supported game kinds.
const (
	KindChainReaction Kind = "chainreaction"
	KindPool          Kind = "pool"
	KindMafia         Kind = "mafia"
	KindWordChain     Kind = "wordchain"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindChainReaction, KindPool, KindMafia, KindWordChain}

// Title returns a human readable name for the kind.
func (k Kind) Title() string {
	switch k {
	case KindChainReaction:
		return "Chain Reaction"
	case KindPool:
		return "8-Ball Pool"
	case KindMafia:
		return "Mafia"
	case KindWordChain:
		return "Word Chain"
	default:
		return string(k)
	}
}

// ParseKind resolves a user supplied game name, accepting the short command
// aliases as well.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "cr", "chainreaction", "chain":
		return KindChainReaction, true
	case "pool", "8ball":
		return KindPool, true
	case "mafia":
		return KindMafia, true
	case "wcg", "wordchain", "word":
		return KindWordChain, true
	}
	return "", false
}

// Session is implemented by every game engine. A chat holds at most one live
// session per kind; the concrete type is recovered through Kind.
type Session interface {
	// ID uniquely identifies this session; it doubles as the match id when
	// the result is recorded.
	ID() uuid.UUID

	// Kind returns the engine tag.
	Kind() Kind

	// ScopeID returns the chat the session lives in.
	ScopeID() int64

	// Phase returns the current lifecycle phase (see the Phase constants).
	Phase() string

	// StartedAt returns when the session was created.
	StartedAt() time.Time

	// LastActivity returns when the session last changed state.
	LastActivity() time.Time

	// Close releases background resources such as turn timers.
	// It must be idempotent.
	Close()
}
