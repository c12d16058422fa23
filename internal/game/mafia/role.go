package mafia

import (
	"strconv"
	"strings"
)

// Role is a player's secret role.
type Role int

const (
	RoleCitizen Role = iota
	RoleMurderer
	RoleSheriff
	RoleDoctor
)

func (r Role) String() string {
	switch r {
	case RoleMurderer:
		return "murderer"
	case RoleSheriff:
		return "sheriff"
	case RoleDoctor:
		return "doctor"
	default:
		return "citizen"
	}
}

// ActsAtNight reports whether the role has a night action.
func (r Role) ActsAtNight() bool {
	return r == RoleMurderer || r == RoleSheriff || r == RoleDoctor
}

// rolePool returns the role deck for n players: one murderer, one sheriff,
// one doctor and citizens for the rest.
func rolePool(n int) []Role {
	roles := []Role{RoleMurderer, RoleSheriff, RoleDoctor}
	for len(roles) < n {
		roles = append(roles, RoleCitizen)
	}
	return roles[:n]
}

// Action is a night action verb.
type Action string

const (
	ActionKill  Action = "kill"
	ActionSave  Action = "save"
	ActionCheck Action = "check"
)

// ParseAction resolves a night verb.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(s)) {
	case ActionKill:
		return ActionKill, true
	case ActionSave:
		return ActionSave, true
	case ActionCheck:
		return ActionCheck, true
	}
	return "", false
}

// Role returns the role allowed to perform the action.
func (a Action) Role() Role {
	switch a {
	case ActionKill:
		return RoleMurderer
	case ActionSave:
		return RoleDoctor
	case ActionCheck:
		return RoleSheriff
	}
	return RoleCitizen
}

// Winner names the winning side; the zero value means nobody yet.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerTown     Winner = "town"
	WinnerMurderer Winner = "murderer"
)

// CheckWin evaluates the alive players: town wins once no murderer is left,
// the murderers win once they are no longer outnumbered.
func CheckWin(players []*Player) Winner {
	murderers, others := 0, 0
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleMurderer {
			murderers++
		} else {
			others++
		}
	}
	switch {
	case murderers == 0:
		return WinnerTown
	case murderers >= others:
		return WinnerMurderer
	default:
		return WinnerNone
	}
}

// Target references a player by mention, seat number or name fragment.
type Target struct {
	Mention int64
	Text    string
}

// Empty reports whether the reference carries nothing to resolve.
func (t Target) Empty() bool {
	return t.Mention == 0 && strings.TrimSpace(t.Text) == ""
}

// ResolveTarget finds the first player matching t, trying the mention first,
// then a seat number, then a case-insensitive name fragment.
func ResolveTarget(players []*Player, t Target) (*Player, bool) {
	if t.Mention != 0 {
		for _, p := range players {
			if p.ID == t.Mention {
				return p, true
			}
		}
	}

	text := strings.TrimPrefix(strings.TrimSpace(t.Text), "@")
	if text == "" {
		return nil, false
	}
	if seat, err := strconv.Atoi(text); err == nil {
		for _, p := range players {
			if p.Seat == seat {
				return p, true
			}
		}
		return nil, false
	}
	needle := strings.ToLower(text)
	for _, p := range players {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p, true
		}
	}
	return nil, false
}
