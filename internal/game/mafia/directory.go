package mafia

import "sync"

// Directory maps a player to the chat of the Mafia game they are in, so
// night actions sent by direct message can be routed.
type Directory struct {
	mu     sync.RWMutex
	scopes map[int64]int64
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{scopes: make(map[int64]int64)}
}

// Link records that player sits in scope. It fails if the player is already
// linked to a different scope.
func (d *Directory) Link(player, scope int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.scopes[player]; ok && cur != scope {
		return false
	}
	d.scopes[player] = scope
	return true
}

// Unlink drops player's entry if it still points at scope.
func (d *Directory) Unlink(player, scope int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.scopes[player]; ok && cur == scope {
		delete(d.scopes, player)
	}
}

// Lookup returns the scope player is linked to.
func (d *Directory) Lookup(player int64) (int64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	scope, ok := d.scopes[player]
	return scope, ok
}
