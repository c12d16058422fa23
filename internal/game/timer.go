package game

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TurnTimer is the single cancellable turn deadline owned by a session.
// Arming replaces any pending deadline, so at most one is ever live.
type TurnTimer struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
	live   bool
}

// Arm schedules onExpire after d, cancelling whatever was pending.
// onExpire runs on its own goroutine and receives the arm sequence number;
// it must re-check Live(seq) under the session lock before acting.
func (t *TurnTimer) Arm(d time.Duration, onExpire func(seq uint64)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.seq++
	t.cancel = cancel
	t.live = true
	seq := t.seq

	go func() {
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && onExpire != nil {
			onExpire(seq)
		}
	}()
	return seq
}

// Stop cancels the pending deadline, if any.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *TurnTimer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.live = false
}

// Live reports whether seq is the currently armed deadline.
func (t *TurnTimer) Live(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live && t.seq == seq
}

// Armed reports whether any deadline is pending.
func (t *TurnTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}
