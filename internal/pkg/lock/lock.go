// Package lock provides keyed mutual exclusion.
// Every chat scope gets its own mutex so commands for one chat are serialized
// while different chats proceed independently.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned by WithLockTimeout when the key stays held past
// the timeout.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// keyMutex wraps a mutex with the number of goroutines holding or waiting on it.
type keyMutex struct {
	mu   sync.Mutex
	refs int
}

// KeyLock hands out one mutex per int64 key. Entries are dropped once nobody
// holds or waits on them, so idle chats do not accumulate.
type KeyLock struct {
	mu    sync.Mutex
	locks map[int64]*keyMutex
	pool  sync.Pool
}

// NewKeyLock creates an empty KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[int64]*keyMutex),
		pool: sync.Pool{
			New: func() any {
				return &keyMutex{}
			},
		},
	}
}

// acquire returns the mutex for key with its reference count bumped.
func (kl *KeyLock) acquire(key int64) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m, ok := kl.locks[key]
	if !ok {
		m = kl.pool.Get().(*keyMutex)
		m.refs = 0
		kl.locks[key] = m
	}
	m.refs++
	return m
}

// release drops one reference and recycles the entry when unused.
func (kl *KeyLock) release(key int64, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m.refs--
	if m.refs <= 0 {
		delete(kl.locks, key)
		kl.pool.Put(m)
	}
}

// Lock blocks until the mutex for key is held.
func (kl *KeyLock) Lock(key int64) {
	m := kl.acquire(key)
	m.mu.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that is not locked is a no-op.
func (kl *KeyLock) Unlock(key int64) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}
	m.mu.Unlock()
	kl.release(key, m)
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyLock) TryLock(key int64) bool {
	m := kl.acquire(key)
	if m.mu.TryLock() {
		return true
	}
	kl.release(key, m)
	return false
}

// LockContext waits for the lock until ctx is done.
func (kl *KeyLock) LockContext(ctx context.Context, key int64) error {
	m := kl.acquire(key)

	done := make(chan struct{})
	go func() {
		m.mu.Lock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// The waiter still gets the mutex eventually; hand it straight back.
		go func() {
			<-done
			m.mu.Unlock()
			kl.release(key, m)
		}()
		return ctx.Err()
	}
}

// WithLock executes fn while holding the lock for key.
func (kl *KeyLock) WithLock(key int64, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockTimeout executes fn while holding the lock for key, giving up with
// ErrLockTimeout if the lock is not acquired within timeout.
func (kl *KeyLock) WithLockTimeout(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := kl.LockContext(waitCtx, key); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrLockTimeout
	}
	defer kl.Unlock(key)
	return fn()
}

// Len returns the number of keys currently tracked.
func (kl *KeyLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}
