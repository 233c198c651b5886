package sync

import (
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides mutual exclusion per key while
// limiting the total memory footprint to a fixed number of stripes.
//
// Distinct keys may share a stripe, so holders must never take a second key
// while holding one.
type StripedLock struct {
	locks    []base.Mutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks:    make([]base.Mutex, stripes),
		hashRing: newRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.Mutex {
	return &l.locks[l.hashRing.stripe(key)]
}

// Lock blocks until the lock for key is held, and returns its release.
func (l *StripedLock) Lock(key []byte) func() {
	mu := l.Get(key)
	mu.Lock()
	return mu.Unlock
}

// TryLock acquires the lock for key without blocking. The release is only
// returned, and must only be called, when ok is true.
func (l *StripedLock) TryLock(key []byte) (unlock func(), ok bool) {
	mu := l.Get(key)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
