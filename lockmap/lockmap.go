// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import "sync"

type holderLock struct {
	holders int
	mu      sync.RWMutex
}

// Lockmap hands out a read/write lock per key. Entries are dropped once the
// last holder releases them, so the map only grows with contention.
type Lockmap struct {
	l sync.Mutex
	m map[string]*holderLock
}

func New(initSize int) *Lockmap {
	return &Lockmap{
		m: make(map[string]*holderLock, initSize),
	}
}

func (l *Lockmap) Lock(key string) {
	l.acquire(key).mu.Lock()
}

func (l *Lockmap) Unlock(key string) {
	l.release(key).mu.Unlock()
}

func (l *Lockmap) RLock(key string) {
	l.acquire(key).mu.RLock()
}

func (l *Lockmap) RUnlock(key string) {
	l.release(key).mu.RUnlock()
}

// acquire registers the caller as a holder of [key] before it blocks on the
// lock so that release never drops an entry someone is waiting on.
func (l *Lockmap) acquire(key string) *holderLock {
	l.l.Lock()
	defer l.l.Unlock()

	hl, ok := l.m[key]
	if !ok {
		hl = &holderLock{}
		l.m[key] = hl
	}
	hl.holders++
	return hl
}

func (l *Lockmap) release(key string) *holderLock {
	l.l.Lock()
	defer l.l.Unlock()

	hl, ok := l.m[key]
	if !ok {
		panic("lockmap: unlock of unlocked key")
	}
	hl.holders--
	if hl.holders == 0 {
		delete(l.m, key)
	}
	return hl
}

// Locks returns the number of keys currently held or waited on.
func (l *Lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}
