// Package locking provides the per-account exclusive lock that serializes
// units of work on one account while distinct accounts proceed in parallel.
package locking

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
)

// entry is one account's lock with a reference count so idle locks are
// reclaimed.
type entry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex implements port.AccountLocker with an in-process lock per
// account id. Acquisition honours context cancellation so a cancelled unit
// of work never commits while holding the lock.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

// NewKeyedMutex creates an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*entry)}
}

// Acquire blocks until the account's lock is free or the context is done.
// The returned release function is idempotent and must be called on every
// exit path.
func (k *KeyedMutex) Acquire(ctx context.Context, accountID uuid.UUID) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[accountID]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[accountID] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(accountID, e, false)
		return nil, apperr.Wrap(apperr.KindTransient, ctx.Err(), "waiting for account lock").
			WithEntity(accountID.String())
	}

	var once sync.Once
	return func() {
		once.Do(func() { k.release(accountID, e, true) })
	}, nil
}

func (k *KeyedMutex) release(accountID uuid.UUID, e *entry, held bool) {
	if held {
		<-e.ch
	}

	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, accountID)
	}
	k.mu.Unlock()
}
