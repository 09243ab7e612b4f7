package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pinchtab/todobench/internal/config"
)

var errTargetLocked = errors.New("target locked")

// TargetLock is held by a run for the page it mutates.
type TargetLock struct {
	Owner     string    `json:"owner"`
	LockedAt  time.Time `json:"lockedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// lockManager gives one run at a time exclusive use of a target URL. Locks
// expire so a stuck run cannot hold a target forever.
type lockManager struct {
	locks map[string]*TargetLock // url → lock
	mu    sync.Mutex
}

const (
	defaultLockTimeout = 30 * time.Second
	maxLockTimeout     = config.MaxTimeout
)

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[string]*TargetLock)}
}

// Lock acquires target for owner. Returns errTargetLocked if a different
// owner holds an unexpired lock.
func (lm *lockManager) Lock(target, owner string, timeout time.Duration) error {
	if owner == "" {
		return fmt.Errorf("owner required")
	}
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	if timeout > maxLockTimeout {
		timeout = maxLockTimeout
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	now := time.Now()
	if existing, ok := lm.locks[target]; ok {
		if now.Before(existing.ExpiresAt) && existing.Owner != owner {
			return fmt.Errorf("%w: %s held by %q until %s", errTargetLocked, target, existing.Owner, existing.ExpiresAt.Format(time.RFC3339))
		}
	}

	lm.locks[target] = &TargetLock{
		Owner:     owner,
		LockedAt:  now,
		ExpiresAt: now.Add(timeout),
	}
	return nil
}

// Unlock releases a lock. Only the owner (or anyone after expiry) can unlock.
func (lm *lockManager) Unlock(target, owner string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	existing, ok := lm.locks[target]
	if !ok {
		return nil // not locked, idempotent
	}

	if existing.Owner != owner && time.Now().Before(existing.ExpiresAt) {
		return fmt.Errorf("%w: %s held by %q, cannot unlock", errTargetLocked, target, existing.Owner)
	}

	delete(lm.locks, target)
	return nil
}

// Get returns the lock on target, or nil if unlocked/expired.
func (lm *lockManager) Get(target string) *TargetLock {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lock, ok := lm.locks[target]
	if !ok {
		return nil
	}
	if time.Now().After(lock.ExpiresAt) {
		delete(lm.locks, target)
		return nil
	}
	return lock
}
