package ratelimiter

import "time"

// SetClock replaces the store clock for deterministic refill tests.
func SetClock(ms *MemoryStore, now func() time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.now = now
}

// RemoveStale runs one cleanup pass synchronously.
func RemoveStale(ms *MemoryStore) { ms.removeStale() }
