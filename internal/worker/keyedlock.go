package worker

import "sync"

// KeyedLock serializes work per key while leaving distinct keys fully
// concurrent. The upstream sync cannot be trusted to enqueue at most one job
// per source at a time, so workers take the source's lock before processing;
// overlapping jobs for one source run one after the other.
//
// Entries are reference-counted and removed when the last holder releases,
// so the map never grows with the number of sources ever seen.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the lock for key is held by the caller.
func (k *KeyedLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the lock for key. Must pair with a prior Lock(key).
func (k *KeyedLock) Unlock(key string) {
	k.mu.Lock()
	e := k.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
