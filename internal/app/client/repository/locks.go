package repository

import "sync"

// keyedLocks serializes mutations per entity id. Two concurrent updates
// to the same record or group take turns; mutations on different ids
// proceed in parallel. Locks are held across the network call and the
// cache apply, so a slow response cannot interleave with a later
// mutation on the same entity.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*entityLock)}
}

// acquire locks key and returns the matching release func. Idle locks
// are removed from the map on release.
func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &entityLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
