package keymutex

import (
	"sync"
)

// KeyMutex serializes critical sections per key. The aggregate recompute is a
// read-then-write without store-side isolation, so two overlapping moderation
// actions on the same product could both read the approved set before either
// writes. Locking per productId closes that window inside a single process.
type KeyMutex struct {
	locks map[string]*sync.Mutex
	mutex sync.RWMutex
}

func New() *KeyMutex {
	return &KeyMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

func (km *KeyMutex) get(key string) *sync.Mutex {
	km.mutex.RLock()
	lock, exists := km.locks[key]
	km.mutex.RUnlock()

	if exists {
		return lock
	}

	km.mutex.Lock()
	// Double-check pattern
	if lock, exists = km.locks[key]; !exists {
		lock = &sync.Mutex{}
		km.locks[key] = lock
	}
	km.mutex.Unlock()

	return lock
}

// Lock acquires the mutex for key, creating it on first use
func (km *KeyMutex) Lock(key string) {
	km.get(key).Lock()
}

// Unlock releases the mutex for key
func (km *KeyMutex) Unlock(key string) {
	km.get(key).Unlock()
}
