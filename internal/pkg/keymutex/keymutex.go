package keymutex

import (
	"context"
	"sync"
)

// KeyMutex hands out one exclusive lock per key. Entries are reference
// counted and dropped once nobody holds or waits for them.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	slot chan struct{}
	refs int
}

func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*entry)}
}

// Lock blocks until the lock for key is free or ctx is done. The returned
// unlock func is safe to call more than once.
func (k *KeyMutex) Lock(ctx context.Context, key string) (unlock func(), err error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			k.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or waited on.
func (k *KeyMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *KeyMutex) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
