// Package lock serializes integrity scans per component id. Concurrent
// scans of the same component race the dedup read-then-write, so a scan
// holds the component's lock for its duration.
package lock

import (
	"context"
	"sync"
)

// Unlock releases a held lock.
type Unlock func()

// Locker acquires an exclusive per-key lock, blocking until the lock is
// available or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// LocalLocker is an in-process Locker. Sufficient for a single service
// instance; deployments running several instances against one store should
// use the Redis locker instead.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*entry)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine above still gets the mutex eventually; release it
		// and drop the reference when it does.
		go func() {
			<-acquired
			l.release(key, e)
		}()
		return nil, ctx.Err()
	}

	return func() { l.release(key, e) }, nil
}

func (l *LocalLocker) release(key string, e *entry) {
	e.mu.Unlock()
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
