package client

import "sync"

// Guard is a single-slot semaphore. At most one holder exists at a time;
// TryAcquire never blocks.
type Guard struct {
	slot chan struct{}
}

// NewGuard creates an unheld guard
func NewGuard() *Guard {
	return &Guard{slot: make(chan struct{}, 1)}
}

// TryAcquire takes the slot if it is free. The returned release func frees
// it and is safe to call more than once.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	select {
	case g.slot <- struct{}{}:
	default:
		return func() {}, false
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-g.slot })
	}, true
}

// Busy reports whether the slot is currently held
func (g *Guard) Busy() bool {
	return len(g.slot) == 1
}
