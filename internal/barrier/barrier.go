// Package barrier implements a reusable cyclic barrier used to coordinate
// per-tile workers with the frame collector: every participant blocks in
// Wait until all of them have arrived, then all are released together and
// the barrier resets for the next round.
package barrier

import "sync"

// Barrier synchronizes exactly Arity goroutines per round. It is built on
// sync.Cond rather than a one-shot primitive (like sync.WaitGroup, which
// cannot be reused across rounds without recreation) because the driver
// needs the same barrier instance to fire once per simulation iteration.
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	arity int
	count int
	gen   uint64

	aborted bool
	err     error
}

// New creates a barrier that releases its waiters once `arity` goroutines
// have called Wait.
func New(arity int) *Barrier {
	b := &Barrier{arity: arity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until Arity goroutines (across all callers) have called Wait
// in the same round, or until the barrier is aborted. It returns the
// abort error, if any.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.aborted {
		return b.err
	}

	gen := b.gen
	b.count++
	if b.count == b.arity {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return nil
	}

	for gen == b.gen && !b.aborted {
		b.cond.Wait()
	}
	if b.aborted {
		return b.err
	}
	return nil
}

// Abort releases every current and future waiter with err. Safe to call
// concurrently and more than once; only the first call has an effect.
func (b *Barrier) Abort(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.aborted {
		return
	}
	b.aborted = true
	b.err = err
	b.cond.Broadcast()
}
