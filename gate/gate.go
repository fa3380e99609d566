// Package gate provides a condition variable bound to a lock that is shared
// with other gates, so that several predicates of one monitor can each have
// their own wait set.
//
// Every wait re-evaluates its predicate after waking; a return from Await
// means the predicate held while the lock was held.
package gate

import (
	"context"
	"sync"
)

type Gate struct {
	lock    sync.Locker
	cond    *sync.Cond
	waiters int
}

// Create a new Gate. Waits release lock while suspended.
func New(lock sync.Locker) (g *Gate) {
	g = &Gate{}
	g.lock = lock
	g.cond = sync.NewCond(lock)
	return
}

// Await blocks until ok reports true. The caller must hold the lock.
func (g *Gate) Await(ok func() bool) {
	for !ok() {
		g.park()
	}
}

// AwaitContext is Await bounded by ctx. It returns ctx.Err() if the context
// ends before ok reports true; when both hold, the predicate wins.
// The caller must hold the lock, and still holds it on return.
func (g *Gate) AwaitContext(ctx context.Context, ok func() bool) error {
	if ctx.Done() == nil {
		g.Await(ok)
		return nil
	}
	if ok() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// the waker needs the lock, so it can only run once we are parked
	stop := context.AfterFunc(ctx, func() {
		g.lock.Lock()
		defer g.lock.Unlock()
		g.cond.Broadcast()
	})
	defer stop()

	for !ok() {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.park()
	}
	return nil
}

// Broadcast wakes every waiter so each re-checks its predicate.
// The caller should hold the lock.
func (g *Gate) Broadcast() {
	g.cond.Broadcast()
}

// Waiting returns the number of goroutines parked on g. The caller must hold
// the lock.
func (g *Gate) Waiting() int {
	return g.waiters
}

func (g *Gate) park() {
	g.waiters++
	g.cond.Wait()
	g.waiters--
}
