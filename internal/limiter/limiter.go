// Package limiter bounds the number of external commands running at once.
//
// A single Limiter is created for a batch run and handed to every component
// which spawns processes. Every invocation holds exactly one slot for its
// duration; multi-step sequences acquire a slot per step.
package limiter

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type Limiter struct {
	capacity int
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	peak     atomic.Int64
}

func New(capacity int) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		capacity: capacity,
		sem:      semaphore.NewWeighted(int64(capacity)),
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// func must be called exactly once, it is safe to defer it right away.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	n := l.inFlight.Add(1)
	for {
		p := l.peak.Load()
		if n <= p || l.peak.CompareAndSwap(p, n) {
			break
		}
	}

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		l.inFlight.Add(-1)
		l.sem.Release(1)
	}, nil
}

// Do runs fn while holding one slot.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context)) error {
	release, err := l.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	fn(ctx)
	return nil
}

func (l *Limiter) Capacity() int {
	return l.capacity
}

func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}

// Peak is the highest number of slots held at the same time so far.
func (l *Limiter) Peak() int {
	return int(l.peak.Load())
}
