package parallel

import (
	"context"
	"fmt"
	"iter"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// PanicError is returned for an element whose mapFunc panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

type result[E, D any] struct {
	e   E
	d   D
	err error
}

// Map is a parallel mapping function, which runs mapFunc for every element of
// the input and yields the results in completion order. Each element is mapped
// exactly once and every result is yielded, including elements whose mapFunc
// panicked (reported as *PanicError). A limit <= 0 means no limit.
//
//	for in, res := range parallel.NewMap(ctx, 0, f).Iter(input) {}
type Map[E, D any] struct {
	parentCtx    context.Context
	cancelParent context.CancelFunc
	g            *errgroup.Group
	mapped       chan result[E, D]
	mapFunc      func(context.Context, E) (D, error)
}

func NewMap[E, D any](parentCtx context.Context, limit int, mapFunc func(context.Context, E) (D, error)) *Map[E, D] {
	parentCtx, cancelParent := context.WithCancel(parentCtx)
	g := &errgroup.Group{}
	buf := limit
	if limit <= 0 {
		limit = -1
		buf = 16
	}
	g.SetLimit(limit)

	return &Map[E, D]{
		parentCtx:    parentCtx,
		cancelParent: cancelParent,
		g:            g,
		mapped:       make(chan result[E, D], buf),
		mapFunc:      mapFunc,
	}
}

func (s *Map[E, D]) call(entry E) (d D, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return s.mapFunc(s.parentCtx, entry)
}

func (s *Map[E, D]) goWorkers(seq iter.Seq[E]) {
	for entry := range seq {
		s.g.Go(func() error {
			d, err := s.call(entry)
			s.mapped <- result[E, D]{e: entry, d: d, err: err}
			return nil
		})
	}
}

// Iter starts the workers and yields every input with its result. Breaking
// out of the loop cancels the context passed to mapFunc and waits for the
// workers already started.
func (s *Map[E, D]) Iter(seq iter.Seq[E]) iter.Seq2[E, Result[D]] {
	return func(yield func(E, Result[D]) bool) {
		defer s.cancelParent()

		go func() {
			s.goWorkers(seq)
			_ = s.g.Wait()
			close(s.mapped)
		}()

		stopped := false
		for r := range s.mapped {
			if stopped {
				continue
			}
			if !yield(r.e, Result[D]{Value: r.d, Err: r.err}) {
				stopped = true
				s.cancelParent()
			}
		}
	}
}

// Result pairs a mapped value with the error of its mapFunc.
type Result[D any] struct {
	Value D
	Err   error
}
