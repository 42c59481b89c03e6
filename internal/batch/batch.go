// Package batch runs the row processor over every line of the input and
// aggregates the outcomes.
//
// One task is spawned per line without any throttling; the number of
// management commands running at once is bounded by the limiter shared by
// all tasks. A task that panics is recorded as a failure (and a bad line
// entry) and never aborts the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/CZERTAINLY/Rotator/internal/parallel"
)

// Processor turns one input line into its outcome.
type Processor interface {
	Process(ctx context.Context, line model.Line) model.RowOutcome
}

// Sink receives outcomes as they complete.
type Sink interface {
	Append(key, message string) error
}

// Console mirrors every outcome to the operator.
type Console interface {
	Success(address, message string)
	Failure(address, message string)
	BadLine(line int, message string)
}

// Observer is notified about every outcome, typically metrics.
type Observer interface {
	ObserveRow(o model.RowOutcome)
}

type Runner struct {
	proc     Processor
	success  Sink
	failure  Sink
	badlines Sink
	console  Console
	observer Observer
}

func New(proc Processor, success, failure, badlines Sink, console Console) *Runner {
	return &Runner{
		proc:     proc,
		success:  success,
		failure:  failure,
		badlines: badlines,
		console:  console,
	}
}

func (r *Runner) WithObserver(o Observer) *Runner {
	r.observer = o
	return r
}

// Summary partitions the outcomes of a run. Lines are ordered by input line.
type Summary struct {
	Successes []model.RowOutcome
	Failures  []model.RowOutcome
	BadLines  []model.RowOutcome
}

func (s Summary) Total() int {
	return len(s.Successes) + len(s.Failures) + len(s.BadLines)
}

// Run processes all lines concurrently and waits for every one of them.
func (r *Runner) Run(ctx context.Context, lines []model.Line) Summary {
	var sum Summary
	m := parallel.NewMap(ctx, 0, func(ctx context.Context, line model.Line) (model.RowOutcome, error) {
		return r.proc.Process(ctx, line), nil
	})
	for line, res := range m.Iter(slices.Values(lines)) {
		out := res.Value
		if res.Err != nil {
			out = r.abnormal(ctx, line, res.Err)
		}
		r.record(ctx, &sum, out)
	}

	for _, s := range [][]model.RowOutcome{sum.Successes, sum.Failures, sum.BadLines} {
		slices.SortFunc(s, func(a, b model.RowOutcome) int { return a.Line - b.Line })
	}
	slog.InfoContext(ctx, "batch finished",
		"lines", len(lines),
		"successes", len(sum.Successes),
		"failures", len(sum.Failures),
		"badlines", len(sum.BadLines),
	)
	return sum
}

// abnormal converts a task which ended without an outcome into a failure
// and writes the raw error into the bad line log.
func (r *Runner) abnormal(ctx context.Context, line model.Line, err error) model.RowOutcome {
	var perr *parallel.PanicError
	if errors.As(err, &perr) {
		slog.ErrorContext(ctx, "row task panicked", "line", line.Num, "panic", fmt.Sprint(perr.Value), "stack", string(perr.Stack))
	} else {
		slog.ErrorContext(ctx, "row task failed", "line", line.Num, "error", err)
	}

	address := fmt.Sprintf("Line %d", line.Num)
	if len(line.Fields) > 0 && line.Fields[0] != "" {
		address = line.Fields[0]
	}
	r.appendLog(ctx, r.badlines, fmt.Sprintf("Line %d", line.Num), "Exception processing row: "+err.Error())
	return model.RowOutcome{
		Line:    line.Num,
		Address: address,
		Kind:    model.UnhandledError,
		Message: "exception occurred",
		Detail:  err.Error(),
	}
}

func (r *Runner) record(ctx context.Context, sum *Summary, out model.RowOutcome) {
	if r.observer != nil {
		r.observer.ObserveRow(out)
	}
	switch {
	case out.IsBadLine():
		sum.BadLines = append(sum.BadLines, out)
		r.console.BadLine(out.Line, out.Detail)
		r.appendLog(ctx, r.badlines, fmt.Sprintf("Line %d", out.Line), out.Detail)
	case out.Succeeded:
		sum.Successes = append(sum.Successes, out)
		r.console.Success(out.Address, out.Message)
		r.appendLog(ctx, r.success, out.Address, out.Message)
	default:
		sum.Failures = append(sum.Failures, out)
		r.console.Failure(out.Address, out.Message)
		r.appendLog(ctx, r.failure, out.Address, out.Message)
	}
}

func (r *Runner) appendLog(ctx context.Context, s Sink, key, message string) {
	if err := s.Append(key, message); err != nil {
		slog.ErrorContext(ctx, "can't append to log", "key", key, "error", err)
	}
}
