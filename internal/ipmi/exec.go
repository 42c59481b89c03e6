package ipmi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/limiter"
	"github.com/CZERTAINLY/Rotator/internal/log"
	"github.com/CZERTAINLY/Rotator/internal/model"
)

// Runner executes one management command and classifies its result.
// It never returns an error, every failure is folded into the outcome.
type Runner interface {
	Run(ctx context.Context, cmd Command) model.CommandOutcome
}

// Observer is notified about every finished command.
type Observer interface {
	ObserveCommand(op string, kind model.ErrorKind, elapsed time.Duration)
}

// Exec runs the management tool as a subprocess. Each invocation holds one
// limiter slot from the moment before the process starts until it is reaped.
type Exec struct {
	binary   string
	timeout  time.Duration
	limiter  *limiter.Limiter
	rules    Rules
	observer Observer
}

func NewExec(lim *limiter.Limiter) Exec {
	return Exec{
		binary:  model.DefaultBinary,
		timeout: model.DefaultTimeout,
		limiter: lim,
		rules:   DefaultRules,
	}
}

func (e Exec) WithBinary(binary string) Exec {
	e.binary = binary
	return e
}

func (e Exec) WithTimeout(timeout time.Duration) Exec {
	e.timeout = timeout
	return e
}

func (e Exec) WithRules(rules Rules) Exec {
	e.rules = rules
	return e
}

func (e Exec) WithObserver(o Observer) Exec {
	e.observer = o
	return e
}

type result struct {
	exitCode int
	stdout   string
	stderr   string
	timedOut bool
	err      error
}

func (e Exec) Run(ctx context.Context, cmd Command) (out model.CommandOutcome) {
	ctx = log.ContextAttrs(ctx, slog.String("op", string(cmd.Op)))

	release, err := e.limiter.Acquire(ctx)
	if err != nil {
		return model.Failed(model.UnhandledError, fmt.Sprintf("waiting for a free slot: %s", err))
	}
	defer release()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		slog.DebugContext(ctx, "command finished",
			"kind", out.Kind.String(),
			"elapsed", elapsed.String(),
		)
		if e.observer != nil {
			e.observer.ObserveCommand(string(cmd.Op), out.Kind, elapsed)
		}
	}()

	slog.DebugContext(ctx, "command started", "args", Redact(cmd.Args))
	res := e.exec(ctx, cmd.Args)
	switch {
	case res.timedOut:
		return model.Failed(model.Timeout, fmt.Sprintf("killed after %s", e.timeout))
	case res.err != nil:
		return model.Failed(model.UnhandledError, res.err.Error())
	}
	return e.rules.Classify(res.exitCode, res.stdout, res.stderr, cmd.Markers)
}

func (e Exec) exec(ctx context.Context, args []string) result {
	if e.timeout == 0 {
		slog.WarnContext(ctx, "command has no timeout", "path", e.binary)
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	// ipmitool diagnostics are matched as text
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	// don't wait on grandchildren holding the pipes after a kill
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := result{
		stdout: clean(stdout.Bytes()),
		stderr: clean(stderr.Bytes()),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.timedOut = true
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.exitCode = 0
	case errors.As(err, &exitErr):
		res.exitCode = exitErr.ExitCode()
		if res.exitCode == -1 {
			res.err = fmt.Errorf("%s: %w", e.binary, err)
		}
	default:
		res.err = err
	}
	return res
}

func clean(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}
