package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/CZERTAINLY/Rotator/internal/batch"
	"github.com/CZERTAINLY/Rotator/internal/input"
	"github.com/CZERTAINLY/Rotator/internal/ipmi"
	"github.com/CZERTAINLY/Rotator/internal/limiter"
	"github.com/CZERTAINLY/Rotator/internal/metrics"
	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/CZERTAINLY/Rotator/internal/report"
	"github.com/CZERTAINLY/Rotator/internal/rotate"
	"github.com/CZERTAINLY/Rotator/internal/sink"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultInput = "input.csv"

var errFatal = errors.New("rotation aborted")

func doRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config
	if len(args) == 1 {
		cfg.Input = args[0]
	}
	if cfg.Input == "" {
		cfg.Input = defaultInput
	}

	runID := uuid.NewString()
	slog.SetDefault(slog.Default().With(
		slog.Group("rotator",
			slog.String("cmd", "run"),
			slog.String("run_id", runID),
			slog.Int("pid", os.Getpid()),
		),
	))

	_, err := rotateAll(ctx, cfg, cmd.OutOrStdout())
	return err
}

// rotateAll runs one batch as described by cfg and prints the summary to out.
func rotateAll(ctx context.Context, cfg model.Config, out io.Writer) (batch.Summary, error) {
	console := report.NewConsole(out, cfg.Color)

	lines, err := input.ReadFile(cfg.Input)
	if err != nil {
		console.Fatalf("Cannot read input %s: %s", cfg.Input, err)
		return batch.Summary{}, fmt.Errorf("%w: %w", errFatal, err)
	}
	slog.InfoContext(ctx, "input loaded", "path", cfg.Input, "lines", len(lines))

	logs, err := sink.OpenSet(cfg.Logs.Success, cfg.Logs.Failure, cfg.Logs.BadLines)
	if err != nil {
		console.Fatalf("Cannot open result logs: %s", err)
		return batch.Summary{}, fmt.Errorf("%w: %w", errFatal, err)
	}
	defer func() {
		if err := logs.Close(); err != nil {
			slog.ErrorContext(ctx, "closing result logs", "error", err)
		}
	}()

	lim := limiter.New(cfg.Tool.MaxConcurrent)
	rec := metrics.New()
	runner := ipmi.NewExec(lim).
		WithBinary(cfg.Tool.Binary).
		WithTimeout(cfg.Tool.Timeout).
		WithObserver(rec)

	proc := rotate.NewProcessor(runner, console, rotate.OptionsFromConfig(cfg))
	sum := batch.New(proc, logs.Success, logs.Failure, logs.BadLines, console).
		WithObserver(rec).
		Run(ctx, lines)

	console.Summary(len(sum.Successes), sum.Failures)

	rec.SetPeak(lim.Peak())
	slog.InfoContext(ctx, "run finished", "peak_in_flight", lim.Peak())
	if cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.ErrorContext(ctx, "can't write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}
	return sum, nil
}
