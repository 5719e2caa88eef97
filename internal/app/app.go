// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"matchchains/internal/cli"
	"matchchains/internal/cmdutil"
	"matchchains/internal/indexer"
	"matchchains/internal/metrics"
	"matchchains/internal/windowhash"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitUsage       = 2
	ExitFailure     = 3
	ExitInterrupted = 130
)

// Run executes matchchains-index with argv and returns the process exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd := cli.NewCommand(func(cmd *cobra.Command, opt cli.Options) error {
		return index(cmd.Context(), opt, stderr)
	})
	cmd.SetArgs(argv)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	code := exitCode(ctx, err)
	switch {
	case code == ExitOK, code == ExitInterrupted:
	case cmdutil.IsBrokenPipe(err):
		return ExitOK
	case code == ExitUsage:
		_, _ = fmt.Fprintf(stderr, "error: %v\nRun '%s --help' for usage.\n", err, cmd.Name())
	default:
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

func exitCode(ctx context.Context, err error) int {
	var ue *cli.UsageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return ExitInterrupted
	case errors.As(err, &ue), errors.Is(err, indexer.ErrInvalidConfig):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func index(ctx context.Context, opt cli.Options, stderr io.Writer) error {
	log, err := cmdutil.NewLogger(stderr, opt.LogFormat, opt.Quiet, opt.Verbose)
	if err != nil {
		return &cli.UsageError{Err: err}
	}
	ex, err := windowhash.New(opt.HashParams())
	if err != nil {
		return &cli.UsageError{Err: err}
	}

	cfg := opt.IndexerConfig()
	cfg.Logger = log
	st, err := indexer.Build(ctx, cfg, opt.ReadFiles, ex)
	if err != nil {
		return err
	}
	finished := time.Now()

	if opt.SummaryFile != "" {
		if err := indexer.WriteSummary(opt.SummaryFile, indexer.NewSummary(cfg, opt.ReadFiles, st)); err != nil {
			return err
		}
		log.WithField("file", opt.SummaryFile).Info("wrote build summary")
	}
	if opt.MetricsFile != "" {
		m := metrics.New()
		m.Observe(st, finished)
		if err := m.WriteTextfile(opt.MetricsFile); err != nil {
			return err
		}
		log.WithField("file", opt.MetricsFile).Info("wrote build metrics")
	}
	return nil
}
