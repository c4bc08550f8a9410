// Command sessionsim drives a running Lingua service with concurrent
// simulated practice sessions and verifies every score it returns.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/lingua/internal/sessionsim"
	"github.com/okian/lingua/pkg/logger"
	"github.com/spf13/cobra"
)

// Default configuration constants.
const (
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &sessionsim.Config{}
	var (
		verbose bool
		format  string
		limit   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sessionsim",
		Short: "Simulate concurrent practice sessions against a Lingua service",
		Long: `sessionsim starts sessions, submits alternating user and coach turns,
retries one turn per session with its idempotency key, ends each session and
checks the returned score against the heuristic. It finishes with one
placement request.`,
		Example: `  sessionsim --url http://localhost:3001 --sessions 500 --workers 16
  sessionsim --turns 8 --words 60 --verbose`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithFormat(format)); err != nil {
				return err
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}
			cfg.Verbose = verbose
			cfg.Logger = logger.Get().Named("sessionsim")

			ctx, cancel := context.WithTimeout(cmd.Context(), limit)
			defer cancel()

			_, err := sessionsim.Run(ctx, cfg)
			if err != nil {
				cfg.Logger.Error(ctx, "simulation failed", logger.Error(err))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", "http://localhost:3001", "Base URL of the service")
	flags.IntVar(&cfg.Sessions, "sessions", sessionsim.DefaultSessions, "Number of sessions to simulate")
	flags.IntVar(&cfg.Turns, "turns", sessionsim.DefaultTurns, "User turns per session")
	flags.IntVar(&cfg.Words, "words", sessionsim.DefaultWords, "Maximum words per user turn")
	flags.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	flags.DurationVar(&cfg.Timeout, "timeout", sessionsim.DefaultTimeout, "HTTP request timeout")
	flags.DurationVar(&limit, "limit", defaultRunTimeout, "Overall time limit for the run")
	flags.StringVar(&format, "log-format", logger.FormatText, "Log format (text or json)")
	flags.BoolVar(&verbose, "verbose", false, "Log every session outcome")

	return cmd
}
