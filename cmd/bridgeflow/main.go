// Command bridgeflow is the CLI entrypoint for the bridgeflow hand-record
// batch converter.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or the conversion pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/data-bridge/bridgeflow/internal/check"
	"github.com/data-bridge/bridgeflow/internal/codec"
	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/display"
	"github.com/data-bridge/bridgeflow/internal/logging"
	"github.com/data-bridge/bridgeflow/internal/pipeline"
	"github.com/data-bridge/bridgeflow/internal/solver"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.3.0"
	commit  = "unknown"
)

// exitError carries a process exit code out of RunE.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	os.Exit(execute())
}

func execute() int {
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "bridgeflow: %v\n", err)
		return 1
	}
	cmd := newRootCmd(&cfg)
	if err := cmd.Execute(); err != nil {
		if code, ok := err.(exitError); ok {
			return int(code)
		}
		fmt.Fprintf(os.Stderr, "bridgeflow: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridgeflow [flags] <input> [output]",
		Short: "Convert, validate and analyse bridge hand-record files",
		Long: `bridgeflow converts hand-record files (LIN, PBN, RBN, RBX, TXT, EML, REC)
between formats, checks the outputs against reference files, and attaches
double-dummy results from an external solver, cached per directory.

<input> is a file or a directory scanned recursively. [output] is a file
or a directory; without it outputs are only compared and then discarded.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	negated := config.BindFlags(cmd.Flags(), cfg)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := config.Resolve(cmd.Flags(), cfg, negated, args); err != nil {
			return err
		}
		if code := run(cmd.Context(), cfg); code != 0 {
			return exitError(code)
		}
		return nil
	}
	return cmd
}

func run(parent context.Context, cfg *config.Config) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bridgeflow: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner(os.Stdout)

	if parent == nil {
		parent = context.Background()
	}
	if cfg.CheckOnly {
		if !check.RunCheck(parent, cfg, log) {
			return 1
		}
		return 0
	}

	log.Info("=== bridgeflow v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.Input)
	if cfg.Output != "" {
		log.Info("Out: %s", cfg.Output)
	}
	if cfg.Reference != "" {
		log.Info("Ref: %s", cfg.Reference)
	}
	if cfg.ConfigFile != "" {
		log.Debug(cfg.Verbose, "Config file: %s", cfg.ConfigFile)
	}

	// Fail fast on a missing input, a nested output or an unusable solver.
	if err := check.CheckDeps(parent, cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Cancel on SIGINT/SIGTERM so workers stop between files; the caches of
	// completed files are still written.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current files...")
			cancel()
		case <-ctx.Done():
		}
	}()

	deps := pipeline.Deps{Codecs: codec.Default()}
	if cfg.NeedsSolver() {
		deps.Solver = solver.NewExec(cfg.SolverPath, cfg.SolverTimeout, cfg.SolverBatch)
	}

	sum, err := pipeline.Run(ctx, cfg, log, deps)
	if err != nil {
		return 1
	}
	if f := sum.Stats.Files; f.DecodeFailed > 0 || f.EncodeFailed > 0 {
		return 1
	}
	return 0
}
