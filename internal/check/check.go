// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the double-dummy solver and the
// directories a run writes to.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/solver"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrSolverNotFound    = errors.New("double-dummy solver not found")
	ErrSolverSelfTest    = errors.New("double-dummy solver failed its self-test")
	ErrInputNotFound     = errors.New("input not found")
	ErrDirNotWritable    = errors.New("directory not writable")
	ErrOutputInsideInput = errors.New("output directory must not be inside input directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow and reports whether everything
// a run with cfg needs is in place. It does not stop at the first problem.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkSolver(ctx, cfg, log)
	if cfg.Input != "" {
		if _, err := os.Stat(cfg.Input); err != nil {
			log.Error("Input: %v", err)
			ok = false
		} else {
			log.Success("Input: %s", cfg.Input)
		}
	}
	for _, d := range writeTargets(cfg) {
		if err := writable(d.dir); err != nil {
			log.Error("%s: %v", d.what, err)
			ok = false
			continue
		}
		log.Success("%s: %s is writable", d.what, d.dir)
	}
	return ok
}

// checkSolver locates the solver binary and runs one known deal through it.
func checkSolver(ctx context.Context, cfg *config.Config, log Logger) bool {
	path, err := exec.LookPath(cfg.SolverPath)
	if err != nil {
		if cfg.NeedsSolver() {
			log.Error("Solver %q not found", cfg.SolverPath)
			return false
		}
		log.Warn("Solver %q not found (only needed for --solve and --trace)", cfg.SolverPath)
		return true
	}
	log.Info("Testing solver %s...", path)
	out, err := solver.NewExec(path, cfg.SolverTimeout, 1).SelfTest(ctx)
	if err != nil {
		log.Error("Solver self-test failed: %v", err)
		return !cfg.NeedsSolver()
	}
	log.Success("Solver works: %s", out)
	return true
}

type target struct {
	what string
	dir  string
}

// writeTargets lists the directories a run writes to, besides the input
// directories that hold the result caches.
func writeTargets(cfg *config.Config) []target {
	var out []target
	if cfg.LogFile != "" {
		out = append(out, target{"Log", filepath.Dir(cfg.LogFile)})
	}
	if cfg.Digest && cfg.DigestDir != "" {
		out = append(out, target{"Digest", cfg.DigestDir})
	}
	return out
}

// CheckDeps is the pre-pipeline validation: the input must exist, the output
// directory must not lie inside it, and when a solver stage is enabled the
// solver must be on PATH and pass its self-test. Returns a sentinel error
// on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	inputAbs, err := AbsPath(cfg.Input)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, cfg.Input)
	}
	if fi, err := os.Stat(cfg.Output); err == nil && fi.IsDir() {
		outputAbs, err := AbsPath(cfg.Output)
		if err == nil && cfg.ValidatePaths(inputAbs, outputAbs) != nil {
			return ErrOutputInsideInput
		}
	}

	for _, d := range writeTargets(cfg) {
		if err := writable(d.dir); err != nil {
			return err
		}
	}

	if !cfg.NeedsSolver() {
		return nil
	}
	if _, err := exec.LookPath(cfg.SolverPath); err != nil {
		return fmt.Errorf("%w: %s", ErrSolverNotFound, cfg.SolverPath)
	}
	if _, err := solver.NewExec(cfg.SolverPath, cfg.SolverTimeout, 1).SelfTest(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSolverSelfTest, err)
	}
	return nil
}

// AbsPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func AbsPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// writable creates dir if needed and proves a file can be created in it.
func writable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}
	f, err := os.CreateTemp(dir, ".bridgeflow-check-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
