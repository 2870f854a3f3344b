package config

// This file binds CLI flags onto a Config and resolves the final settings.
// Flags are grouped into paths, stages, solver, display, and utility.
// Negated flags (e.g. --no-validate) are applied after parsing so Config
// defaults hold unless set.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// NegatedFlags holds boolean flags that are applied after parsing.
// Each one clears a default that is on.
type NegatedFlags struct {
	noKeep     bool
	noValidate bool
	forceColor bool
	noColor    bool
}

// BindFlags registers every flag on fs, writing straight into cfg. The
// returned NegatedFlags must be handed to [Resolve] after parsing.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *NegatedFlags {
	n := &NegatedFlags{}
	definePathFlags(fs, cfg, n)
	defineStageFlags(fs, cfg, n)
	defineSolverFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, n)
	fs.SortFlags = false
	return n
}

// definePathFlags registers --ref, --format, --ref-format, --threads, --no-keep, --config.
func definePathFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	fs.StringVarP(&cfg.Reference, "ref", "r", cfg.Reference, "Reference file or directory")
	fs.StringVarP(&cfg.OutputFormat, "format", "f", cfg.OutputFormat, "Output formats, comma separated (default: lin,pbn,rbn,rbx,txt,eml,rec)")
	fs.StringVar(&cfg.RefFormat, "ref-format", cfg.RefFormat, "Only use reference files of this format")
	fs.IntVarP(&cfg.Threads, "threads", "n", cfg.Threads, "Worker threads")
	fs.BoolVar(&n.noKeep, "no-keep", false, "Delete written outputs once they are checked")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Read settings from a YAML file (flags win)")
}

// defineStageFlags registers the per-stage switches.
func defineStageFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	fs.BoolVar(&cfg.Solve, "solve", false, "Attach double-dummy trick tables")
	fs.BoolVar(&cfg.Trace, "trace", false, "Attach double-dummy play traces")
	fs.BoolVar(&cfg.Compare, "compare", false, "Round-trip outputs in the input format")
	fs.BoolVar(&n.noValidate, "no-validate", false, "Do not compare outputs with references")
	fs.BoolVar(&cfg.Stats, "stats", false, "Collect text field statistics")
	fs.BoolVar(&cfg.Valuation, "valuation", false, "Collect hand valuation statistics")
	fs.BoolVar(&cfg.Equality, "equality", false, "Report deals that occur in more than one file")
	fs.BoolVar(&cfg.Digest, "digest", false, "Write a per-file digest")
	fs.BoolVar(&cfg.PlayerCheck, "players", false, "Check player names for gaps and overlaps")
	fs.BoolVar(&cfg.RefStats, "ref-stats", false, "Reconcile every file and tally reference corrections")
	fs.StringVar(&cfg.DigestDir, "digest-dir", cfg.DigestDir, "Directory for digest files (default: next to input)")
}

// defineSolverFlags registers --solver, --solver-timeout, --solver-batch.
func defineSolverFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.SolverPath, "solver", cfg.SolverPath, "Double-dummy solver binary")
	fs.DurationVar(&cfg.SolverTimeout, "solver-timeout", cfg.SolverTimeout, "Timeout per solver batch (0 disables)")
	fs.IntVar(&cfg.SolverBatch, "solver-batch", cfg.SolverBatch, fmt.Sprintf("Deals per solver call (max %d)", MaxSolverBatch))
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// Resolve finishes configuration after fs has been parsed: the YAML file
// named by --config is applied underneath the flags the user actually set,
// negated flags are applied, positional arguments fill Input and Output,
// and the result is validated.
func Resolve(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags, args []string) error {
	if cfg.ConfigFile != "" {
		if err := reapplyOver(fs, cfg); err != nil {
			return err
		}
	}

	applyNegatedFlags(cfg, n)

	if err := parsePositionalArgs(cfg, args); err != nil {
		return err
	}
	return cfg.Validate()
}

// reapplyOver loads the config file and then sets every changed flag again,
// so that explicit flags take precedence over the file.
func reapplyOver(fs *pflag.FlagSet, cfg *Config) error {
	type setting struct{ name, value string }
	var changed []setting
	fs.Visit(func(f *pflag.Flag) {
		changed = append(changed, setting{f.Name, f.Value.String()})
	})

	if err := LoadFile(cfg.ConfigFile, cfg); err != nil {
		return err
	}
	for _, s := range changed {
		if err := fs.Set(s.name, s.value); err != nil {
			return fmt.Errorf("--%s: %w", s.name, err)
		}
	}
	return nil
}

// applyNegatedFlags copies negated and override flag values into cfg (e.g. noValidate -> ValidateRefs=false).
func applyNegatedFlags(cfg *Config, n *NegatedFlags) {
	cfg.ColorMode = ColorMode(strings.ToLower(string(cfg.ColorMode)))
	if n.noKeep {
		cfg.KeepOutputs = false
	}
	if n.noValidate {
		cfg.ValidateRefs = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Input and Output from "<input> [output]" when not
// in CheckOnly mode. Positional arguments override the config file.
func parsePositionalArgs(cfg *Config, args []string) error {
	if cfg.CheckOnly {
		return nil
	}
	if len(args) > 2 {
		return fmt.Errorf("need at most an input and an output (got %d arguments)", len(args))
	}
	if len(args) >= 1 {
		cfg.Input = NormalizeDirArg(args[0])
	}
	if len(args) == 2 {
		cfg.Output = NormalizeDirArg(args[1])
	}
	return nil
}
