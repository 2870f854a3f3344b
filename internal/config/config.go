// Package config holds runtime configuration: defaults, an optional YAML
// file, CLI flags, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/data-bridge/bridgeflow/internal/format"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// MaxSolverBatch is the largest number of deals the external solver accepts
// in one call.
const MaxSolverBatch = 200

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by an optional YAML file, then by CLI flags, and is passed by
// pointer to the packages that need it.
type Config struct {
	// Paths. Input is required; Output and Reference may be empty.
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Reference string `yaml:"reference"`

	// Formats.
	OutputFormat string `yaml:"output_format"` // Comma list; empty means the seven defaults.
	RefFormat    string `yaml:"ref_format"`    // Restrict references to one format.

	// Scheduling.
	Threads     int  `yaml:"threads"`      // Default: 1.
	KeepOutputs bool `yaml:"keep_outputs"` // Default: true. Only meaningful with Output.

	// Stage switches.
	Solve        bool `yaml:"solve"`
	Trace        bool `yaml:"trace"`
	Compare      bool `yaml:"compare"`      // Round-trip same-format outputs.
	ValidateRefs bool `yaml:"validate"`     // Default: true. Compare outputs with references.
	Stats        bool `yaml:"stats"`        // Text field statistics.
	Valuation    bool `yaml:"valuation"`    // Hand valuation.
	Equality     bool `yaml:"equality"`     // Duplicate-deal fingerprints.
	Digest       bool `yaml:"digest"`       // Per-file digest.
	PlayerCheck  bool `yaml:"player_check"` // Player completeness and overlap.
	RefStats     bool `yaml:"ref_stats"`    // Reconcile every file and tally its corrections.

	// External solver.
	SolverPath    string        `yaml:"solver_path"`    // Default: "ddsolve".
	SolverTimeout time.Duration `yaml:"solver_timeout"` // Per batch. Default: 2m. Zero disables.
	SolverBatch   int           `yaml:"solver_batch"`   // Default: MaxSolverBatch.

	// DigestDir receives "<base>.dig" files; empty writes them next to the input.
	DigestDir string `yaml:"digest_dir"`

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`    // Default: "auto".
	LogFile   string    `yaml:"log_file"` // Optional log file path.
	CheckOnly bool      `yaml:"-"`        // Run --check diagnostics and exit.

	// ConfigFile is the YAML file the settings were read from, if any.
	ConfigFile string `yaml:"-"`

	// Derived by Validate.
	Formats   []format.Format `yaml:"-"`
	RefFilter format.Format   `yaml:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [Resolve] apply overrides.
func DefaultConfig() Config {
	return Config{
		Threads:       1,
		KeepOutputs:   true,
		ValidateRefs:  true,
		SolverPath:    "ddsolve",
		SolverTimeout: 2 * time.Minute,
		SolverBatch:   MaxSolverBatch,
		ColorMode:     ColorAuto,
	}
}

// LoadFile reads a YAML config file on top of cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum and range fields and derives Formats and RefFilter.
// When not in CheckOnly mode, it also requires an input path.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1 (got %d)", c.Threads)
	}
	if c.SolverBatch < 1 || c.SolverBatch > MaxSolverBatch {
		return fmt.Errorf("solver batch must be between 1 and %d (got %d)", MaxSolverBatch, c.SolverBatch)
	}
	if c.SolverTimeout < 0 {
		return errors.New("solver timeout must not be negative")
	}

	formats, err := format.ParseList(c.OutputFormat)
	if err != nil {
		return fmt.Errorf("output format: %w", err)
	}
	c.Formats = formats

	c.RefFilter = format.Unknown
	if c.RefFormat != "" {
		f, err := format.Parse(c.RefFormat)
		if err != nil {
			return fmt.Errorf("reference format: %w", err)
		}
		c.RefFilter = f
	}

	if c.CheckOnly {
		return nil
	}
	if c.Input == "" {
		return errors.New("need an input file or directory")
	}
	return nil
}

// NeedsSolver reports whether any enabled stage calls the external solver.
func (c *Config) NeedsSolver() bool { return c.Solve || c.Trace }

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents a later run from
// discovering its own output files as inputs. Both arguments must be
// absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
