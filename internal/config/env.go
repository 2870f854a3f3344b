package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by [LoadEnv].
const (
	EnvSolver        = "BRIDGEFLOW_SOLVER"
	EnvSolverTimeout = "BRIDGEFLOW_SOLVER_TIMEOUT"
	EnvThreads       = "BRIDGEFLOW_THREADS"
	EnvLogFile       = "BRIDGEFLOW_LOG"
	EnvDigestDir     = "BRIDGEFLOW_DIGEST_DIR"
)

// LoadEnv applies BRIDGEFLOW_* settings on top of cfg. Values come from the
// process environment, falling back to the given dotenv files (default:
// ".env" in the working directory, when present). The process environment
// is never modified. Precedence of the final settings is
// defaults < environment < config file < flags.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	vals := map[string]string{}
	if len(files) > 0 {
		m, err := godotenv.Read(files...)
		if err != nil {
			return fmt.Errorf("read env file: %w", err)
		}
		vals = m
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(vals[key])
	}

	if v := get(EnvSolver); v != "" {
		cfg.SolverPath = v
	}
	if v := get(EnvSolverTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSolverTimeout, err)
		}
		cfg.SolverTimeout = d
	}
	if v := get(EnvThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThreads, err)
		}
		cfg.Threads = n
	}
	if v := get(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := get(EnvDigestDir); v != "" {
		cfg.DigestDir = v
	}
	return nil
}
