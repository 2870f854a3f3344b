package solver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a solver batch exceeds its timeout.
var ErrTimeout = errors.New("solver timed out")

// ExecResult holds the outcome of a single solver invocation.
type ExecResult struct {
	Lines    []string
	Stderr   string
	TimedOut bool
	Err      error
}

// Exec runs an external solver binary, one process per batch.
type Exec struct {
	Path    string
	Timeout time.Duration // Per batch; zero means no timeout.
	Batch   int
}

// NewExec returns a runner for the binary at path. batch is clamped to
// [1, MaxBatch].
func NewExec(path string, timeout time.Duration, batch int) *Exec {
	return &Exec{Path: path, Timeout: timeout, Batch: min(max(batch, 1), MaxBatch)}
}

// MaxBatch implements [Solver].
func (e *Exec) MaxBatch() int { return e.Batch }

// Solve implements [Solver].
func (e *Exec) Solve(ctx context.Context, deals []string) ([]string, error) {
	return e.run(ctx, ModeSolve, deals)
}

// Trace implements [Solver].
func (e *Exec) Trace(ctx context.Context, plays []string) ([]string, error) {
	return e.run(ctx, ModeTrace, plays)
}

// run feeds inputs to the binary, shrinking the batch when a call times
// out or is rejected as too large.
func (e *Exec) run(ctx context.Context, mode Mode, inputs []string) ([]string, error) {
	for _, in := range inputs {
		if strings.ContainsAny(in, "\r\n") {
			return nil, fmt.Errorf("%s: input contains a line break: %q", mode, in)
		}
	}

	out := make([]string, 0, len(inputs))
	rs := NewRetryState(len(inputs))
	for len(out) < len(inputs) {
		end := min(len(out)+rs.Batch, len(inputs))
		res := e.Execute(ctx, mode, inputs[len(out):end])
		if res.Err == nil {
			out = append(out, res.Lines...)
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if rs.Advance(res) == RetryNone {
			return nil, describe(mode, res)
		}
	}
	return out, nil
}

// Execute runs the binary once for batch. Stdout must hold exactly one
// non-empty line per input.
func (e *Exec) Execute(ctx context.Context, mode Mode, batch []string) ExecResult {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Path, mode.String())
	cmd.Stdin = strings.NewReader(strings.Join(batch, "\n") + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := ExecResult{Stderr: stderr.String()}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.Err = fmt.Errorf("%w after %s (%d inputs)", ErrTimeout, e.Timeout, len(batch))
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}

	sc := bufio.NewScanner(&stdout)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			res.Lines = append(res.Lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		res.Err = err
		return res
	}
	if len(res.Lines) != len(batch) {
		res.Err = fmt.Errorf("%w (%d for %d)", ErrShortResult, len(res.Lines), len(batch))
	}
	return res
}

// describe wraps a failed result with the last line of stderr.
func describe(mode Mode, res ExecResult) error {
	tail := strings.TrimSpace(res.Stderr)
	if i := strings.LastIndexByte(tail, '\n'); i >= 0 {
		tail = tail[i+1:]
	}
	if tail == "" {
		return fmt.Errorf("%s: %w", mode, res.Err)
	}
	return fmt.Errorf("%s: %w: %s", mode, res.Err, tail)
}

// selfTestDeal is a complete deal used to check that the binary answers.
const selfTestDeal = "N:AKQJ.AKQ.AKQ.AKQ 5432.5432.5432.5 T98.T98.T98.T987 76.J76.J76.J6432"

// SelfTest solves one known deal and reports whether the binary produced
// exactly one result.
func (e *Exec) SelfTest(ctx context.Context) (string, error) {
	res := e.Execute(ctx, ModeSolve, []string{selfTestDeal})
	if res.Err != nil {
		return "", describe(ModeSolve, res)
	}
	return res.Lines[0], nil
}
