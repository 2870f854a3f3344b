package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MaxBatch is the hard upper bound on deals per solver call.
const MaxBatch = 200

var (
	// ErrShortResult is returned when a solver answers a batch with the
	// wrong number of results.
	ErrShortResult = errors.New("solver returned wrong number of results")
	// ErrBadResult is returned when a result cannot be stored as one cache
	// field: it is empty or holds a tab or line break.
	ErrBadResult = errors.New("solver returned a malformed result")
)

// Mode selects the solver operation.
type Mode int

const (
	ModeSolve Mode = iota // Trick table per deal.
	ModeTrace             // Play trace per played hand.
)

func (m Mode) String() string {
	if m == ModeTrace {
		return "trace"
	}
	return "solve"
}

// Solver computes double-dummy results. Both calls return exactly one
// result per input, in input order, and never see more than MaxBatch
// inputs at once.
type Solver interface {
	MaxBatch() int
	Solve(ctx context.Context, deals []string) ([]string, error)
	Trace(ctx context.Context, plays []string) ([]string, error)
}

// Chunk splits items into consecutive batches of at most n items. n is
// clamped to [1, MaxBatch].
func Chunk[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	if n > MaxBatch {
		n = MaxBatch
	}
	var out [][]T
	for len(items) > 0 {
		k := min(n, len(items))
		out = append(out, items[:k:k])
		items = items[k:]
	}
	return out
}

// Run feeds inputs to s in batches of s.MaxBatch() and returns the results
// in input order. Every result is a non-empty single field.
func Run(ctx context.Context, s Solver, mode Mode, inputs []string) ([]string, error) {
	call := s.Solve
	if mode == ModeTrace {
		call = s.Trace
	}
	out := make([]string, 0, len(inputs))
	for _, batch := range Chunk(inputs, s.MaxBatch()) {
		res, err := call(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(res) != len(batch) {
			return nil, fmt.Errorf("%s: %w (%d for %d)", mode, ErrShortResult, len(res), len(batch))
		}
		for i, r := range res {
			if r == "" || strings.ContainsAny(r, "\t\r\n") {
				return nil, fmt.Errorf("%s: %w for input %d: %q", mode, ErrBadResult, len(out)+i+1, r)
			}
		}
		out = append(out, res...)
	}
	return out, nil
}
