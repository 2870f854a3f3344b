package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items int
		n     int
		want  []int
	}{
		{"empty", 0, 10, nil},
		{"exact", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"zero clamps to one", 2, 0, []int{1, 1}},
		{"bound", 450, 1000, []int{200, 200, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.items)
			for i := range items {
				items[i] = i
			}
			var sizes []int
			next := 0
			for _, c := range Chunk(items, tt.n) {
				sizes = append(sizes, len(c))
				for _, v := range c {
					require.Equal(t, next, v, "order lost")
					next++
				}
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

// countingSolver echoes inputs and records every batch size.
type countingSolver struct {
	max     int
	batches []int
	short   bool
}

func (s *countingSolver) MaxBatch() int { return s.max }

func (s *countingSolver) Solve(_ context.Context, in []string) ([]string, error) {
	s.batches = append(s.batches, len(in))
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = "dd:" + d
	}
	if s.short {
		out = out[1:]
	}
	return out, nil
}

func (s *countingSolver) Trace(ctx context.Context, in []string) ([]string, error) {
	return s.Solve(ctx, in)
}

func TestRun_BatchesInOrder(t *testing.T) {
	s := &countingSolver{max: 2}
	got, err := Run(context.Background(), s, ModeSolve, []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dd:a", "dd:b", "dd:c", "dd:d", "dd:e"}, got)
	assert.Equal(t, []int{2, 2, 1}, s.batches)
}

func TestRun_ShortResult(t *testing.T) {
	s := &countingSolver{max: 10, short: true}
	_, err := Run(context.Background(), s, ModeTrace, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrShortResult)
}

func TestRun_MalformedResult(t *testing.T) {
	s := &countingSolver{max: 10}
	_, err := Run(context.Background(), s, ModeTrace, []string{"a", "b\tc"})
	require.ErrorIs(t, err, ErrBadResult)
	assert.Contains(t, err.Error(), "input 2")
}

func TestRetryState_Advance(t *testing.T) {
	rs := NewRetryState(8)
	assert.Equal(t, RetryShrink, rs.Advance(ExecResult{TimedOut: true}))
	assert.Equal(t, 4, rs.Batch)
	assert.Equal(t, RetryShrink, rs.Advance(ExecResult{Stderr: "error: too many deals in batch"}))
	assert.Equal(t, 2, rs.Batch)
	assert.Equal(t, RetryAgain, rs.Advance(ExecResult{Stderr: "fork: Resource temporarily unavailable"}))
	assert.Equal(t, RetryNone, rs.Advance(ExecResult{TimedOut: true}), "attempt limit")

	rs = NewRetryState(1)
	assert.Equal(t, RetryNone, rs.Advance(ExecResult{TimedOut: true}), "cannot shrink below one")
	assert.Equal(t, RetryNone, NewRetryState(4).Advance(ExecResult{Stderr: "segmentation fault"}))
}

// --- Exec against small shell scripts ---

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	path := filepath.Join(t.TempDir(), "ddsolve")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const echoScript = `while IFS= read -r line; do echo "$1:$line"; done
`

func TestExec_SolveAndTrace(t *testing.T) {
	e := NewExec(script(t, echoScript), 5*time.Second, 2)
	ctx := context.Background()

	got, err := Run(ctx, e, ModeSolve, []string{"d1", "d2", "d3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"solve:d1", "solve:d2", "solve:d3"}, got)

	got, err = e.Trace(ctx, []string{"d1\tp1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"trace:d1\tp1"}, got)
}

func TestExec_RejectsLineBreaks(t *testing.T) {
	e := NewExec(script(t, echoScript), 0, 10)
	_, err := e.Solve(context.Background(), []string{"a\nb"})
	assert.Error(t, err)
}

func TestExec_ShrinksOversizedBatch(t *testing.T) {
	body := `n=0
out=""
while IFS= read -r line; do
  n=$((n+1))
  out="$out$1:$line
"
done
if [ $n -gt 2 ]; then echo "too many deals" >&2; exit 3; fi
printf "%s" "$out"
`
	e := NewExec(script(t, body), 5*time.Second, 5)
	got, err := e.Solve(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, []string{"solve:a", "solve:b", "solve:c", "solve:d", "solve:e"}, got)
}

func TestExec_Timeout(t *testing.T) {
	e := NewExec(script(t, "exec sleep 5\n"), 50*time.Millisecond, 1)
	start := time.Now()
	res := e.Execute(context.Background(), ModeSolve, []string{"d"})
	assert.True(t, res.TimedOut)
	assert.True(t, errors.Is(res.Err, ErrTimeout))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExec_FailureCarriesStderr(t *testing.T) {
	e := NewExec(script(t, "echo 'bad deal on line 1' >&2\nexit 2\n"), 0, 10)
	_, err := e.Solve(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad deal on line 1"), err.Error())
}

func TestExec_SelfTest(t *testing.T) {
	e := NewExec(script(t, echoScript), time.Second, MaxBatch)
	got, err := e.SelfTest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "solve:"+selfTestDeal, got)

	missing := NewExec(filepath.Join(t.TempDir(), "nope"), time.Second, 1)
	_, err = missing.SelfTest(context.Background())
	assert.Error(t, err)
}
