package solver

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone   RetryAction = iota
	RetryShrink             // Halve the batch size.
	RetryAgain              // Repeat the same batch.
)

const maxAttempts = 4

// RetryState tracks the fallbacks applied while one input list is fed to
// the solver binary. Batch is the current batch size.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	Batch       int
}

// NewRetryState starts at batch size n.
func NewRetryState(n int) *RetryState {
	return &RetryState{MaxAttempts: maxAttempts, Batch: max(n, 1)}
}

// Advance inspects a failed run and returns the fix to apply before the
// next attempt. Returns RetryNone when nothing helps or the attempt limit
// is reached.
//
// Evaluation order: timeout or oversized batch → transient failure.
func (s *RetryState) Advance(res ExecResult) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}
	if (res.TimedOut || MatchBatchTooLarge(res.Stderr)) && s.Batch > 1 {
		s.Batch = (s.Batch + 1) / 2
		return RetryShrink
	}
	if MatchTransient(res.Stderr) {
		return RetryAgain
	}
	return RetryNone
}
