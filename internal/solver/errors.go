package solver

import "regexp"

// Pre-compiled regexes for classifying solver stderr into retryable error
// categories. Checked in order by [RetryState.Advance].
var (
	reBatchTooLarge = regexp.MustCompile(
		`(?i)too many (deals|boards|hands)|batch (size )?(too large|exceeds)|` +
			`maximum number of (deals|boards)`)

	reTransient = regexp.MustCompile(
		`(?i)resource temporarily unavailable|try again|` +
			`cannot allocate memory|out of memory|thread creation failed`)
)

// MatchBatchTooLarge reports whether stderr says the batch was too big.
func MatchBatchTooLarge(stderr string) bool {
	return reBatchTooLarge.MatchString(stderr)
}

// MatchTransient reports whether stderr names a failure worth retrying as is.
func MatchTransient(stderr string) bool {
	return reTransient.MatchString(stderr)
}
