// Package stats holds the per-worker accumulators of a run.
//
// Each worker owns one [Thread] and never shares it while processing. The
// coordinator merges all threads after the workers have joined. Every
// Merge is associative and commutative, so the totals do not depend on
// which worker processed which file.
package stats

// Thread is everything one worker accumulates.
type Thread struct {
	Timers       Timers
	Files        Files
	Refs         Refs
	Validation   Outcomes
	Players      Players
	Text         Text
	Values       Values
	Passes       Passes
	Fingerprints Fingerprints
	Cache        Cache
}

// NewThread returns an empty accumulator set.
func NewThread() *Thread {
	return &Thread{
		Timers:       make(Timers),
		Refs:         Refs{Tags: make(map[string]TagTally)},
		Validation:   make(Outcomes),
		Text:         make(Text),
		Fingerprints: make(Fingerprints),
	}
}

// Merge adds o into t.
func (t *Thread) Merge(o *Thread) {
	t.Timers.Merge(o.Timers)
	t.Files.Merge(o.Files)
	t.Refs.Merge(o.Refs)
	t.Validation.Merge(o.Validation)
	t.Players.Merge(o.Players)
	t.Text.Merge(o.Text)
	t.Values.Merge(o.Values)
	t.Passes.Merge(o.Passes)
	t.Fingerprints.Merge(o.Fingerprints)
	t.Cache.Merge(o.Cache)
}

// MergeAll reduces threads in index order into a fresh Thread.
func MergeAll(threads []*Thread) *Thread {
	total := NewThread()
	for _, th := range threads {
		if th != nil {
			total.Merge(th)
		}
	}
	return total
}
