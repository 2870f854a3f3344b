package stats

import (
	"time"

	"github.com/data-bridge/bridgeflow/internal/format"
)

// Stage names one timed step of the per-file pipeline.
type Stage int

const (
	StageDecode Stage = iota
	StageRefStats
	StagePlayers
	StageSolve
	StageTrace
	StageText
	StageEquality
	StageEncode
	StageValidate
	StageCompare
	StageDigest
	numStages
)

var stageNames = [numStages]string{
	"decode", "refstats", "players", "solve", "trace", "text",
	"equality", "encode", "validate", "compare", "digest",
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return "stage?"
	}
	return stageNames[s]
}

// Stages lists every stage in pipeline order.
func Stages() []Stage {
	out := make([]Stage, numStages)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// TimerKey is one (stage, format) cell.
type TimerKey struct {
	Stage  Stage
	Format format.Format
}

// Timer is the total time spent in one cell and how often it ran.
type Timer struct {
	Total time.Duration
	Count int
}

// Timers accumulates per (stage, format) durations.
type Timers map[TimerKey]Timer

// Add records one run of stage for format f.
func (t Timers) Add(s Stage, f format.Format, d time.Duration) {
	k := TimerKey{s, f}
	cur := t[k]
	cur.Total += d
	cur.Count++
	t[k] = cur
}

// Time runs fn and records its duration.
func (t Timers) Time(s Stage, f format.Format, fn func()) {
	start := time.Now()
	fn()
	t.Add(s, f, time.Since(start))
}

// Stage returns the total of one stage over all formats.
func (t Timers) Stage(s Stage) Timer {
	var out Timer
	for k, v := range t {
		if k.Stage == s {
			out.Total += v.Total
			out.Count += v.Count
		}
	}
	return out
}

func (t Timers) Merge(o Timers) {
	for k, v := range o {
		cur := t[k]
		cur.Total += v.Total
		cur.Count += v.Count
		t[k] = cur
	}
}
