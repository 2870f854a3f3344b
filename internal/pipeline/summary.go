package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/display"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/logging"
	"github.com/data-bridge/bridgeflow/internal/stats"
)

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, sum *Summary) {
	log.Info("Run %s: %d files, %d worker(s)", sum.RunID, sum.Tasks, sum.Workers)

	names := make([]string, len(cfg.Formats))
	for i, f := range cfg.Formats {
		names[i] = f.String()
	}
	if len(names) == 0 {
		names = append(names, "default")
	}
	log.Info("Formats: %s", strings.Join(names, ", "))
	if cfg.Output == "" {
		log.Info("Output: none (outputs are compared and discarded)")
	} else {
		log.Info("Output: %s", cfg.Output)
	}
	if cfg.NeedsSolver() {
		log.Info("Solver: %s (batch %d, timeout %s)", cfg.SolverPath, cfg.SolverBatch, cfg.SolverTimeout)
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, sum *Summary) {
	st := sum.Stats
	f := st.Files
	log.Info("==============================")
	log.Info("Done: %d read, %d skipped, %d failed to decode", f.Read, f.Skipped, f.DecodeFailed)
	log.Info("Summary report:")
	log.Info("  Outputs written: %d (%s), deleted: %d", f.Written, display.FormatBytes(f.Bytes), f.Deleted)
	if f.Unsupported > 0 {
		log.Info("  Conversions not supported: %d", f.Unsupported)
	}
	if f.EncodeFailed > 0 {
		log.Warn("  Outputs failed: %d", f.EncodeFailed)
	}

	logTimers(log, st.Timers)
	logValidation(log, st.Validation)

	if cfg.Solve || cfg.Trace {
		logCache(log, "Solve", st.Cache.Solve)
		logCache(log, "Trace", st.Cache.Trace)
		log.Info("  Cache logs written: %d", sum.CacheWrites)
	}
	if cfg.RefStats {
		logRefs(log, st.Refs)
	} else if st.Refs.Mismatches+st.Refs.ParseErrors > 0 {
		log.Warn("  References: %d mismatched, %d unreadable", st.Refs.Mismatches, st.Refs.ParseErrors)
	}
	if cfg.PlayerCheck {
		p := st.Players
		log.Info("  Players: %d tables, %d empty seats, %d repeated names", p.Instances, p.Missing, p.Overlaps)
	}
	if cfg.Stats {
		logText(log, st.Text)
	}
	if cfg.Valuation {
		logValuation(log, st)
	}
	if cfg.Equality {
		logDuplicates(log, sum.Duplicates)
	}

	if sum.Elapsed > 0 {
		log.Success("  Elapsed: %s", display.FormatDuration(sum.Elapsed))
	}
}

func logTimers(log *logging.Logger, t stats.Timers) {
	var lines []string
	for _, s := range stats.Stages() {
		tm := t.Stage(s)
		if tm.Count == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-10s%10s%8d", s, display.FormatDuration(tm.Total), tm.Count))
	}
	if len(lines) == 0 {
		return
	}
	log.Info("  Stage          time    runs")
	for _, l := range lines {
		log.Info("  %s", l)
	}
}

func logValidation(log *logging.Logger, o stats.Outcomes) {
	fs := make([]format.Format, 0, len(o))
	for f := range o {
		fs = append(fs, f)
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
	for _, f := range fs {
		v := o[f]
		if v.Checked > 0 {
			line := "  Validate %s: %d checked, %d identical, %d different, %d structural, %d failed"
			if v.Identical == v.Checked {
				log.Success(line, f, v.Checked, v.Identical, v.Different, v.Structural, v.Failed)
			} else {
				log.Warn(line, f, v.Checked, v.Identical, v.Different, v.Structural, v.Failed)
			}
		}
		if v.RoundTrips > 0 {
			log.Info("  Compare %s: %d round trips, %d differ", f, v.RoundTrips, v.RoundTripBad)
		}
	}
}

func logCache(log *logging.Logger, name string, c stats.CacheCounts) {
	if c.Hits+c.Misses == 0 {
		return
	}
	log.Info("  %s cache: %d hits (%s), %d computed, %d inserted",
		name, c.Hits, display.FormatPercent(c.Hits, c.Hits+c.Misses), c.Computed, c.Inserted)
}

func logRefs(log *logging.Logger, r stats.Refs) {
	log.Info("  References: %d files, %d commented, %d skip, %d noval, %d forced order",
		r.Files, r.Commented, r.Skips, r.NoValidate, r.Orders)
	if r.Mismatches+r.ParseErrors > 0 {
		log.Warn("  References: %d mismatched, %d unreadable", r.Mismatches, r.ParseErrors)
	}
	tags := make([]string, 0, len(r.Tags))
	for tag := range r.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		t := r.Tags[tag]
		log.Info("    %-12s %d edits: %d lines, %d hands, %d boards",
			tag, t.Edits, t.Lines, t.Hands, t.Boards)
	}
}

func logText(log *logging.Logger, t stats.Text) {
	fields := make([]string, 0, len(t))
	for f := range t {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, field := range fields {
		v := t[field]
		log.Info("  Text %-8s: %d values, max %d chars: %q",
			field, v.Count, v.MaxLen, display.Truncate(v.Longest, 40))
	}
}

func logValuation(log *logging.Logger, st *stats.Thread) {
	v := st.Values
	if v.Hands == 0 {
		return
	}
	total := 0
	for pts, n := range v.HCP {
		total += pts * n
	}
	log.Info("  Valuation: %d hands, %.2f HCP on average", v.Hands, float64(total)/float64(v.Hands))
	for pos := 0; pos < 4; pos++ {
		seen, passed := 0, 0
		for hcp := 11; hcp <= 13; hcp++ {
			seen += st.Passes.Seen[pos][hcp]
			passed += st.Passes.Passed[pos][hcp]
		}
		if seen > 0 {
			log.Info("    Seat %d with 11-13 HCP passed %s of %d", pos+1, display.FormatPercent(passed, seen), seen)
		}
	}
}

func logDuplicates(log *logging.Logger, dups []stats.Duplicate) {
	if len(dups) == 0 {
		log.Info("  Equality: no deal found in more than one file")
		return
	}
	log.Warn("  Equality: %d deal(s) found in more than one file", len(dups))
	for _, d := range dups {
		places := make([]string, len(d.Places))
		for i, p := range d.Places {
			places[i] = p.String()
		}
		log.Warn("    %s", strings.Join(places, ", "))
	}
}
