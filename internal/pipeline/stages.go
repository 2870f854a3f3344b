package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/data-bridge/bridgeflow/internal/ddcache"
	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/planner"
	"github.com/data-bridge/bridgeflow/internal/record"
	"github.com/data-bridge/bridgeflow/internal/solver"
	"github.com/data-bridge/bridgeflow/internal/stats"
)

// --- Players ---

func (w *worker) checkPlayers(tour *record.Tournament) {
	p := &w.th.Players
	missing, overlaps := 0, 0
	tour.Instances(func(_ record.CaseID, _ *record.Board, in *record.Instance) {
		p.Instances++
		seen := make(map[string]bool, 4)
		for _, name := range in.Players {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				missing++
				continue
			}
			if seen[name] {
				overlaps++
			}
			seen[name] = true
		}
	})
	p.Missing += missing
	p.Overlaps += overlaps
	if overlaps > 0 {
		w.log.Warn("  Players: %d seats repeat a name at the same table", overlaps)
	}
	if missing > 0 {
		w.log.Debug(w.cfg.Verbose, "  Players: %d seats without a name", missing)
	}
}

// --- Double-dummy solve and trace ---

// job is one case to be answered from the cache or the solver.
type job struct {
	id    record.CaseID
	input string
	apply func(value string)
}

func (w *worker) solve(ctx context.Context, in format.FileRecord, tour *record.Tournament) error {
	var jobs []job
	tour.Boards(func(id record.CaseID, b *record.Board) {
		if !fullDeal(b.Deal) {
			return
		}
		jobs = append(jobs, job{id: id, input: b.Deal, apply: func(v string) { b.DDTable = v }})
	})
	return w.cached(ctx, in, w.caches.solve, solver.ModeSolve, jobs, &w.th.Cache.Solve)
}

func (w *worker) trace(ctx context.Context, in format.FileRecord, tour *record.Tournament) error {
	var jobs []job
	tour.Instances(func(id record.CaseID, b *record.Board, inst *record.Instance) {
		if !fullDeal(b.Deal) || inst.Play == "" {
			return
		}
		jobs = append(jobs, job{
			id:    id,
			input: b.Deal + "\t" + inst.Play,
			apply: func(v string) { inst.Trace = v },
		})
	})
	return w.cached(ctx, in, w.caches.trace, solver.ModeTrace, jobs, &w.th.Cache.Trace)
}

// fullDeal reports whether all four hands are known.
func fullDeal(deal string) bool {
	hands, err := record.Hands(deal)
	if err != nil {
		return false
	}
	for _, h := range hands {
		if h == "" {
			return false
		}
	}
	return true
}

// cached answers jobs from store, computes the missing ones through the
// solver in bounded batches, and inserts exactly those results. Solver and
// cache-load problems are recoverable; an insert that violates the cache
// contract is returned as fatal.
func (w *worker) cached(ctx context.Context, in format.FileRecord, store *ddcache.Store,
	mode solver.Mode, jobs []job, counts *stats.CacheCounts) error {
	if len(jobs) == 0 {
		return nil
	}
	dir, file := in.Dir(), in.Base

	if err := store.Load(dir); err != nil {
		if !errors.Is(err, ddcache.ErrCorrupt) {
			w.log.Error("%v", fault.File(dir, mode.String(), fault.ErrSolve, err))
			return nil
		}
		w.log.Warn("  %v", err)
	}

	byID := make(map[record.CaseID]job, len(jobs))
	ids := make([]record.CaseID, 0, len(jobs))
	for _, j := range jobs {
		if _, dup := byID[j.id]; dup {
			w.log.Debug(w.cfg.Verbose, "  %s: case %s occurs twice, first one kept", mode, j.id)
			continue
		}
		byID[j.id] = j
		ids = append(ids, j.id)
	}

	found, missing := store.Lookup(dir, file, ids)
	for _, h := range found {
		byID[h.Case].apply(h.Handle.Value())
	}
	counts.Hits += len(found)
	counts.Misses += len(missing)
	if len(missing) == 0 {
		return nil
	}

	if w.solver == nil {
		w.log.Error("%v", fault.File(in.Path, mode.String(), fault.ErrSolve, errors.New("no solver configured")))
		return nil
	}
	inputs := make([]string, len(missing))
	for i, id := range missing {
		inputs[i] = byID[id].input
	}
	results, err := solver.Run(ctx, w.solver, mode, inputs)
	if err != nil {
		w.log.Error("%v", fault.File(in.Path, mode.String(), fault.ErrSolve, err))
		return nil
	}
	counts.Computed += len(results)

	// Another worker may have cached the same base name (100.lin and 100.pbn)
	// while the solver ran. Its value wins and counts as a hit.
	handles, raced, err := store.InsertMissing(dir, file, missing, results)
	if err != nil {
		return err
	}
	counts.Hits += raced
	counts.Misses -= raced
	counts.Inserted += len(handles) - raced
	for i, id := range missing {
		byID[id].apply(handles[i].Value())
	}
	w.log.Debug(w.cfg.Verbose, "  %s: %d cached, %d computed", mode, len(found), len(results))
	return nil
}

// --- Text, valuation and pass statistics ---

func (w *worker) textStats(tour *record.Tournament) {
	if w.cfg.Stats {
		for _, seg := range tour.Segments {
			w.th.Text.Add("title", seg.Title)
			w.th.Text.Add("event", seg.Event)
			w.th.Text.Add("date", seg.Date)
		}
		tour.Instances(func(_ record.CaseID, _ *record.Board, in *record.Instance) {
			for _, p := range in.Players {
				w.th.Text.Add("player", p)
			}
			w.th.Text.Add("auction", in.Auction)
			w.th.Text.Add("result", in.Result)
		})
	}
	if !w.cfg.Valuation {
		return
	}
	tour.Boards(func(_ record.CaseID, b *record.Board) {
		if !fullDeal(b.Deal) {
			return
		}
		hcp, _ := record.HCP(b.Deal)
		for _, pts := range hcp {
			w.th.Values.Add(pts)
		}
		for _, in := range b.Instances {
			w.passStats(b.Number, hcp, in.Auction)
		}
	})
}

// passStats records the calls before the opening bid.
func (w *worker) passStats(board int, hcp [4]int, auction string) {
	calls := strings.Fields(auction)
	dealer := record.Dealer(board)
	for pos := 0; pos < 4 && pos < len(calls); pos++ {
		passed := isPass(calls[pos])
		w.th.Passes.Add(pos, hcp[(dealer+pos)%4], passed)
		if !passed {
			return
		}
	}
}

func isPass(call string) bool {
	switch strings.ToLower(strings.TrimRight(call, "!")) {
	case "p", "pass", "ap":
		return true
	}
	return false
}

// --- Equality ---

func (w *worker) fingerprint(in format.FileRecord, tour *record.Tournament) {
	tour.Boards(func(id record.CaseID, b *record.Board) {
		if !fullDeal(b.Deal) {
			return
		}
		if fp, err := record.Fingerprint(b.Deal); err == nil {
			w.th.Fingerprints.Add(fp, in.Path, id.Key())
		}
	})
}

// --- Digest ---

// digestPath is "<dir>/<base>.dig", next to the input unless a digest
// directory is configured.
func (w *worker) digestPath(in format.FileRecord) string {
	dir := w.cfg.DigestDir
	if dir == "" {
		dir = in.Dir()
	}
	return filepath.Join(dir, in.Base+".dig")
}

// digest writes one line per table result: case, deal, result, and the
// double-dummy table when known.
func (w *worker) digest(task *planner.Task, tour *record.Tournament) {
	in := task.Input
	var sb strings.Builder
	tour.Instances(func(id record.CaseID, b *record.Board, inst *record.Instance) {
		fmt.Fprintf(&sb, "%s\t%s\t%s", id.Key(), b.Deal, inst.Result)
		if b.DDTable != "" {
			sb.WriteString("\t" + b.DDTable)
		}
		sb.WriteByte('\n')
	})

	path := w.digestPath(in)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.log.Error("Cannot create digest directory: %v", err)
		return
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		w.log.Error("Cannot write digest: %v", err)
		return
	}
	w.log.Debug(w.cfg.Verbose, "  Digest: %s", path)
}
