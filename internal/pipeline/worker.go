package pipeline

import (
	"context"
	"errors"

	"github.com/data-bridge/bridgeflow/internal/codec"
	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/logging"
	"github.com/data-bridge/bridgeflow/internal/planner"
	"github.com/data-bridge/bridgeflow/internal/record"
	"github.com/data-bridge/bridgeflow/internal/refcheck"
	"github.com/data-bridge/bridgeflow/internal/solver"
	"github.com/data-bridge/bridgeflow/internal/stats"
)

// worker owns one statistics set and one log stream for the whole run.
type worker struct {
	id     int
	cfg    *config.Config
	log    *logging.Logger
	codecs codec.Codec
	solver solver.Solver
	caches caches
	th     *stats.Thread
}

// process runs the stage sequence for one task. The digest is written for
// every decoded file, skipped or not. Only fatal errors are returned.
func (w *worker) process(ctx context.Context, task *planner.Task) error {
	in := task.Input

	var tour *record.Tournament
	var err error
	w.th.Timers.Time(stats.StageDecode, in.Format, func() {
		tour, err = w.codecs.Decode(in.Path, in.Format)
	})
	if err != nil {
		w.th.Files.DecodeFailed++
		w.log.Error("%v", fault.File(in.Path, "decode", fault.ErrDecode, err))
		return nil
	}
	w.th.Files.Read++
	w.log.Debug(w.cfg.Verbose, "  %d segments, %d boards, %d hands",
		len(tour.Segments), tour.BoardCount(), tour.HandCount())

	bodyErr := w.body(ctx, task, tour)
	if w.cfg.Digest {
		w.th.Timers.Time(stats.StageDigest, in.Format, func() { w.digest(task, tour) })
	}
	return bodyErr
}

// body is every stage between decode and digest. It returns early when the
// reference file asks to skip the file or cannot be parsed.
func (w *worker) body(ctx context.Context, task *planner.Task, tour *record.Tournament) error {
	in := task.Input

	ref, ok := w.reference(in, tour)
	if !ok {
		return nil
	}
	if ref.Skip {
		w.th.Files.Skipped++
		w.log.Info("  Skip (reference directive)")
		return nil
	}

	if w.cfg.PlayerCheck {
		w.th.Timers.Time(stats.StagePlayers, in.Format, func() { w.checkPlayers(tour) })
	}

	if w.cfg.Solve {
		var err error
		w.th.Timers.Time(stats.StageSolve, in.Format, func() { err = w.solve(ctx, in, tour) })
		if fault.IsFatal(err) {
			return err
		}
	}
	if w.cfg.Trace {
		var err error
		w.th.Timers.Time(stats.StageTrace, in.Format, func() { err = w.trace(ctx, in, tour) })
		if fault.IsFatal(err) {
			return err
		}
	}

	if w.cfg.Stats || w.cfg.Valuation {
		w.th.Timers.Time(stats.StageText, in.Format, func() { w.textStats(tour) })
	}
	if w.cfg.Equality {
		w.th.Timers.Time(stats.StageEquality, in.Format, func() { w.fingerprint(in, tour) })
	}

	for i := range task.Outputs {
		w.output(task, &task.Outputs[i], tour, ref)
	}
	return nil
}

// reference runs reconciliation for the input and resolves the room order.
// ok is false when the reference file cannot be parsed; the file is then
// abandoned.
func (w *worker) reference(in format.FileRecord, tour *record.Tournament) (refcheck.Result, bool) {
	var res refcheck.Result
	var err error
	w.th.Timers.Time(stats.StageRefStats, in.Format, func() {
		res, err = refcheck.Check(in, w.cfg.RefStats)
	})

	var mismatch *refcheck.Mismatch
	switch {
	case err == nil:
	case errors.As(err, &mismatch):
		w.th.Refs.Mismatches++
		w.log.Warn("  %v", err)
	default:
		w.th.Refs.ParseErrors++
		w.log.Error("%v", err)
		return res, false
	}

	if w.cfg.RefStats {
		w.foldReference(res)
	}
	tour.Order = res.ResolveOrder(tour.CaseIDs())
	w.log.Debug(w.cfg.Verbose, "  Directive %s, room order %s, baseline %d lines / %d hands / %d boards",
		res.Directive, tour.Order, res.Baseline.Lines, res.Baseline.Hands, res.Baseline.Boards)
	return res, true
}

func (w *worker) foldReference(res refcheck.Result) {
	r := &w.th.Refs
	r.Files++
	if res.HasComments {
		r.Commented++
	}
	switch res.Directive {
	case refcheck.Skip:
		r.Skips++
	case refcheck.NoValidate:
		r.NoValidate++
	case refcheck.OrderCOCO, refcheck.OrderOOCC:
		r.Orders++
	}
	for _, e := range res.Edits {
		r.AddTag(e.Tag, e.Count.Lines, e.Count.Hands, e.Count.Boards)
	}
}
