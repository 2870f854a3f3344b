package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/data-bridge/bridgeflow/internal/codec"
	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/ddcache"
	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/logging"
	"github.com/data-bridge/bridgeflow/internal/planner"
	"github.com/data-bridge/bridgeflow/internal/solver"
	"github.com/data-bridge/bridgeflow/internal/stats"
)

// Deps are the collaborators a run delegates to.
type Deps struct {
	Codecs codec.Codec   // Decoding and encoding of every format.
	Solver solver.Solver // May be nil when no solver stage is enabled.
}

// Summary is the outcome of a run.
type Summary struct {
	RunID       string
	Tasks       int
	Workers     int
	Stats       *stats.Thread // Merged over all workers.
	CacheWrites int           // Backing logs rewritten at flush.
	Duplicates  []stats.Duplicate
	Elapsed     time.Duration
}

// Run is the top-level batch entry point. It plans the batch, processes the
// tasks on cfg.Threads workers, merges their statistics and flushes the
// result caches.
//
// A planning failure is logged and yields an empty run. The returned error
// is non-nil only for invariant violations or a failed cache flush.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Stats: stats.NewThread()}

	tasks, err := planner.Plan(planner.Request{
		Input:     cfg.Input,
		Output:    cfg.Output,
		Reference: cfg.Reference,
		Formats:   cfg.Formats,
		RefFormat: cfg.RefFilter,
		Keep:      cfg.KeepOutputs,
	})
	if err != nil {
		log.Error("Planning failed: %v", err)
		logSummary(cfg, log, &sum)
		return sum, nil
	}
	sum.Tasks = len(tasks)
	sum.Workers = max(1, min(cfg.Threads, len(tasks)))
	logBatchHeader(cfg, log, &sum)

	caches := caches{
		solve: ddcache.NewStore(ddcache.KindSolve),
		trace: ddcache.NewStore(ddcache.KindTrace),
	}
	queue := newTaskQueue(tasks)
	workers, err := newWorkers(cfg, log, deps, caches, sum.Workers)
	if err != nil {
		return sum, fmt.Errorf("worker logs: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w // per-iteration copy (go directive < 1.22)
		g.Go(func() error { return w.run(gctx, queue) })
	}
	runErr := g.Wait()

	// Single-threaded reduction after every worker has returned.
	threads := make([]*stats.Thread, len(workers))
	logs := make([]*logging.Logger, len(workers))
	for i, w := range workers {
		threads[i] = w.th
		logs[i] = w.log
	}
	if err := log.JoinWorkers(logs); err != nil {
		log.Warn("Cannot join worker logs: %v", err)
	}
	sum.Stats = stats.MergeAll(threads)

	if runErr != nil {
		log.Error("Batch aborted: %v", runErr)
		log.Error("Result caches were not written")
		sum.Elapsed = time.Since(start)
		return sum, runErr
	}
	if ctx.Err() != nil {
		log.Warn("Interrupted")
	}

	sum.CacheWrites, err = caches.flush()
	if err != nil {
		log.Error("Writing result caches failed: %v", err)
	}

	if cfg.Equality {
		sum.Duplicates = sum.Stats.Fingerprints.Duplicates()
	}
	sum.Elapsed = time.Since(start)
	logSummary(cfg, log, &sum)
	return sum, err
}

// caches are the result stores shared by all workers.
type caches struct {
	solve *ddcache.Store
	trace *ddcache.Store
}

// flush writes both stores. It must run after all workers have returned.
func (c caches) flush() (int, error) {
	n1, err1 := c.solve.Flush()
	n2, err2 := c.trace.Flush()
	return n1 + n2, errors.Join(err1, err2)
}

func newWorkers(cfg *config.Config, log *logging.Logger, deps Deps, c caches, n int) ([]*worker, error) {
	workers := make([]*worker, n)
	for i := range workers {
		wlog := log
		if n > 1 {
			var err error
			if wlog, err = log.ForWorker(i); err != nil {
				return nil, err
			}
		}
		workers[i] = &worker{
			id:     i,
			cfg:    cfg,
			log:    wlog,
			codecs: deps.Codecs,
			solver: deps.Solver,
			caches: c,
			th:     stats.NewThread(),
		}
	}
	return workers, nil
}

// run pulls tasks until the queue is drained or ctx is cancelled. Only a
// fatal error is returned; everything else was logged and counted.
func (w *worker) run(ctx context.Context, q *taskQueue) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		task, idx, ok := q.next()
		if !ok {
			return nil
		}
		w.log.Info("[%d/%d] %s", idx+1, q.len(), task.Input.Path)
		if err := w.process(ctx, task); err != nil {
			if fault.IsFatal(err) {
				return err
			}
			w.log.Error("%v", err)
		}
	}
}
