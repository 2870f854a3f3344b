// Package pipeline runs a planned batch: it hands tasks to a fixed pool of
// workers, drives every task through the per-file stage sequence, and
// reduces the per-worker statistics once all workers are done.
//
// Stage sequence per task, each stage timed per (stage, format):
//
//	decode → reference check → [skip gate] → players → solve → trace →
//	text/valuation/pass stats → equality → outputs (encode, validate,
//	round-trip, delete) → digest
//
// A failing stage is logged and counted; the remaining stages of the task
// still run. Only invariant violations (a [fault.InvariantError], such as
// inserting a case the result cache already holds) stop the batch, and then
// no result cache is written.
//
// Result caches are flushed exactly once, after every worker has returned.
package pipeline
