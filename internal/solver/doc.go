// Package solver is the boundary to the external double-dummy solver.
//
// The pipeline never computes double-dummy results itself. It collects the
// cases the result cache is missing, splits them into batches no larger
// than the solver accepts, and hands each batch to a [Solver]. [Exec] runs
// a solver binary per batch with a timeout, and retries with smaller
// batches when the binary times out or reports an oversized batch.
//
// Wire protocol of the binary:
//
//	<bin> solve    stdin: one PBN deal per line
//	               stdout: one trick table per line, in input order
//	<bin> trace    stdin: one "<deal>\t<play>" per line
//	               stdout: one play trace per line, in input order
package solver
