// Package ddcache stores double-dummy analyses (trick tables and play
// traces) that were computed by the external solver, so that a later run
// over the same files only solves what is new.
//
// Results are partitioned by the directory of the source file. Each
// directory has one backing log per cache kind ("solve.ddc", "trace.ddc")
// that is read the first time a file of that directory is processed and
// rewritten once, at the end of the run, only if something was added.
//
// Inside a directory, results are grouped by the source file's base name and
// then by case id. Values live in an append-only arena; a [Handle] stays
// valid for the whole run no matter how many files or cases are added later.
package ddcache
