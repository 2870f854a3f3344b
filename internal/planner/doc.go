// Package planner turns an input path, an optional output path and an
// optional reference path into the ordered task list the pipeline runs.
//
// Each task is one input file plus its outputs, one per requested format
// (or a single explicit output file). An output is linked to a reference
// file when one with the same base name and format exists. Planning is
// deterministic: the same tree and request always give the same tasks in
// the same order.
package planner
