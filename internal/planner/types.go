package planner

import "github.com/data-bridge/bridgeflow/internal/format"

// OutputSpec is one conversion target of a task.
type OutputSpec struct {
	Format format.Format
	Name   string // "<base>.<ext>", always set.
	Path   string // Empty when the output is never written to disk.

	// HasReference is set when a reference file with the same base name and
	// this output's format exists; ReferencePath then points at it.
	HasReference  bool
	ReferencePath string
}

// Task is one input file and its ordered outputs. Tasks are built once by
// [Plan] and only read afterwards.
type Task struct {
	Input format.FileRecord

	// DeleteOutputAfterUse is set when outputs are not kept by the caller;
	// they exist only for comparison and are removed afterwards.
	DeleteOutputAfterUse bool

	Outputs []OutputSpec
}

// Request describes what to plan.
type Request struct {
	Input     string // File or directory.
	Output    string // File, directory, or empty.
	Reference string // File, directory, or empty.

	// Formats lists the output formats in order; empty means [format.Defaults].
	Formats []format.Format
	// RefFormat restricts reference files to one format when not Unknown.
	RefFormat format.Format

	// Keep keeps written outputs. Without an Output path nothing is
	// written and Keep is ignored.
	Keep bool
}
