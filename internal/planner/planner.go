package planner

import (
	"errors"
	"fmt"
	"os"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
)

// ErrNoInputs is returned when the input resolves to no hand-record files.
var ErrNoInputs = errors.New("no hand-record files found")

// Plan turns a request into the ordered task list.
//
// Flow:
//  1. Resolve inputs (single file or recursive scan, sorted)
//  2. Index reference files by base name
//  3. Expand every input into its outputs, in requested format order
//
// Planning problems are returned as [fault.ErrPlan] file errors; the caller
// runs an empty batch.
func Plan(req Request) ([]Task, error) {
	inputs, err := format.Discover(req.Input, format.Unknown)
	if err != nil {
		return nil, fault.File(req.Input, "plan", fault.ErrPlan, err)
	}
	if len(inputs) == 0 {
		return nil, fault.File(req.Input, "plan", fault.ErrPlan, ErrNoInputs)
	}

	refs, err := indexReferences(req.Reference, req.RefFormat)
	if err != nil {
		return nil, fault.File(req.Reference, "plan", fault.ErrPlan, err)
	}

	if single, ok := singleOutput(req.Output); ok {
		if len(inputs) != 1 {
			return nil, fault.File(req.Output, "plan", fault.ErrPlan,
				fmt.Errorf("output file given for %d inputs", len(inputs)))
		}
		f := outputFormat(single.Format, single.Base)
		out := OutputSpec{Format: f, Name: outputName(single.Base, f), Path: single.Path}
		refs.attach(&out, inputs[0].Base)
		return []Task{{
			Input:                inputs[0],
			DeleteOutputAfterUse: !req.Keep,
			Outputs:              []OutputSpec{out},
		}}, nil
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = format.Defaults
	}
	inputRoot := req.Input
	if fi, err := os.Stat(req.Input); err == nil && !fi.IsDir() {
		inputRoot = inputs[0].Dir()
	}

	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		t := Task{
			Input:                in,
			DeleteOutputAfterUse: req.Output == "" || !req.Keep,
			Outputs:              make([]OutputSpec, 0, len(formats)),
		}
		for _, f := range formats {
			f = outputFormat(f, in.Base)
			out := OutputSpec{Format: f, Name: outputName(in.Base, f)}
			if req.Output != "" {
				out.Path = outputPath(req.Output, inputRoot, in, f)
			}
			refs.attach(&out, in.Base)
			t.Outputs = append(t.Outputs, out)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// singleOutput reports whether path names one output file rather than a
// directory: it must not be an existing directory and must carry a
// hand-record extension.
func singleOutput(path string) (format.FileRecord, bool) {
	if path == "" {
		return format.FileRecord{}, false
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return format.FileRecord{}, false
	}
	return format.NewFileRecord(path)
}

// refIndex maps a base name to every reference file sharing it.
type refIndex map[string][]format.FileRecord

func indexReferences(root string, only format.Format) (refIndex, error) {
	idx := make(refIndex)
	if root == "" {
		return idx, nil
	}
	recs, err := format.Discover(root, only)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		idx[r.Base] = append(idx[r.Base], r)
	}
	return idx, nil
}

// attach marks out as having a reference when one with the same base name
// and format exists.
func (idx refIndex) attach(out *OutputSpec, base string) {
	for _, r := range idx[base] {
		if r.Format == out.Format {
			out.HasReference = true
			out.ReferencePath = r.Path
			return
		}
	}
}
