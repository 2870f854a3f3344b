package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/data-bridge/bridgeflow/internal/codec"
	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/planner"
	"github.com/data-bridge/bridgeflow/internal/record"
	"github.com/data-bridge/bridgeflow/internal/refcheck"
	"github.com/data-bridge/bridgeflow/internal/stats"
)

// maxDiffLen bounds the diff quoted in a validation warning.
const maxDiffLen = 600

// output encodes tour as out, writes it when the plan gives a path, then
// validates and compares it. Outputs the caller does not keep are removed.
func (w *worker) output(task *planner.Task, out *planner.OutputSpec, tour *record.Tournament, ref refcheck.Result) {
	in := task.Input

	var text string
	var err error
	w.th.Timers.Time(stats.StageEncode, out.Format, func() {
		text, err = w.codecs.Encode(tour, out.Format)
	})
	switch {
	case errors.Is(err, codec.ErrUnsupported):
		w.th.Files.Unsupported++
		w.log.Debug(w.cfg.Verbose, "  %s -> %s: %v", in.Format, out.Format, err)
		return
	case err != nil:
		w.th.Files.EncodeFailed++
		w.log.Error("%v", fault.File(in.Path, "encode "+out.Format.String(), fault.ErrEncode, err))
		return
	}

	if out.Path != "" {
		if err := writeOutput(out.Path, text); err != nil {
			w.th.Files.EncodeFailed++
			w.log.Error("%v", fault.File(out.Path, "write", fault.ErrEncode, err))
			return
		}
		w.th.Files.Written++
		w.th.Files.Bytes += int64(len(text))
		w.log.Debug(w.cfg.Verbose, "  Wrote %s", out.Path)
	}

	if out.HasReference && w.cfg.ValidateRefs && ref.Validate {
		w.th.Timers.Time(stats.StageValidate, out.Format, func() { w.validate(in, out, text) })
	}
	if w.cfg.Compare && sameFamily(in.Format, out.Format) {
		w.th.Timers.Time(stats.StageCompare, out.Format, func() { w.compare(out, text, tour) })
	}

	if task.DeleteOutputAfterUse && out.Path != "" {
		if err := os.Remove(out.Path); err != nil {
			w.log.Warn("  Cannot remove %s: %v", out.Path, err)
			return
		}
		w.th.Files.Deleted++
	}
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

func sameFamily(a, b format.Format) bool {
	return a == b || (a.IsLIN() && b.IsLIN())
}

// validate compares an output with its reference file. A textual difference
// and a structural one (hand or board count) are counted apart.
func (w *worker) validate(in format.FileRecord, out *planner.OutputSpec, text string) {
	data, err := os.ReadFile(out.ReferencePath)
	if err != nil {
		w.th.Validation.Update(out.Format, func(o *stats.Outcome) { o.Checked++; o.Failed++ })
		w.log.Error("%v", fault.File(out.ReferencePath, "validate", fault.ErrValidate, err))
		return
	}
	want := string(data)

	if normalizeLines(want) == normalizeLines(text) {
		w.th.Validation.Update(out.Format, func(o *stats.Outcome) { o.Checked++; o.Identical++ })
		return
	}

	structural := false
	got, errGot := format.ScanHands(strings.NewReader(text), out.Format)
	ref, errRef := format.ScanHands(strings.NewReader(want), out.Format)
	if errGot == nil && errRef == nil {
		structural = len(got.Marks) != len(ref.Marks) || got.Boards() != ref.Boards()
	}

	w.th.Validation.Update(out.Format, func(o *stats.Outcome) {
		o.Checked++
		if structural {
			o.Structural++
		} else {
			o.Different++
		}
	})

	diff := cmp.Diff(strings.Split(normalizeLines(want), "\n"), strings.Split(normalizeLines(text), "\n"))
	if len(diff) > maxDiffLen {
		diff = diff[:maxDiffLen] + "\n..."
	}
	w.log.Warn("  %v (-reference +output):\n%s",
		fault.File(in.Path, "validate "+out.Format.String(), fault.ErrValidate, nil), diff)
}

// normalizeLines drops carriage returns and trailing blank lines.
func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, "\n")
}

// roundTripOptions ignore what only the pipeline fills in.
var roundTripOptions = cmp.Options{
	cmpopts.IgnoreFields(record.Board{}, "DDTable"),
	cmpopts.IgnoreFields(record.Instance{}, "Trace"),
	cmpopts.IgnoreFields(record.Tournament{}, "Source", "Order"),
	cmpopts.EquateEmpty(),
}

// compare decodes an output again and checks it describes the same
// tournament as the input.
func (w *worker) compare(out *planner.OutputSpec, text string, tour *record.Tournament) {
	path := out.Path
	if path == "" {
		dir, err := os.MkdirTemp("", "bridgeflow-compare-")
		if err != nil {
			w.log.Warn("  Compare: %v", err)
			return
		}
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, out.Name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			w.log.Warn("  Compare: %v", err)
			return
		}
	}

	back, err := w.codecs.Decode(path, out.Format)
	var diff string
	if err == nil {
		diff = cmp.Diff(tour, back, roundTripOptions)
	}
	w.th.Validation.Update(out.Format, func(o *stats.Outcome) {
		o.RoundTrips++
		if err != nil || diff != "" {
			o.RoundTripBad++
		}
	})
	switch {
	case err != nil:
		w.log.Warn("  Compare %s: %v", out.Name, err)
	case diff != "":
		if len(diff) > maxDiffLen {
			diff = diff[:maxDiffLen] + "\n..."
		}
		w.log.Warn("  Compare %s differs after round trip (-input +output):\n%s", out.Name, diff)
	}
}
