package refcheck

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// Ext is the extension of reference files.
const Ext = "ref"

// PathFor returns the reference file path of a source file.
func PathFor(src format.FileRecord) string {
	return filepath.Join(src.Dir(), src.Base+"."+Ext)
}

// Scan derives the baseline of a source file from its raw text.
func Scan(src format.FileRecord) (Baseline, error) {
	fh, err := os.Open(src.Path)
	if err != nil {
		return Baseline{}, err
	}
	defer fh.Close()

	hs, err := format.ScanHands(fh, src.Format)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{Lines: hs.Lines, Hands: len(hs.Marks), Boards: hs.Boards()}, nil
}

// Check runs reconciliation for one source file. A missing reference file
// yields the standard directive with validation enabled.
//
// A malformed reference file returns a [fault.ErrReference] error and no
// result. Counts that do not reconcile return the full result with
// Validate cleared together with a [*Mismatch]; the caller keeps processing.
// Edits are copied into the result only when withEdits is set.
func Check(src format.FileRecord, withEdits bool) (Result, error) {
	base, err := Scan(src)
	if err != nil {
		return Result{}, fault.File(src.Path, "reference", fault.ErrDecode, err)
	}
	res := Result{Directive: Standard, Validate: true, Baseline: base}

	refPath := PathFor(src)
	fh, err := os.Open(refPath)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return Result{}, fault.File(refPath, "reference", fault.ErrReference, err)
	}
	defer fh.Close()

	rf, err := Parse(fh)
	if err != nil {
		return Result{}, fault.File(refPath, "reference", fault.ErrReference, err)
	}

	res.Directive = rf.Directive
	res.Header = rf.Header
	res.HasComments = rf.Header != nil || len(rf.Edits) > 0
	if withEdits {
		res.Edits = rf.Edits
	}
	switch rf.Directive {
	case Skip:
		res.Skip = true
	case NoValidate:
		res.Validate = false
	case OrderCOCO:
		res.Order = record.OrderCOCO
	case OrderOOCC:
		res.Order = record.OrderOOCC
	}

	if err := reconcile(refPath, base, rf); err != nil {
		res.Validate = false
		return res, err
	}
	return res, nil
}

// reconcile compares the header annotation and every tag's summed edits
// with the baseline. Tags whose edits declare no counts are not checked.
func reconcile(path string, base Baseline, rf *File) error {
	actual := base.Count()

	if rf.Header != nil && rf.Header.Count != actual {
		return &Mismatch{Path: path, Tag: rf.Header.Tag, Declared: rf.Header.Count, Actual: actual}
	}

	ledger := rf.Ledger()
	tags := make([]string, 0, len(ledger))
	for tag := range ledger {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		var sum Count
		for _, e := range ledger[tag] {
			sum = sum.Add(e.Count)
		}
		if sum.IsZero() {
			continue
		}
		declared := sum
		if declared.Units > 0 {
			declared.Units = 1
		}
		if declared != actual {
			return &Mismatch{Path: path, Tag: tag, Declared: declared, Actual: actual}
		}
	}
	return nil
}
