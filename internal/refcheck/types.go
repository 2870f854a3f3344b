// Package refcheck reads the ".ref" companion of a hand-record file and
// proves that the corrections it declares still match the file.
//
// A reference file lists known, accepted discrepancies between a source file
// and its converted outputs. Each correction carries a tag and a count
// vector (lines, units, hands, boards). Counts are reconciled against a
// baseline taken from the raw source file, so an annotation goes stale
// loudly when the source file changes shape.
package refcheck

import (
	"fmt"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// Directive is the single control state of a reference file.
type Directive int

const (
	Standard   Directive = iota
	Skip                 // Do not process the file at all.
	NoValidate           // Process, but do not compare outputs with references.
	OrderCOCO            // Rooms appear closed-open, board by board.
	OrderOOCC            // Rooms appear grouped, all open then all closed.
)

var directiveWords = map[string]Directive{
	"skip":      Skip,
	"noval":     NoValidate,
	"orderCOCO": OrderCOCO,
	"orderOOCC": OrderOOCC,
}

func (d Directive) String() string {
	for w, v := range directiveWords {
		if v == d {
			return w
		}
	}
	return "standard"
}

// Count is the footprint of a correction, or of a whole file.
type Count struct {
	Lines  int
	Units  int
	Hands  int
	Boards int
}

// Add returns the component-wise sum.
func (c Count) Add(o Count) Count {
	return Count{
		Lines:  c.Lines + o.Lines,
		Units:  c.Units + o.Units,
		Hands:  c.Hands + o.Hands,
		Boards: c.Boards + o.Boards,
	}
}

// IsZero reports whether nothing was declared.
func (c Count) IsZero() bool { return c == Count{} }

func (c Count) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", c.Lines, c.Units, c.Hands, c.Boards)
}

// Baseline is the real structure of a source file.
type Baseline struct {
	Lines  int
	Hands  int
	Boards int
}

// Count expresses the baseline as a one-unit count vector.
func (b Baseline) Count() Count {
	return Count{Lines: b.Lines, Units: 1, Hands: b.Hands, Boards: b.Boards}
}

// Annotation is a tagged count, as written between braces.
type Annotation struct {
	Tag   string
	Count Count
}

// Edit is one declared correction.
type Edit struct {
	Line   int    // Line number inside the reference file.
	Action string // replace, insert or delete.
	Format string // Optional dialect qualifier, e.g. "LIN" in "replaceLIN".
	Args   string
	Annotation
}

// Ledger groups edits by tag.
type Ledger map[string][]Edit

// Mismatch reports declared counts that disagree with the source file.
type Mismatch struct {
	Path     string
	Tag      string
	Declared Count
	Actual   Count
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: %s %s: declared %s, file has %s",
		m.Path, fault.ErrReconcile, m.Tag, m.Declared, m.Actual)
}

func (m *Mismatch) Unwrap() error { return fault.ErrReconcile }

// Result is what the pipeline needs to know about one source file.
type Result struct {
	Directive   Directive
	HasComments bool
	Skip        bool
	Validate    bool
	Order       record.Order // Forced order, or OrderUnknown when inference is needed.
	Baseline    Baseline
	Header      *Annotation
	Edits       []Edit // Only filled when requested.
}

// ResolveOrder returns the forced room order, or infers it from ids.
func (r Result) ResolveOrder(ids []record.CaseID) record.Order {
	if r.Order != record.OrderUnknown {
		return r.Order
	}
	return record.InferOrder(ids)
}
