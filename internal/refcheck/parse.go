package refcheck

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// File is a parsed reference file.
type File struct {
	Directive Directive
	Header    *Annotation
	Edits     []Edit
}

var (
	reControl    = regexp.MustCompile(`^(skip|noval|orderCOCO|orderOOCC)(?:\s+(\{.*\}))?\s*$`)
	reEdit       = regexp.MustCompile(`^(replace|insert|delete)([A-Z]{3})?\s+(.*?)\s*(\{[^{}]*\})\s*$`)
	reAnnotation = regexp.MustCompile(`^\{([A-Z][A-Z0-9_]*)(?:\((\d+),(\d+),(\d+),(\d+)\))?\}$`)
)

// Parse reads a reference file. Blank lines and lines starting with '%' are
// ignored. The first control line sets the directive; a second one, or any
// line that is neither a control line nor a tagged edit, is an error.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	directiveSet := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		if m := reControl.FindStringSubmatch(line); m != nil {
			if directiveSet {
				return nil, fmt.Errorf("line %d: second control line %q", lineNo, m[1])
			}
			directiveSet = true
			f.Directive = directiveWords[m[1]]
			if m[2] != "" {
				a, err := parseAnnotation(m[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				f.Header = &a
			}
			continue
		}

		m := reEdit.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: not a control or edit line: %q", lineNo, line)
		}
		a, err := parseAnnotation(m[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		f.Edits = append(f.Edits, Edit{
			Line:       lineNo,
			Action:     m[1],
			Format:     m[2],
			Args:       m[3],
			Annotation: a,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseAnnotation reads "{TAG}" or "{TAG(lines,units,hands,boards)}".
func parseAnnotation(s string) (Annotation, error) {
	m := reAnnotation.FindStringSubmatch(s)
	if m == nil {
		return Annotation{}, fmt.Errorf("malformed annotation %q", s)
	}
	a := Annotation{Tag: m[1]}
	if m[2] != "" {
		a.Count = Count{
			Lines:  atoi(m[2]),
			Units:  atoi(m[3]),
			Hands:  atoi(m[4]),
			Boards: atoi(m[5]),
		}
	}
	return a, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Ledger groups the file's edits by tag, keeping file order within a tag.
func (f *File) Ledger() Ledger {
	l := make(Ledger)
	for _, e := range f.Edits {
		l[e.Tag] = append(l[e.Tag], e)
	}
	return l
}
