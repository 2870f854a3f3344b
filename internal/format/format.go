// Package format enumerates the hand-record dialects, maps file extensions to
// them, and discovers hand-record files on disk.
package format

import (
	"fmt"
	"regexp"
	"strings"
)

// Format identifies one textual hand-record dialect.
type Format int

const (
	Unknown Format = iota
	LIN            // Generic LIN.
	LINRP          // LIN as exported per room/segment ("o01abc").
	LINVG          // Vugraph LIN archive (purely numeric base name).
	LINTRN         // Tournament LIN export ("Tournament…").
	PBN
	RBN
	RBX
	TXT
	EML
	REC
)

var names = map[Format]string{
	LIN:    "LIN",
	LINRP:  "LIN_RP",
	LINVG:  "LIN_VG",
	LINTRN: "LIN_TRN",
	PBN:    "PBN",
	RBN:    "RBN",
	RBX:    "RBX",
	TXT:    "TXT",
	EML:    "EML",
	REC:    "REC",
}

// byExtension maps a lower-case extension (without dot) to its format. The
// LIN sub-dialects share ".lin" and are told apart by [ClassifyLIN].
var byExtension = map[string]Format{
	"lin": LIN,
	"pbn": PBN,
	"rbn": RBN,
	"rbx": RBX,
	"txt": TXT,
	"eml": EML,
	"rec": REC,
}

// Defaults is the output format list used when none is requested explicitly.
var Defaults = []Format{LIN, PBN, RBN, RBX, TXT, EML, REC}

func (f Format) String() string {
	if s, ok := names[f]; ok {
		return s
	}
	return "UNKNOWN"
}

// Ext returns the canonical file extension (without dot). Every LIN dialect
// is written as ".lin".
func (f Format) Ext() string {
	if f.IsLIN() {
		return "lin"
	}
	if f == Unknown {
		return ""
	}
	return strings.ToLower(f.String())
}

// IsLIN reports whether f is LIN or one of its sub-dialects.
func (f Format) IsLIN() bool {
	switch f {
	case LIN, LINRP, LINVG, LINTRN:
		return true
	}
	return false
}

// Parse accepts a format name ("pbn", "LIN_VG") or a bare extension.
func Parse(s string) (Format, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for f, n := range names {
		if n == u {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown format %q", s)
}

// ParseList parses a comma-separated format list, keeping the given order and
// dropping repeats.
func ParseList(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// FromExtension maps an extension (with or without the leading dot, any case)
// to a format. Unknown is returned for unrecognized extensions.
func FromExtension(ext string) Format {
	return byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

var (
	reNumericBase = regexp.MustCompile(`^\d+$`)
	reRoomBase    = regexp.MustCompile(`^[oc]?\d{2}[A-Za-z]{3}$`)
)

// ClassifyLIN refines a plain LIN format by the shape of the base name:
// purely numeric names are vugraph archives, "Tournament…" names are
// tournament exports, and "[room]NNabc" names are per-room exports.
// Formats other than LIN are returned unchanged.
func ClassifyLIN(f Format, base string) Format {
	if f != LIN {
		return f
	}
	switch {
	case reNumericBase.MatchString(base):
		return LINVG
	case strings.HasPrefix(base, "Tournament"):
		return LINTRN
	case reRoomBase.MatchString(base):
		return LINRP
	}
	return LIN
}
