package planner

import (
	"path/filepath"
	"strings"

	"github.com/data-bridge/bridgeflow/internal/format"
)

// outputFormat returns the concrete format of an output of in, applying the
// same LIN dialect heuristic that classifies inputs.
func outputFormat(f format.Format, base string) format.Format {
	if f.IsLIN() {
		return format.ClassifyLIN(format.LIN, base)
	}
	return f
}

// outputName builds "<base>.<ext>".
func outputName(base string, f format.Format) string {
	return base + "." + f.Ext()
}

// outputPath places an output under outputDir, mirroring the input's
// position below inputRoot so that equal base names in different
// subdirectories do not collide.
//
//	<outputDir>/<relative dir of input>/<base>.<ext>
func outputPath(outputDir, inputRoot string, in format.FileRecord, f format.Format) string {
	rel, err := filepath.Rel(inputRoot, in.Dir())
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		rel = ""
	}
	return filepath.Join(outputDir, rel, outputName(in.Base, f))
}
