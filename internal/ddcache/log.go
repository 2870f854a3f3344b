package ddcache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/data-bridge/bridgeflow/internal/record"
)

const logHeader = "# bridgeflow result cache v1"

// logRecord is one line of a backing log:
//
//	<file base> TAB <case key> TAB <value>
type logRecord struct {
	file  string
	id    record.CaseID
	value string
}

// decodeLog parses a backing log. Blank and '#' lines are skipped; lines
// that are not well-formed records are counted in bad.
func decodeLog(data string) (recs []logRecord, bad int) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 || parts[0] == "" {
			bad++
			continue
		}
		id, err := record.ParseCaseID(parts[1])
		if err != nil {
			bad++
			continue
		}
		recs = append(recs, logRecord{file: parts[0], id: id, value: parts[2]})
	}
	return recs, bad
}

// sortRecords orders records by file, then segment, board and room, so the
// log content does not depend on insertion order.
func sortRecords(recs []logRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.file != b.file {
			return a.file < b.file
		}
		if a.id.Segment != b.id.Segment {
			return a.id.Segment < b.id.Segment
		}
		if a.id.Board != b.id.Board {
			return a.id.Board < b.id.Board
		}
		return a.id.Room < b.id.Room
	})
}

// writeLog replaces path atomically: records go to a temporary file in the
// same directory which is then renamed over the old log.
func writeLog(path string, kind Kind, recs []logRecord) error {
	sortRecords(recs)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+kind.FileName()+".*")
	if err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s %s\n", logHeader, kind)
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.file, r.id.Key(), r.value)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	return nil
}
