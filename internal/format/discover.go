package format

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// FileRecord describes one discovered hand-record file. It is derived once
// and never changes afterwards.
type FileRecord struct {
	Path   string
	Base   string // File name without directory and extension.
	Format Format
}

// Dir returns the directory holding the file.
func (r FileRecord) Dir() string { return filepath.Dir(r.Path) }

var reFileName = regexp.MustCompile(`^([^.]+)\.([A-Za-z]{3})$`)

// NewFileRecord classifies path. ok is false when the name is not of the form
// "<base>.<ext>" or the extension is not a hand-record format.
func NewFileRecord(path string) (rec FileRecord, ok bool) {
	m := reFileName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return FileRecord{}, false
	}
	f := FromExtension(m[2])
	if f == Unknown {
		return FileRecord{}, false
	}
	return FileRecord{
		Path:   path,
		Base:   m[1],
		Format: ClassifyLIN(f, m[1]),
	}, true
}

// Discover resolves root to hand-record files. A regular file is classified
// on its own; a directory is walked recursively. Files that do not look like
// hand records are skipped silently. When only is not Unknown, records of
// other formats are dropped (LIN dialects all match a LIN filter).
// The result is sorted by path so repeated scans agree.
func Discover(root string, only Format) ([]FileRecord, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	var recs []FileRecord
	keep := func(path string) {
		rec, ok := NewFileRecord(path)
		if !ok || !matches(rec.Format, only) {
			return
		}
		recs = append(recs, rec)
	}

	if !fi.IsDir() {
		keep(root)
		return recs, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			keep(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Path < recs[j].Path })
	return recs, nil
}

func matches(f, only Format) bool {
	if only == Unknown {
		return true
	}
	if only == LIN {
		return f.IsLIN()
	}
	return f == only
}
