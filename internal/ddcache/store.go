package ddcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// Kind selects which analysis a store holds.
type Kind int

const (
	KindSolve Kind = iota // Per-board trick tables.
	KindTrace             // Per-table play traces.
)

func (k Kind) String() string {
	if k == KindTrace {
		return "trace"
	}
	return "solve"
}

// FileName is the name of the backing log inside each directory.
func (k Kind) FileName() string { return k.String() + ".ddc" }

// Handle refers to one cached value. The zero Handle is empty.
type Handle struct {
	dc  *dirCache
	idx int
}

// Value returns the cached analysis string.
func (h Handle) Value() string {
	if h.dc == nil {
		return ""
	}
	h.dc.mu.RLock()
	defer h.dc.mu.RUnlock()
	return h.dc.arena[h.idx]
}

// Hit is one case found in the cache.
type Hit struct {
	Case   record.CaseID
	Handle Handle
}

// dirCache holds every bucket of one directory. mu guards all fields, so an
// insert and its dirty flag are always published together.
type dirCache struct {
	mu      sync.RWMutex
	path    string
	loaded  bool
	dirty   bool
	buckets map[string]map[record.CaseID]int // file base -> case -> arena index
	arena   []string
}

// Store is the cache of one kind across all directories of a run. All
// methods are safe for concurrent use.
type Store struct {
	kind    Kind
	mu      sync.Mutex
	dirs    map[string]*dirCache
	flushed atomic.Bool
}

// NewStore returns an empty store of the given kind.
func NewStore(kind Kind) *Store {
	return &Store{kind: kind, dirs: make(map[string]*dirCache)}
}

// Kind returns the store's kind.
func (s *Store) Kind() Kind { return s.kind }

func (s *Store) dir(dir string) *dirCache {
	dir = filepath.Clean(dir)
	s.mu.Lock()
	defer s.mu.Unlock()
	dc, ok := s.dirs[dir]
	if !ok {
		dc = &dirCache{
			path:    filepath.Join(dir, s.kind.FileName()),
			buckets: make(map[string]map[record.CaseID]int),
		}
		s.dirs[dir] = dc
	}
	return dc
}

// Load reads the backing log of dir. It is idempotent: only the first call
// per directory touches the disk. A missing log is an empty cache. Malformed
// records are dropped and reported in the returned error; the well-formed
// ones are kept either way.
func (s *Store) Load(dir string) error {
	dc := s.dir(dir)
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.loaded {
		return nil
	}

	data, err := os.ReadFile(dc.path)
	if errors.Is(err, os.ErrNotExist) {
		dc.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache %s: %w", dc.path, err)
	}
	dc.loaded = true

	recs, bad := decodeLog(string(data))
	for _, r := range recs {
		b := dc.bucket(r.file)
		if _, dup := b[r.id]; dup {
			bad++
			continue
		}
		b[r.id] = len(dc.arena)
		dc.arena = append(dc.arena, r.value)
	}
	if bad > 0 {
		return fmt.Errorf("%w: %s: %d malformed record(s) dropped", ErrCorrupt, dc.path, bad)
	}
	return nil
}

// ErrCorrupt reports malformed records in a backing log.
var ErrCorrupt = errors.New("corrupt cache log")

func (dc *dirCache) bucket(file string) map[record.CaseID]int {
	b, ok := dc.buckets[file]
	if !ok {
		b = make(map[record.CaseID]int)
		dc.buckets[file] = b
	}
	return b
}

// Lookup splits ids into those already cached for file and those missing.
// missing keeps the order of ids.
func (s *Store) Lookup(dir, file string, ids []record.CaseID) (found []Hit, missing []record.CaseID) {
	dc := s.dir(dir)
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	b := dc.buckets[file]
	for _, id := range ids {
		if idx, ok := b[id]; ok {
			found = append(found, Hit{Case: id, Handle: Handle{dc: dc, idx: idx}})
			continue
		}
		missing = append(missing, id)
	}
	return found, missing
}

// Insert adds newly computed values for file and marks the directory dirty.
// Callers may only insert ids that Lookup reported missing; inserting a
// cached id, a value that cannot be stored in the log, or mismatched slices
// is an invariant violation and nothing is inserted.
func (s *Store) Insert(dir, file string, ids []record.CaseID, values []string) ([]Handle, error) {
	handles, _, err := s.insert(dir, file, ids, values, false)
	return handles, err
}

// InsertMissing is Insert for callers that computed ids outside the lock.
// An id cached since the caller's Lookup keeps its first value, and its
// existing handle is returned in place; raced counts those ids. Every other
// Insert invariant still applies.
func (s *Store) InsertMissing(dir, file string, ids []record.CaseID, values []string) (handles []Handle, raced int, err error) {
	return s.insert(dir, file, ids, values, true)
}

func (s *Store) insert(dir, file string, ids []record.CaseID, values []string, tolerant bool) ([]Handle, int, error) {
	if len(ids) != len(values) {
		return nil, 0, fault.Invariantf("%s cache insert for %s: %d ids, %d values", s.kind, file, len(ids), len(values))
	}
	if file == "" || strings.ContainsAny(file, "\t\n") {
		return nil, 0, fault.Invariantf("%s cache insert: bad file name %q", s.kind, file)
	}
	if s.flushed.Load() {
		return nil, 0, fault.Invariantf("%s cache insert for %s after flush", s.kind, file)
	}

	dc := s.dir(dir)
	dc.mu.Lock()
	defer dc.mu.Unlock()

	b := dc.buckets[file]
	seen := make(map[record.CaseID]bool, len(ids))
	raced := 0
	for i, id := range ids {
		if seen[id] {
			return nil, 0, fault.Invariantf("%s cache: case %s of %s inserted twice", s.kind, id, file)
		}
		if _, ok := b[id]; ok {
			if !tolerant {
				return nil, 0, fault.Invariantf("%s cache: case %s of %s already cached", s.kind, id, file)
			}
			raced++
		}
		if strings.ContainsAny(values[i], "\t\n") {
			return nil, 0, fault.Invariantf("%s cache: value for case %s of %s is not a single line", s.kind, id, file)
		}
		seen[id] = true
	}

	b = dc.bucket(file)
	handles := make([]Handle, len(ids))
	added := 0
	for i, id := range ids {
		if idx, ok := b[id]; ok {
			handles[i] = Handle{dc: dc, idx: idx}
			continue
		}
		b[id] = len(dc.arena)
		handles[i] = Handle{dc: dc, idx: len(dc.arena)}
		dc.arena = append(dc.arena, values[i])
		added++
	}
	if added > 0 {
		dc.dirty = true
	}
	return handles, raced, nil
}

// Flush rewrites the backing log of every dirty directory and returns how
// many logs were written. Clean directories are never touched. Flush must
// run once, after every worker has stopped inserting.
func (s *Store) Flush() (int, error) {
	if s.flushed.Swap(true) {
		return 0, fault.Invariantf("%s cache flushed twice", s.kind)
	}

	s.mu.Lock()
	dirs := make([]*dirCache, 0, len(s.dirs))
	for _, dc := range s.dirs {
		dirs = append(dirs, dc)
	}
	s.mu.Unlock()
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].path < dirs[j].path })

	written := 0
	var errs []error
	for _, dc := range dirs {
		dc.mu.Lock()
		if dc.dirty {
			if err := writeLog(dc.path, s.kind, dc.records()); err != nil {
				errs = append(errs, err)
			} else {
				dc.dirty = false
				written++
			}
		}
		dc.mu.Unlock()
	}
	return written, errors.Join(errs...)
}

// Size returns the number of cached values across all directories.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, dc := range s.dirs {
		dc.mu.RLock()
		n += len(dc.arena)
		dc.mu.RUnlock()
	}
	return n
}

func (dc *dirCache) records() []logRecord {
	recs := make([]logRecord, 0, len(dc.arena))
	for file, b := range dc.buckets {
		for id, idx := range b {
			recs = append(recs, logRecord{file: file, id: id, value: dc.arena[idx]})
		}
	}
	return recs
}
