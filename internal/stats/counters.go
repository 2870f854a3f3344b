package stats

import "github.com/data-bridge/bridgeflow/internal/format"

// Files counts what happened to input files and outputs.
type Files struct {
	Read         int
	DecodeFailed int
	Skipped      int // Skip directive.
	Written      int
	Bytes        int64 // Bytes of written outputs.
	EncodeFailed int
	Unsupported  int // Format pairs no codec can convert.
	Deleted      int
}

func (f *Files) Merge(o Files) {
	f.Read += o.Read
	f.DecodeFailed += o.DecodeFailed
	f.Skipped += o.Skipped
	f.Written += o.Written
	f.Bytes += o.Bytes
	f.EncodeFailed += o.EncodeFailed
	f.Unsupported += o.Unsupported
	f.Deleted += o.Deleted
}

// TagTally sums the corrections declared under one reference tag.
type TagTally struct {
	Edits  int
	Lines  int
	Hands  int
	Boards int
}

// Refs summarizes reference files.
type Refs struct {
	Files       int // Source files reconciled.
	Commented   int // With a header annotation or edits.
	Skips       int
	NoValidate  int
	Orders      int // Forced room order.
	Mismatches  int
	ParseErrors int
	Tags        map[string]TagTally
}

// AddTag folds one edit into the tally of tag.
func (r *Refs) AddTag(tag string, lines, hands, boards int) {
	if r.Tags == nil {
		r.Tags = make(map[string]TagTally)
	}
	t := r.Tags[tag]
	t.Edits++
	t.Lines += lines
	t.Hands += hands
	t.Boards += boards
	r.Tags[tag] = t
}

func (r *Refs) Merge(o Refs) {
	r.Files += o.Files
	r.Commented += o.Commented
	r.Skips += o.Skips
	r.NoValidate += o.NoValidate
	r.Orders += o.Orders
	r.Mismatches += o.Mismatches
	r.ParseErrors += o.ParseErrors
	for tag, v := range o.Tags {
		if r.Tags == nil {
			r.Tags = make(map[string]TagTally)
		}
		t := r.Tags[tag]
		t.Edits += v.Edits
		t.Lines += v.Lines
		t.Hands += v.Hands
		t.Boards += v.Boards
		r.Tags[tag] = t
	}
}

// Outcome counts output checks for one format.
type Outcome struct {
	Checked      int // Compared with a reference.
	Identical    int
	Different    int // Text differs from the reference.
	Structural   int // Hand or board count differs from the reference.
	Failed       int // Reference unreadable.
	RoundTrips   int
	RoundTripBad int
}

// Outcomes holds one Outcome per output format.
type Outcomes map[format.Format]Outcome

// Update applies fn to the outcome of f.
func (o Outcomes) Update(f format.Format, fn func(*Outcome)) {
	cur := o[f]
	fn(&cur)
	o[f] = cur
}

func (o Outcomes) Merge(p Outcomes) {
	for f, v := range p {
		o.Update(f, func(c *Outcome) {
			c.Checked += v.Checked
			c.Identical += v.Identical
			c.Different += v.Different
			c.Structural += v.Structural
			c.Failed += v.Failed
			c.RoundTrips += v.RoundTrips
			c.RoundTripBad += v.RoundTripBad
		})
	}
}

// Players counts player-name problems.
type Players struct {
	Instances int
	Missing   int // Seats without a name.
	Overlaps  int // One name in two seats of the same table.
}

func (p *Players) Merge(o Players) {
	p.Instances += o.Instances
	p.Missing += o.Missing
	p.Overlaps += o.Overlaps
}

// CacheCounts tracks one result cache.
type CacheCounts struct {
	Hits     int
	Misses   int
	Computed int // Results produced by the solver.
	Inserted int
}

// Cache tracks both result caches.
type Cache struct {
	Solve CacheCounts
	Trace CacheCounts
}

func (c *CacheCounts) merge(o CacheCounts) {
	c.Hits += o.Hits
	c.Misses += o.Misses
	c.Computed += o.Computed
	c.Inserted += o.Inserted
}

func (c *Cache) Merge(o Cache) {
	c.Solve.merge(o.Solve)
	c.Trace.merge(o.Trace)
}
