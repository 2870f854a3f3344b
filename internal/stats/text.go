package stats

import "strings"

// FieldStat describes the values seen for one text field.
type FieldStat struct {
	Count    int
	TotalLen int
	MaxLen   int
	Longest  string // Longest value; ties go to the smaller string.
}

// Text holds one FieldStat per field name ("event", "player", ...).
type Text map[string]FieldStat

// Add records one value of field. Empty values are ignored.
func (t Text) Add(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	t.merge(field, FieldStat{Count: 1, TotalLen: len(value), MaxLen: len(value), Longest: value})
}

func (t Text) merge(field string, v FieldStat) {
	cur := t[field]
	cur.Count += v.Count
	cur.TotalLen += v.TotalLen
	if v.MaxLen > cur.MaxLen || (v.MaxLen == cur.MaxLen && v.Longest < cur.Longest) || cur.Longest == "" {
		cur.MaxLen = v.MaxLen
		cur.Longest = v.Longest
	}
	t[field] = cur
}

func (t Text) Merge(o Text) {
	for field, v := range o {
		t.merge(field, v)
	}
}

// MaxHCP is the most high-card points one hand can hold.
const MaxHCP = 37

// Values is a histogram of high-card points per hand.
type Values struct {
	Hands int
	HCP   [MaxHCP + 1]int
}

// Add records the points of one hand.
func (v *Values) Add(hcp int) {
	if hcp < 0 || hcp > MaxHCP {
		return
	}
	v.Hands++
	v.HCP[hcp]++
}

func (v *Values) Merge(o Values) {
	v.Hands += o.Hands
	for i, n := range o.HCP {
		v.HCP[i] += n
	}
}

// Passes records, for each position before the opening bid (first to
// fourth hand), how often a hand with a given point count was called on
// and how often it passed.
type Passes struct {
	Seen   [4][MaxHCP + 1]int
	Passed [4][MaxHCP + 1]int
}

// Add records one call at position pos by a hand with hcp points.
func (p *Passes) Add(pos, hcp int, passed bool) {
	if pos < 0 || pos > 3 || hcp < 0 || hcp > MaxHCP {
		return
	}
	p.Seen[pos][hcp]++
	if passed {
		p.Passed[pos][hcp]++
	}
}

// Rate is the pass rate at pos with hcp points, or -1 without data.
func (p *Passes) Rate(pos, hcp int) float64 {
	if p.Seen[pos][hcp] == 0 {
		return -1
	}
	return float64(p.Passed[pos][hcp]) / float64(p.Seen[pos][hcp])
}

func (p *Passes) Merge(o Passes) {
	for pos := range o.Seen {
		for h := range o.Seen[pos] {
			p.Seen[pos][h] += o.Seen[pos][h]
			p.Passed[pos][h] += o.Passed[pos][h]
		}
	}
}
