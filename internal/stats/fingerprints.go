package stats

import "sort"

// Place is one occurrence of a deal.
type Place struct {
	File string
	Case string // Case id key, e.g. "1:7".
}

func (p Place) String() string { return p.File + ":" + p.Case }

// Fingerprints maps a canonical deal to every place it occurs in.
type Fingerprints map[string][]Place

// Add records one occurrence.
func (f Fingerprints) Add(fingerprint, file, caseKey string) {
	f[fingerprint] = append(f[fingerprint], Place{File: file, Case: caseKey})
}

func (f Fingerprints) Merge(o Fingerprints) {
	for k, v := range o {
		f[k] = append(f[k], v...)
	}
}

// Duplicate is one deal found in more than one file.
type Duplicate struct {
	Fingerprint string
	Places      []Place
}

// Duplicates returns deals occurring in at least two distinct files,
// sorted by fingerprint with places sorted by file, then case.
func (f Fingerprints) Duplicates() []Duplicate {
	var out []Duplicate
	for fp, places := range f {
		files := make(map[string]bool)
		for _, p := range places {
			files[p.File] = true
		}
		if len(files) < 2 {
			continue
		}
		ps := append([]Place(nil), places...)
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].File != ps[j].File {
				return ps[i].File < ps[j].File
			}
			return ps[i].Case < ps[j].Case
		})
		out = append(out, Duplicate{Fingerprint: fp, Places: ps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })
	return out
}
