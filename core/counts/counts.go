// core/counts/counts.go
package counts

import (
	"fmt"
	"sort"
	"strconv"

	"dmsprefs-core/alphabet"
)

// Condition tags a count table by its role in the experiment.
type Condition string

const (
	CondPre     Condition = "pre"
	CondPost    Condition = "post"
	CondErrPre  Condition = "errpre"
	CondErrPost Condition = "errpost"
)

// ErrorModel selects how error-control tables are applied.
type ErrorModel string

const (
	ModelNone      ErrorModel = "none"
	ModelSame      ErrorModel = "same"
	ModelDifferent ErrorModel = "different"
)

// Row holds the counts for one site.
type Row struct {
	Site     string
	Wildtype string
	Counts   map[string]int
}

// Depth is the total count at the site over chars.
func (r Row) Depth(chars []string) int {
	n := 0
	for _, c := range chars {
		n += r.Counts[c]
	}
	return n
}

// Table is an ordered per-site count table over a fixed character set.
type Table struct {
	Chars []string
	Rows  []Row
}

// Sites returns the row sites in table order.
func (t *Table) Sites() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Site
	}
	return out
}

// IsCodon reports whether the table is at codon granularity.
func (t *Table) IsCodon() bool {
	for _, c := range t.Chars {
		if !alphabet.IsCodon(c) {
			return false
		}
	}
	return len(t.Chars) > 0
}

// siteKey splits a site identifier into a numeric prefix and a suffix
// so "2" sorts before "10" and "10A" between "10" and "11".
func siteKey(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

// SiteLess orders sites numerically when they carry integer prefixes,
// lexically otherwise.
func SiteLess(a, b string) bool {
	an, as, aok := siteKey(a)
	bn, bs, bok := siteKey(b)
	switch {
	case aok && bok:
		if an != bn {
			return an < bn
		}
		return as < bs
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// SortRows normalizes the table to natural site order.
func (t *Table) SortRows() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return SiteLess(t.Rows[i].Site, t.Rows[j].Site)
	})
}

// Validate checks structural invariants: unique sites, known wildtypes,
// and non-negative counts restricted to the table's character set.
func (t *Table) Validate() error {
	if len(t.Chars) == 0 {
		return fmt.Errorf("counts: empty character set")
	}
	inSet := make(map[string]bool, len(t.Chars))
	for _, c := range t.Chars {
		if inSet[c] {
			return fmt.Errorf("counts: duplicate character %q", c)
		}
		inSet[c] = true
	}
	seen := make(map[string]bool, len(t.Rows))
	for _, r := range t.Rows {
		if seen[r.Site] {
			return fmt.Errorf("counts: duplicate site %q", r.Site)
		}
		seen[r.Site] = true
		if !inSet[r.Wildtype] {
			return fmt.Errorf("counts: site %s wildtype %q not in character set", r.Site, r.Wildtype)
		}
		for c, n := range r.Counts {
			if !inSet[c] {
				return fmt.Errorf("counts: site %s has count for unknown character %q", r.Site, c)
			}
			if n < 0 {
				return fmt.Errorf("counts: site %s negative count for %q", r.Site, c)
			}
		}
	}
	return nil
}

// Consistent verifies that all tables share the identical ordered site set
// and per-site wildtype assignment. Tables must already be sorted.
func Consistent(tables ...*Table) error {
	var ref *Table
	for _, t := range tables {
		if t == nil {
			continue
		}
		if ref == nil {
			ref = t
			continue
		}
		if len(t.Rows) != len(ref.Rows) {
			return fmt.Errorf("counts: tables have %d and %d sites", len(ref.Rows), len(t.Rows))
		}
		for i := range t.Rows {
			if t.Rows[i].Site != ref.Rows[i].Site {
				return fmt.Errorf("counts: site mismatch at row %d: %q vs %q", i, ref.Rows[i].Site, t.Rows[i].Site)
			}
			if t.Rows[i].Wildtype != ref.Rows[i].Wildtype {
				return fmt.Errorf("counts: wildtype mismatch at site %s: %q vs %q",
					t.Rows[i].Site, ref.Rows[i].Wildtype, t.Rows[i].Wildtype)
			}
		}
	}
	return nil
}

// TrimTerminalStop drops the last site from every table when its wildtype
// is a stop codon (or the stop symbol). Tables must be consistent.
func TrimTerminalStop(tables ...*Table) bool {
	var ref *Table
	for _, t := range tables {
		if t != nil {
			ref = t
			break
		}
	}
	if ref == nil || len(ref.Rows) == 0 {
		return false
	}
	wt := ref.Rows[len(ref.Rows)-1].Wildtype
	if wt != alphabet.Stop && !alphabet.IsStopCodon(wt) {
		return false
	}
	for _, t := range tables {
		if t != nil && len(t.Rows) > 0 {
			t.Rows = t.Rows[:len(t.Rows)-1]
		}
	}
	return true
}
