// core/diffsel/diffsel.go

// Package diffsel estimates differential selection: the log2 enrichment of
// each mutation relative to wildtype in a selected sample versus a
// mock-selected sample.
package diffsel

import (
	"fmt"
	"math"
	"sort"

	"dmsprefs-core/counts"
)

// Mut is one mutation's differential selection at one site. Value is NaN
// for the wildtype identity and for mutations masked by mincount.
type Mut struct {
	Site     string
	Wildtype string
	Mutation string
	Value    float64
}

// Site aggregates a site's mutation values (NaN treated as 0).
type Site struct {
	Site     string
	Abs      float64
	Positive float64
	Negative float64
	Max      float64
	Min      float64
}

// Compute returns mutdiffsel for every (site, mutation) pair, in table
// order. Pseudocounts are scaled by the depth ratio between samples so the
// shallower sample is not over-smoothed: the selected side adds
// P·max(1, Nsel/Nmock) and the mock side the mirror. An optional shared
// error-control table corrects both samples first. Mutations where neither
// sample reaches mincount are reported as NaN.
func Compute(sel, mock, errCtl *counts.Table, pseudocount float64, mincount int) ([]Mut, error) {
	if err := counts.Consistent(sel, mock, errCtl); err != nil {
		return nil, err
	}
	fsel, err := counts.Corrected(sel, errCtl)
	if err != nil {
		return nil, err
	}
	fmock, err := counts.Corrected(mock, errCtl)
	if err != nil {
		return nil, err
	}
	return ComputeCorrected(fsel, fmock, pseudocount, mincount)
}

// ComputeCorrected is Compute for already-corrected tables. Callers that
// collapse codon counts to amino acids must correct first and collapse the
// corrected tables, then call this.
func ComputeCorrected(sel, mock *counts.FloatTable, pseudocount float64, mincount int) ([]Mut, error) {
	if pseudocount <= 0 {
		return nil, fmt.Errorf("diffsel: pseudocount must be positive, got %g", pseudocount)
	}
	if len(sel.Rows) != len(mock.Rows) {
		return nil, fmt.Errorf("diffsel: selected and mock tables have %d and %d sites", len(sel.Rows), len(mock.Rows))
	}
	chars := sel.Chars

	var out []Mut
	for i, selRow := range sel.Rows {
		mockRow := mock.Rows[i]
		if selRow.Site != mockRow.Site || selRow.Wildtype != mockRow.Wildtype {
			return nil, fmt.Errorf("diffsel: site %s does not match mock site %s", selRow.Site, mockRow.Site)
		}

		nsel, nmock := selRow.Counts, mockRow.Counts
		nselTot, nmockTot := total(chars, nsel), total(chars, nmock)
		if nselTot <= 0 || nmockTot <= 0 {
			return nil, fmt.Errorf("diffsel: site %s has zero depth", selRow.Site)
		}

		pSel := pseudocount * math.Max(1, nselTot/nmockTot)
		pMock := pseudocount * math.Max(1, nmockTot/nselTot)
		wt := selRow.Wildtype
		wtSel := nsel[wt] + pSel
		wtMock := nmock[wt] + pMock

		for _, c := range chars {
			v := math.NaN()
			if c != wt && (nsel[c] >= float64(mincount) || nmock[c] >= float64(mincount)) {
				enrich := ((nsel[c] + pSel) / wtSel) / ((nmock[c] + pMock) / wtMock)
				v = math.Log2(enrich)
			}
			out = append(out, Mut{Site: selRow.Site, Wildtype: wt, Mutation: c, Value: v})
		}
	}
	return out, nil
}

func total(chars []string, m map[string]float64) float64 {
	s := 0.0
	for _, c := range chars {
		s += m[c]
	}
	return s
}

// SortOutput orders mutations for presentation: site order is preserved,
// within a site values descend, masked (NaN) entries last.
func SortOutput(muts []Mut) {
	rank := map[string]int{}
	for _, m := range muts {
		if _, ok := rank[m.Site]; !ok {
			rank[m.Site] = len(rank)
		}
	}
	sort.SliceStable(muts, func(i, j int) bool {
		if rank[muts[i].Site] != rank[muts[j].Site] {
			return rank[muts[i].Site] < rank[muts[j].Site]
		}
		vi, vj := muts[i].Value, muts[j].Value
		switch {
		case math.IsNaN(vi):
			return false
		case math.IsNaN(vj):
			return true
		default:
			return vi > vj
		}
	})
}

// ToSite summarizes mutdiffsel per site, treating NaN entries as 0, in the
// order sites first appear.
func ToSite(muts []Mut) []Site {
	var order []string
	bySite := map[string][]float64{}
	for _, m := range muts {
		if _, ok := bySite[m.Site]; !ok {
			order = append(order, m.Site)
		}
		v := m.Value
		if math.IsNaN(v) {
			v = 0
		}
		bySite[m.Site] = append(bySite[m.Site], v)
	}

	out := make([]Site, 0, len(order))
	for _, site := range order {
		vals := bySite[site]
		s := Site{Site: site, Max: math.Inf(-1), Min: math.Inf(1)}
		for _, v := range vals {
			s.Abs += math.Abs(v)
			if v >= 0 {
				s.Positive += v
			}
			if v <= 0 {
				s.Negative += v
			}
			if v > s.Max {
				s.Max = v
			}
			if v < s.Min {
				s.Min = v
			}
		}
		out = append(out, s)
	}
	return out
}
