// core/counts/correct.go
package counts

import (
	"fmt"

	"dmsprefs-core/alphabet"
)

// CorrectedCounts adjusts one site's raw counts for sequencing/PCR error
// using the matching error-control row. For every character x other than
// the wildtype the observed rate is reduced by the error rate,
//
//	n'(x) = max(0, N·(n(x)/N − nerr(x)/Nerr)),
//
// and the wildtype count is rescaled by the error table's wildtype
// retention, n'(wt) = n(wt) / (nerr(wt)/Nerr). A zero wildtype count in
// the error control is a data error.
func CorrectedCounts(chars []string, obs, errCtl Row) (map[string]float64, error) {
	n := float64(obs.Depth(chars))
	nerr := float64(errCtl.Depth(chars))
	if n <= 0 {
		return nil, fmt.Errorf("counts: site %s has zero depth", obs.Site)
	}
	if nerr <= 0 {
		return nil, fmt.Errorf("counts: site %s has zero error-control depth", obs.Site)
	}
	wtEps := float64(errCtl.Counts[obs.Wildtype]) / nerr
	if wtEps <= 0 {
		return nil, fmt.Errorf("counts: site %s error control has zero wildtype count", obs.Site)
	}
	out := make(map[string]float64, len(chars))
	for _, c := range chars {
		if c == obs.Wildtype {
			out[c] = float64(obs.Counts[c]) / wtEps
			continue
		}
		eps := float64(errCtl.Counts[c]) / nerr
		v := n * (float64(obs.Counts[c])/n - eps)
		if v < 0 {
			v = 0
		}
		out[c] = v
	}
	return out, nil
}

// RawCounts returns one site's counts as float64s without correction.
func RawCounts(chars []string, obs Row) map[string]float64 {
	out := make(map[string]float64, len(chars))
	for _, c := range chars {
		out[c] = float64(obs.Counts[c])
	}
	return out
}

// FloatRow is one site's counts after error correction.
type FloatRow struct {
	Site     string
	Wildtype string
	Counts   map[string]float64
}

// FloatTable holds corrected counts at the granularity of Chars.
type FloatTable struct {
	Chars []string
	Rows  []FloatRow
}

// IsCodon reports whether the table is at codon granularity.
func (t *FloatTable) IsCodon() bool {
	for _, c := range t.Chars {
		if !alphabet.IsCodon(c) {
			return false
		}
	}
	return len(t.Chars) > 0
}

// Corrected converts a table to float counts, applying the error-control
// correction row by row when errCtl is non-nil. Tables must already be
// sorted and consistent.
func Corrected(obs, errCtl *Table) (*FloatTable, error) {
	out := &FloatTable{Chars: append([]string(nil), obs.Chars...)}
	for i, r := range obs.Rows {
		var (
			m   map[string]float64
			err error
		)
		if errCtl == nil {
			m = RawCounts(obs.Chars, r)
		} else {
			m, err = CorrectedCounts(obs.Chars, r, errCtl.Rows[i])
			if err != nil {
				return nil, err
			}
		}
		out.Rows = append(out.Rows, FloatRow{Site: r.Site, Wildtype: r.Wildtype, Counts: m})
	}
	return out, nil
}
