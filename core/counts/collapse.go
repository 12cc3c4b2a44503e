// core/counts/collapse.go
package counts

import (
	"fmt"

	"dmsprefs-core/alphabet"
)

// CollapseToAA converts a codon-granularity table to amino-acid granularity
// by summing counts of codons that translate to the same amino acid.
// When withStop is false, stop-codon counts are discarded; a wildtype stop
// at a non-terminal site is a data error (use TrimTerminalStop first).
func CollapseToAA(t *Table, withStop bool) (*Table, error) {
	if !t.IsCodon() {
		return nil, fmt.Errorf("counts: collapse requires codon granularity, got %d chars", len(t.Chars))
	}
	chars := alphabet.AminoAcids
	if withStop {
		chars = alphabet.AminoAcidsWithStop
	}
	out := &Table{Chars: append([]string(nil), chars...)}
	for _, r := range t.Rows {
		wt, ok := alphabet.Translate(r.Wildtype)
		if !ok {
			return nil, fmt.Errorf("counts: site %s wildtype %q is not a codon", r.Site, r.Wildtype)
		}
		if wt == alphabet.Stop && !withStop {
			return nil, fmt.Errorf("counts: site %s has stop wildtype but stop is excluded", r.Site)
		}
		nr := Row{Site: r.Site, Wildtype: wt, Counts: make(map[string]int, len(chars))}
		for codon, n := range r.Counts {
			aa, ok := alphabet.Translate(codon)
			if !ok {
				return nil, fmt.Errorf("counts: site %s has non-codon character %q", r.Site, codon)
			}
			if aa == alphabet.Stop && !withStop {
				continue
			}
			nr.Counts[aa] += n
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// CollapseToAA converts a corrected codon-granularity table to amino-acid
// granularity. Correction must already have happened at codon granularity:
// the per-codon clamping and wildtype rescaling do not commute with summing
// synonymous codons.
func (t *FloatTable) CollapseToAA(withStop bool) (*FloatTable, error) {
	if !t.IsCodon() {
		return nil, fmt.Errorf("counts: collapse requires codon granularity, got %d chars", len(t.Chars))
	}
	chars := alphabet.AminoAcids
	if withStop {
		chars = alphabet.AminoAcidsWithStop
	}
	out := &FloatTable{Chars: append([]string(nil), chars...)}
	for _, r := range t.Rows {
		wt, ok := alphabet.Translate(r.Wildtype)
		if !ok {
			return nil, fmt.Errorf("counts: site %s wildtype %q is not a codon", r.Site, r.Wildtype)
		}
		if wt == alphabet.Stop && !withStop {
			return nil, fmt.Errorf("counts: site %s has stop wildtype but stop is excluded", r.Site)
		}
		nr := FloatRow{Site: r.Site, Wildtype: wt, Counts: make(map[string]float64, len(chars))}
		for codon, n := range r.Counts {
			aa, ok := alphabet.Translate(codon)
			if !ok {
				return nil, fmt.Errorf("counts: site %s has non-codon character %q", r.Site, codon)
			}
			if aa == alphabet.Stop && !withStop {
				continue
			}
			nr.Counts[aa] += n
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
