// core/ratio/ratio.go

// Package ratio estimates site preferences from normalized enrichment
// ratios of post- to pre-selection counts. The computation is closed-form
// and deterministic; no sampling is involved.
package ratio

import (
	"fmt"

	"dmsprefs-core/counts"
	"dmsprefs-core/prefs"
)

// Estimate computes one preference distribution per site.
//
// pre and post are required and must be at the granularity of chars.
// errPre/errPost are optional error-control tables: both nil for no
// correction, the same *Table for the shared-control model, distinct
// tables otherwise. pseudocount must be a non-negative integer added to
// every (corrected) count before forming ratios.
func Estimate(chars []string, pre, post, errPre, errPost *counts.Table, pseudocount int) (*prefs.Table, error) {
	if pseudocount < 0 {
		return nil, fmt.Errorf("ratio: pseudocount must be non-negative, got %d", pseudocount)
	}
	if (errPre == nil) != (errPost == nil) {
		return nil, fmt.Errorf("ratio: error-control tables must be supplied for both conditions or neither")
	}
	a := float64(len(chars))
	p := float64(pseudocount)

	results := make([]prefs.SiteResult, 0, len(pre.Rows))
	for i, preRow := range pre.Rows {
		postRow := post.Rows[i]

		preCounts, err := sideCounts(chars, preRow, errPre, i)
		if err != nil {
			return nil, err
		}
		postCounts, err := sideCounts(chars, postRow, errPost, i)
		if err != nil {
			return nil, err
		}

		preDepth := sum(chars, preCounts)
		postDepth := sum(chars, postCounts)
		if preDepth+a*p <= 0 || postDepth+a*p <= 0 {
			return nil, fmt.Errorf("ratio: site %s has zero depth and zero pseudocount", preRow.Site)
		}

		phi := make(map[string]float64, len(chars))
		total := 0.0
		for _, c := range chars {
			fPre := (preCounts[c] + p) / (preDepth + a*p)
			fPost := (postCounts[c] + p) / (postDepth + a*p)
			if fPre <= 0 {
				return nil, fmt.Errorf("ratio: site %s character %s has zero pre-selection frequency; use a pseudocount", preRow.Site, c)
			}
			phi[c] = fPost / fPre
			total += phi[c]
		}
		pi := make(map[string]float64, len(chars))
		for _, c := range chars {
			pi[c] = phi[c] / total
		}
		results = append(results, prefs.SiteResult{Site: preRow.Site, Wildtype: preRow.Wildtype, Probs: pi})
	}
	return prefs.Assemble(chars, results)
}

func sideCounts(chars []string, obs counts.Row, errCtl *counts.Table, i int) (map[string]float64, error) {
	if errCtl == nil {
		return counts.RawCounts(chars, obs), nil
	}
	return counts.CorrectedCounts(chars, obs, errCtl.Rows[i])
}

func sum(chars []string, m map[string]float64) float64 {
	s := 0.0
	for _, c := range chars {
		s += m[c]
	}
	return s
}
