// core/prefs/prefs.go
package prefs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SimplexTol is the absolute tolerance for a probability vector to sum to 1.
const SimplexTol = 1e-4

// SiteResult is one site's inferred preference distribution.
type SiteResult struct {
	Site     string
	Wildtype string
	Probs    map[string]float64
}

// Table is the final artifact: ordered per-site preference distributions
// over a fixed character set.
type Table struct {
	Chars   []string
	Results []SiteResult
}

// ValidateSimplex checks that probs restricted to chars is a probability
// simplex: non-negative entries summing to 1 within SimplexTol.
func ValidateSimplex(chars []string, probs map[string]float64) error {
	vec := make([]float64, len(chars))
	for i, c := range chars {
		p, ok := probs[c]
		if !ok {
			return fmt.Errorf("prefs: missing probability for %q", c)
		}
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("prefs: invalid probability %v for %q", p, c)
		}
		vec[i] = p
	}
	if s := floats.Sum(vec); math.Abs(s-1) > SimplexTol {
		return fmt.Errorf("prefs: probabilities sum to %.6f, not 1 within %g", s, SimplexTol)
	}
	return nil
}

// Assemble merges per-site results, already in site order, into a Table,
// validating each row as a simplex. It never reorders or deduplicates.
func Assemble(chars []string, results []SiteResult) (*Table, error) {
	for _, r := range results {
		if err := ValidateSimplex(chars, r.Probs); err != nil {
			return nil, fmt.Errorf("site %s: %w", r.Site, err)
		}
	}
	return &Table{Chars: append([]string(nil), chars...), Results: results}, nil
}
