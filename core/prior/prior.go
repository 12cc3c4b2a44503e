// core/prior/prior.go

// Package prior turns genome-wide average mutation and error rates into
// per-site Dirichlet-style concentration vectors centered on the wildtype.
package prior

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"dmsprefs-core/alphabet"
	"dmsprefs-core/counts"
)

// Rates holds per-nucleotide-distance-class average rates: ByClass[m-1] is
// the probability that an observed codon carries m nucleotide mutations.
type Rates struct {
	ByClass [3]float64
}

// Sum is the total rate over all three distance classes.
func (r Rates) Sum() float64 {
	return r.ByClass[0] + r.ByClass[1] + r.ByClass[2]
}

// RatesFromTable computes, per distance class, the mean across sites of the
// fraction of observed codons at that nucleotide distance from the site's
// wildtype codon. The table must be at codon granularity with positive
// depth at every site.
func RatesFromTable(t *counts.Table) (Rates, error) {
	if !t.IsCodon() {
		return Rates{}, fmt.Errorf("prior: rate derivation requires codon-granularity counts")
	}
	if len(t.Rows) == 0 {
		return Rates{}, fmt.Errorf("prior: empty count table")
	}
	perSite := [3][]float64{}
	for _, row := range t.Rows {
		depth := float64(row.Depth(t.Chars))
		if depth <= 0 {
			return Rates{}, fmt.Errorf("prior: site %s has zero depth", row.Site)
		}
		var byClass [3]float64
		for codon, n := range row.Counts {
			d := alphabet.NTDist(codon, row.Wildtype)
			if d >= 1 && d <= 3 {
				byClass[d-1] += float64(n)
			}
		}
		for m := 0; m < 3; m++ {
			perSite[m] = append(perSite[m], byClass[m]/depth)
		}
	}
	var out Rates
	for m := 0; m < 3; m++ {
		out.ByClass[m] = stat.Mean(perSite[m], nil)
	}
	return out, nil
}

// MutationRates derives the selection-attributable mutation rate from the
// pre-selection rate by subtracting the averaged error-table rates that are
// active under the given model. The result must be physically plausible:
// every class non-negative and the total strictly inside (0, 1).
func MutationRates(pre Rates, eps, rho *Rates, model counts.ErrorModel) (Rates, error) {
	mu := pre
	switch model {
	case counts.ModelNone:
	case counts.ModelSame:
		if eps == nil {
			return Rates{}, fmt.Errorf("prior: error model %s requires error rates", model)
		}
		for m := 0; m < 3; m++ {
			mu.ByClass[m] -= eps.ByClass[m]
		}
	case counts.ModelDifferent:
		if eps == nil || rho == nil {
			return Rates{}, fmt.Errorf("prior: error model %s requires both error rates", model)
		}
		for m := 0; m < 3; m++ {
			mu.ByClass[m] -= eps.ByClass[m] + rho.ByClass[m]
		}
	default:
		return Rates{}, fmt.Errorf("prior: unknown error model %q", model)
	}
	for m := 0; m < 3; m++ {
		if mu.ByClass[m] < 0 {
			return Rates{}, fmt.Errorf("prior: class-%d mutation rate %.6f is negative after error correction", m+1, mu.ByClass[m])
		}
	}
	if s := mu.Sum(); s <= 0 || s >= 1 {
		return Rates{}, fmt.Errorf("prior: average mutation rate %.6f outside (0, 1)", s)
	}
	return mu, nil
}

// Concentrations are the three Dirichlet concentration parameters.
type Concentrations struct {
	Pi  float64 // baseline preference concentration
	Mu  float64 // mutation-rate concentration
	Err float64 // error-rate concentration
}

// Validate rejects non-positive concentration parameters.
func (c Concentrations) Validate() error {
	if c.Pi <= 0 || c.Mu <= 0 || c.Err <= 0 {
		return fmt.Errorf("prior: concentration parameters must be positive, got pi=%g mu=%g err=%g", c.Pi, c.Mu, c.Err)
	}
	return nil
}

// Set holds one site's per-character concentration vectors.
type Set struct {
	Mu      map[string]float64
	Epsilon map[string]float64
	Rho     map[string]float64
	Pi      map[string]float64
}

// Derive builds the prior set for one site with wildtype codon wtCodon.
//
// For each of mu/epsilon/rho the per-character vector starts at 1 on the
// wildtype character and 0 elsewhere; each distance class's rate is split
// evenly among that class's codons (skipping stop codons when excludeStop
// is set), added to each codon's character, and removed from the wildtype.
// The vectors are then scaled by |chars| times the matching concentration.
// The pi vector is flat at the pi concentration.
func Derive(chars []string, wtCodon string, mu, eps, rho Rates, conc Concentrations, excludeStop bool) (Set, error) {
	if err := conc.Validate(); err != nil {
		return Set{}, err
	}
	if !alphabet.IsCodon(wtCodon) {
		return Set{}, fmt.Errorf("prior: wildtype %q is not a codon", wtCodon)
	}
	charOf, err := codonProjection(chars)
	if err != nil {
		return Set{}, err
	}
	wtChar, ok := charOf(wtCodon)
	if !ok {
		return Set{}, fmt.Errorf("prior: wildtype codon %q maps outside the character set", wtCodon)
	}

	build := func(r Rates, c float64) map[string]float64 {
		w := make(map[string]float64, len(chars))
		for _, ch := range chars {
			w[ch] = 0
		}
		w[wtChar] = 1
		for m := 1; m <= 3; m++ {
			var class []string
			for _, codon := range alphabet.Codons {
				if codon == wtCodon || alphabet.NTDist(codon, wtCodon) != m {
					continue
				}
				if excludeStop && alphabet.IsStopCodon(codon) {
					continue
				}
				if _, ok := charOf(codon); !ok {
					continue
				}
				class = append(class, codon)
			}
			if len(class) == 0 {
				continue
			}
			share := r.ByClass[m-1] / float64(len(class))
			for _, codon := range class {
				ch, _ := charOf(codon)
				w[ch] += share
				w[wtChar] -= share
			}
		}
		scale := float64(len(chars)) * c
		for ch := range w {
			w[ch] *= scale
		}
		return w
	}

	set := Set{
		Mu:      build(mu, conc.Mu),
		Epsilon: build(eps, conc.Err),
		Rho:     build(rho, conc.Err),
		Pi:      make(map[string]float64, len(chars)),
	}
	for _, ch := range chars {
		set.Pi[ch] = conc.Pi
	}
	return set, nil
}

// codonProjection maps codons onto the run's character set: identity for a
// codon character set, translation for an amino-acid one.
func codonProjection(chars []string) (func(string) (string, bool), error) {
	inSet := make(map[string]bool, len(chars))
	codonSet := true
	for _, c := range chars {
		inSet[c] = true
		if !alphabet.IsCodon(c) {
			codonSet = false
		}
	}
	if codonSet && len(chars) > 0 {
		return func(codon string) (string, bool) {
			return codon, inSet[codon]
		}, nil
	}
	for _, c := range chars {
		if len(c) != 1 {
			return nil, fmt.Errorf("prior: unsupported character %q", c)
		}
	}
	return func(codon string) (string, bool) {
		aa, ok := alphabet.Translate(codon)
		if !ok {
			return "", false
		}
		return aa, inSet[aa]
	}, nil
}
