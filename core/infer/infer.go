// core/infer/infer.go
package infer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dmsprefs-core/alphabet"
	"dmsprefs-core/counts"
	"dmsprefs-core/prefs"
	"dmsprefs-core/prior"
	"dmsprefs-core/sampler"
)

// Config parameterizes one Bayesian inference run.
type Config struct {
	Chars       []string // inference character set (amino acids or codons)
	Model       counts.ErrorModel
	Workers     int // -1 for all CPUs
	Seed        uint64
	Poll        time.Duration
	Conc        prior.Concentrations
	ExcludeStop bool
	Log         *slog.Logger
}

// Run executes the full Bayesian path: derive genome-wide rates and
// per-site priors from the codon-granularity tables, collapse counts to
// the inference character set, prepare the sampler model once, dispatch
// one task per site, and aggregate converged results into a preference
// table. Tables must already be sorted, validated, and consistent.
func Run(
	ctx context.Context,
	cfg Config,
	pre, post, errPre, errPost *counts.Table,
	s sampler.Sampler,
) (*prefs.Table, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Conc.Validate(); err != nil {
		return nil, err
	}
	workers, err := ResolveWorkers(cfg.Workers)
	if err != nil {
		return nil, err
	}
	if !pre.IsCodon() || !post.IsCodon() {
		return nil, fmt.Errorf("infer: the Bayesian path requires codon-granularity counts")
	}

	// Genome-wide rates and the selection-attributable mutation rate.
	preRates, err := prior.RatesFromTable(pre)
	if err != nil {
		return nil, err
	}
	var epsRates, rhoRates *prior.Rates
	if errPre != nil {
		r, err := prior.RatesFromTable(errPre)
		if err != nil {
			return nil, err
		}
		epsRates = &r
	}
	switch cfg.Model {
	case counts.ModelSame:
		rhoRates = epsRates
	case counts.ModelDifferent:
		if errPost != nil {
			r, err := prior.RatesFromTable(errPost)
			if err != nil {
				return nil, err
			}
			rhoRates = &r
		}
	}
	muRates, err := prior.MutationRates(preRates, epsRates, rhoRates, cfg.Model)
	if err != nil {
		return nil, err
	}
	log.Debug("derived genome-wide rates",
		"avgmu", muRates.Sum(), "model", string(cfg.Model), "sites", len(pre.Rows))

	// Per-site priors from the wildtype codons.
	zero := prior.Rates{}
	eps, rho := zero, zero
	if epsRates != nil {
		eps = *epsRates
	}
	if rhoRates != nil {
		rho = *rhoRates
	}
	priors := make(map[string]prior.Set, len(pre.Rows))
	for _, row := range pre.Rows {
		set, err := prior.Derive(cfg.Chars, row.Wildtype, muRates, eps, rho, cfg.Conc, cfg.ExcludeStop)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", row.Site, err)
		}
		priors[row.Site] = set
	}

	// Collapse counts to the inference granularity when needed.
	infPre, infPost, infErrPre, infErrPost := pre, post, errPre, errPost
	if len(cfg.Chars) != len(alphabet.Codons) {
		withStop := !cfg.ExcludeStop
		if infPre, err = counts.CollapseToAA(pre, withStop); err != nil {
			return nil, err
		}
		if infPost, err = counts.CollapseToAA(post, withStop); err != nil {
			return nil, err
		}
		if errPre != nil {
			if infErrPre, err = counts.CollapseToAA(errPre, withStop); err != nil {
				return nil, err
			}
		}
		if errPost != nil {
			if infErrPost, err = counts.CollapseToAA(errPost, withStop); err != nil {
				return nil, err
			}
		}
	}

	// One expensive model preparation per run, shared by every task.
	mh, err := s.Prepare(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("infer: model preparation: %w", err)
	}

	tasks, err := BuildTasks(cfg.Chars, cfg.Model, infPre, infPost, infErrPre, infErrPost, priors, cfg.Seed)
	if err != nil {
		return nil, err
	}

	pool := NewPool(workers)
	agg := &Aggregator{Poll: cfg.Poll, Log: log}
	results, err := agg.Collect(ctx, pool, s, mh, tasks)
	if err != nil {
		return nil, err
	}
	return prefs.Assemble(cfg.Chars, results)
}
