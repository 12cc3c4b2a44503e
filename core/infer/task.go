// core/infer/task.go

// Package infer orchestrates the Bayesian inference path: one task per
// site, a bounded worker pool, convergence-gated retries, and simplex-
// validated aggregation.
package infer

import (
	"fmt"

	"dmsprefs-core/counts"
	"dmsprefs-core/prior"
	"dmsprefs-core/sampler"
)

// IterationsFor returns the per-attempt MCMC budget for an error model.
// The error-corrected models carry extra latent rate vectors and need more
// samples to resolve them.
func IterationsFor(model counts.ErrorModel) (int, error) {
	switch model {
	case counts.ModelNone:
		return 2500, nil
	case counts.ModelSame:
		return 10000, nil
	case counts.ModelDifferent:
		return 20000, nil
	default:
		return 0, fmt.Errorf("infer: unknown error model %q", model)
	}
}

// Task is one site's inference work: the first attempt plus a pre-built
// retry descriptor that differs only in its seed.
type Task struct {
	Site  string
	First sampler.Request
	Retry sampler.Request
}

// BuildTasks constructs one task per site. Tables must be consistent,
// sorted, and at the granularity of chars; priors is keyed by site.
func BuildTasks(
	chars []string,
	model counts.ErrorModel,
	pre, post, errPre, errPost *counts.Table,
	priors map[string]prior.Set,
	baseSeed uint64,
) ([]Task, error) {
	iters, err := IterationsFor(model)
	if err != nil {
		return nil, err
	}
	switch model {
	case counts.ModelSame:
		if errPre == nil {
			return nil, fmt.Errorf("infer: error model %s requires an error-control table", model)
		}
	case counts.ModelDifferent:
		if errPre == nil || errPost == nil {
			return nil, fmt.Errorf("infer: error model %s requires both error-control tables", model)
		}
	}

	tasks := make([]Task, 0, len(pre.Rows))
	for i, row := range pre.Rows {
		p, ok := priors[row.Site]
		if !ok {
			return nil, fmt.Errorf("infer: no priors derived for site %s", row.Site)
		}
		siteCounts := map[counts.Condition]map[string]int{
			counts.CondPre:  row.Counts,
			counts.CondPost: post.Rows[i].Counts,
		}
		if errPre != nil {
			siteCounts[counts.CondErrPre] = errPre.Rows[i].Counts
		}
		if errPost != nil && model == counts.ModelDifferent {
			siteCounts[counts.CondErrPost] = errPost.Rows[i].Counts
		}
		req := sampler.Request{
			Chars:      chars,
			Wildtype:   row.Wildtype,
			Counts:     siteCounts,
			Priors:     p,
			Chains:     1,
			Iterations: iters,
			Seed:       baseSeed + uint64(i)*2,
		}
		retry := req
		retry.Seed = req.Seed + 1
		tasks = append(tasks, Task{Site: row.Site, First: req, Retry: retry})
	}
	return tasks, nil
}
