// core/sampler/sampler.go

// Package sampler defines the black-box posterior sampler capability used
// by the Bayesian inference path, plus the production MCMC implementation.
package sampler

import (
	"context"

	"dmsprefs-core/counts"
	"dmsprefs-core/prior"
)

// ModelHandle is an opaque prepared model. Preparation is expensive and
// happens exactly once per run; the handle is read-only afterwards and safe
// for concurrent use by many inference tasks.
type ModelHandle interface {
	ErrorModel() counts.ErrorModel
}

// Request carries everything one per-site inference task needs.
type Request struct {
	Chars      []string
	Wildtype   string
	Counts     map[counts.Condition]map[string]int
	Priors     prior.Set
	Chains     int
	Iterations int
	Seed       uint64
}

// Interval is a 95% equal-tailed credible interval.
type Interval struct {
	Lower, Upper float64
}

// Result is one attempt's posterior summary and convergence verdict.
type Result struct {
	Converged     bool
	PosteriorMean map[string]float64
	Intervals     map[string]Interval
	Diagnostics   string
}

// Sampler is the dependency-injected inference capability.
type Sampler interface {
	Prepare(ctx context.Context, model counts.ErrorModel) (ModelHandle, error)
	Infer(ctx context.Context, h ModelHandle, req Request) (Result, error)
}
