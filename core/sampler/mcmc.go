// core/sampler/mcmc.go
package sampler

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"dmsprefs-core/counts"
)

// alphaFloor keeps Dirichlet parameters proper when a derived prior weight
// is exactly zero (e.g. a distance class with zero rate).
const alphaFloor = 1e-3

// probFloor clamps modeled category probabilities away from zero before
// taking logs.
const probFloor = 1e-12

// MCMC is the production sampler: random-walk Metropolis over the latent
// preference and rate simplexes with Dirichlet proposals.
//
// The model follows the count-generating process of the experiment: the
// pre-selection sample draws from the mutagenesis rates mu, error controls
// draw from their own rate vectors epsilon/rho, and the post-selection
// sample draws from preference-weighted mutagenesis rates, each perturbed
// by the active error rates.
type MCMC struct {
	// Tune is the Dirichlet proposal concentration; larger values take
	// smaller steps.
	Tune float64
}

// NewMCMC returns a sampler with default proposal tuning.
func NewMCMC() *MCMC { return &MCMC{Tune: 300} }

type preparedModel struct {
	model counts.ErrorModel
	tune  float64
}

func (m *preparedModel) ErrorModel() counts.ErrorModel { return m.model }

// Prepare validates the error model and fixes the proposal tuning for the
// run. The returned handle is immutable.
func (s *MCMC) Prepare(_ context.Context, model counts.ErrorModel) (ModelHandle, error) {
	switch model {
	case counts.ModelNone, counts.ModelSame, counts.ModelDifferent:
	default:
		return nil, fmt.Errorf("sampler: unknown error model %q", model)
	}
	tune := s.Tune
	if tune <= 0 {
		tune = 300
	}
	return &preparedModel{model: model, tune: tune}, nil
}

// Infer runs req.Chains independent chains (at least one) and pools their
// post-burn-in samples. The verdict is converged only if every chain passes
// a Geweke-style stationarity check with a sane acceptance rate.
func (s *MCMC) Infer(ctx context.Context, h ModelHandle, req Request) (Result, error) {
	pm, ok := h.(*preparedModel)
	if !ok {
		return Result{}, fmt.Errorf("sampler: foreign model handle %T", h)
	}
	if req.Iterations < 10 {
		return Result{}, fmt.Errorf("sampler: iteration budget %d too small", req.Iterations)
	}
	chains := req.Chains
	if chains < 1 {
		chains = 1
	}

	dim := len(req.Chars)
	var pooled [][]float64
	converged := true
	diag := ""
	for c := 0; c < chains; c++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		run, err := s.runChain(pm, req, req.Seed+uint64(c))
		if err != nil {
			return Result{}, err
		}
		pooled = append(pooled, run.samples...)
		if !run.converged {
			converged = false
		}
		if c > 0 {
			diag += "; "
		}
		diag += fmt.Sprintf("chain %d: geweke=%.2f accept=%.3f samples=%d",
			c, run.geweke, run.accept, len(run.samples))
	}

	mean := make(map[string]float64, dim)
	ivals := make(map[string]Interval, dim)
	col := make([]float64, len(pooled))
	for i, ch := range req.Chars {
		for j, s := range pooled {
			col[j] = s[i]
		}
		mean[ch] = stat.Mean(col, nil)
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		ivals[ch] = Interval{
			Lower: stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Upper: stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
	}
	return Result{
		Converged:     converged,
		PosteriorMean: mean,
		Intervals:     ivals,
		Diagnostics:   diag,
	}, nil
}

type chainRun struct {
	samples   [][]float64
	geweke    float64
	accept    float64
	converged bool
}

// block is one latent simplex updated by Metropolis-Hastings.
type block struct {
	x     []float64
	prior *distmv.Dirichlet
}

func (s *MCMC) runChain(pm *preparedModel, req Request, seed uint64) (*chainRun, error) {
	src := rand.NewSource(seed)
	dim := len(req.Chars)
	if dim < 2 {
		return nil, fmt.Errorf("sampler: need at least 2 characters, got %d", dim)
	}

	vecOf := func(m map[string]float64) []float64 {
		v := make([]float64, dim)
		for i, ch := range req.Chars {
			v[i] = math.Max(m[ch], alphaFloor)
		}
		return v
	}
	countVec := func(cond counts.Condition) []float64 {
		v := make([]float64, dim)
		for i, ch := range req.Chars {
			v[i] = float64(req.Counts[cond][ch])
		}
		return v
	}
	wt := -1
	for i, ch := range req.Chars {
		if ch == req.Wildtype {
			wt = i
		}
	}
	if wt < 0 {
		return nil, fmt.Errorf("sampler: wildtype %q not in character set", req.Wildtype)
	}

	nPre := countVec(counts.CondPre)
	nPost := countVec(counts.CondPost)
	var nErrPre, nErrPost []float64

	newBlock := func(alpha []float64) *block {
		d := distmv.NewDirichlet(alpha, src)
		x := make([]float64, dim)
		copy(x, alpha)
		floats.Scale(1/floats.Sum(x), x)
		return &block{x: x, prior: d}
	}

	pi := newBlock(vecOf(req.Priors.Pi))
	mu := newBlock(vecOf(req.Priors.Mu))
	var eps, rho *block
	switch pm.model {
	case counts.ModelSame:
		eps = newBlock(vecOf(req.Priors.Epsilon))
		nErrPre = countVec(counts.CondErrPre)
	case counts.ModelDifferent:
		eps = newBlock(vecOf(req.Priors.Epsilon))
		rho = newBlock(vecOf(req.Priors.Rho))
		nErrPre = countVec(counts.CondErrPre)
		nErrPost = countVec(counts.CondErrPost)
	}

	// scratch buffers
	tmp := make([]float64, dim)
	mulLog := func(n, p []float64) float64 {
		ll := 0.0
		for i := range p {
			if n[i] > 0 {
				ll += n[i] * math.Log(math.Max(p[i], probFloor))
			}
		}
		return ll
	}
	// observation probabilities with the active error perturbation
	perturb := func(base, errRates []float64) []float64 {
		if errRates == nil {
			return base
		}
		for i := range tmp {
			v := base[i] + errRates[i]
			if i == wt {
				v -= 1
			}
			tmp[i] = math.Max(v, probFloor)
		}
		floats.Scale(1/floats.Sum(tmp), tmp)
		return tmp
	}
	postBase := make([]float64, dim)
	logPost := func() float64 {
		lp := pi.prior.LogProb(pi.x) + mu.prior.LogProb(mu.x)
		var epsX, rhoX []float64
		if eps != nil {
			lp += eps.prior.LogProb(eps.x)
			epsX = eps.x
			rhoX = eps.x
		}
		if rho != nil {
			lp += rho.prior.LogProb(rho.x)
			rhoX = rho.x
		}
		lp += mulLog(nPre, perturb(mu.x, epsX))
		for i := range postBase {
			postBase[i] = pi.x[i] * mu.x[i]
		}
		floats.Scale(1/floats.Sum(postBase), postBase)
		lp += mulLog(nPost, perturb(postBase, rhoX))
		if nErrPre != nil {
			lp += mulLog(nErrPre, epsX)
		}
		if nErrPost != nil {
			lp += mulLog(nErrPost, rhoX)
		}
		return lp
	}

	blocks := []*block{pi, mu}
	if eps != nil {
		blocks = append(blocks, eps)
	}
	if rho != nil {
		blocks = append(blocks, rho)
	}

	burn := req.Iterations / 5
	cur := logPost()
	alpha := make([]float64, dim)
	prop := make([]float64, dim)
	old := make([]float64, dim)
	accepted, proposed := 0, 0
	var samples [][]float64
	var lps []float64
	uni := rand.New(src)

	for it := 0; it < req.Iterations; it++ {
		for _, b := range blocks {
			for i := range alpha {
				alpha[i] = pm.tune*b.x[i] + alphaFloor
			}
			fwd := distmv.NewDirichlet(alpha, src)
			fwd.Rand(prop)
			for i := range alpha {
				alpha[i] = pm.tune*prop[i] + alphaFloor
			}
			rev := distmv.NewDirichlet(alpha, nil)
			copy(old, b.x)
			copy(b.x, prop)
			next := logPost()
			logRatio := next - cur + rev.LogProb(old) - fwd.LogProb(prop)
			proposed++
			if math.Log(uni.Float64()) < logRatio {
				cur = next
				accepted++
			} else {
				copy(b.x, old)
			}
		}
		if it >= burn {
			s := make([]float64, dim)
			copy(s, pi.x)
			samples = append(samples, s)
			lps = append(lps, cur)
		}
	}

	accept := float64(accepted) / float64(proposed)
	z := gewekeZ(lps)
	return &chainRun{
		samples:   samples,
		geweke:    z,
		accept:    accept,
		converged: math.Abs(z) <= 2 && accept >= 0.02 && accept <= 0.98,
	}, nil
}

// gewekeZ compares the mean log-posterior of the first 10% of post-burn-in
// sweeps with the last 50%; a large score indicates the chain was still
// drifting. Segment variances use batch means so the autocorrelation of
// successive sweeps does not shrink the standard error.
func gewekeZ(lps []float64) float64 {
	n := len(lps)
	if n < 200 {
		return math.Inf(1)
	}
	a := lps[:n/10+1]
	b := lps[n/2:]
	ma, va := batchMeanVariance(a)
	mb, vb := batchMeanVariance(b)
	se := math.Sqrt(va + vb)
	if se == 0 {
		return 0
	}
	return (ma - mb) / se
}

// batchMeanVariance returns the segment mean and the variance of that
// mean estimated from 10 contiguous batches.
func batchMeanVariance(x []float64) (mean, varOfMean float64) {
	const nb = 10
	size := len(x) / nb
	means := make([]float64, nb)
	for i := 0; i < nb; i++ {
		means[i] = stat.Mean(x[i*size:(i+1)*size], nil)
	}
	m, v := stat.MeanVariance(means, nil)
	return m, v / nb
}
