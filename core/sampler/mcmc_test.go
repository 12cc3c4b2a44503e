package sampler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsprefs-core/counts"
	"dmsprefs-core/prior"
)

func enrichmentRequest(seed uint64, iterations int) Request {
	return Request{
		Chars:    []string{"A", "C"},
		Wildtype: "A",
		Counts: map[counts.Condition]map[string]int{
			counts.CondPre:  {"A": 80, "C": 20},
			counts.CondPost: {"A": 50, "C": 50},
		},
		Priors: prior.Set{
			Pi: map[string]float64{"A": 1, "C": 1},
			Mu: map[string]float64{"A": 1.6, "C": 0.4},
		},
		Chains:     1,
		Iterations: iterations,
		Seed:       seed,
	}
}

func TestMCMCPrepare(t *testing.T) {
	s := NewMCMC()
	h, err := s.Prepare(context.Background(), counts.ModelSame)
	require.NoError(t, err)
	assert.Equal(t, counts.ModelSame, h.ErrorModel())

	_, err = s.Prepare(context.Background(), counts.ErrorModel("bogus"))
	assert.Error(t, err)
}

func TestMCMCInferRecoversEnrichment(t *testing.T) {
	s := NewMCMC()
	h, err := s.Prepare(context.Background(), counts.ModelNone)
	require.NoError(t, err)

	// Like the aggregator, allow a reseeded retry before judging the chain.
	var res Result
	for _, seed := range []uint64{7, 8, 9} {
		var err error
		res, err = s.Infer(context.Background(), h, enrichmentRequest(seed, 6000))
		require.NoError(t, err)
		if res.Converged {
			break
		}
	}
	require.True(t, res.Converged, "diagnostics: %s", res.Diagnostics)

	sum := res.PosteriorMean["A"] + res.PosteriorMean["C"]
	assert.InDelta(t, 1.0, sum, 1e-6)
	// C is enriched under selection, so its preference should dominate.
	assert.Greater(t, res.PosteriorMean["C"], 0.5)

	iv := res.Intervals["C"]
	assert.Less(t, iv.Lower, res.PosteriorMean["C"])
	assert.Greater(t, iv.Upper, res.PosteriorMean["C"])
	assert.NotEmpty(t, res.Diagnostics)
}

func TestMCMCDeterministicPerSeed(t *testing.T) {
	s := NewMCMC()
	h, err := s.Prepare(context.Background(), counts.ModelNone)
	require.NoError(t, err)

	a, err := s.Infer(context.Background(), h, enrichmentRequest(11, 2000))
	require.NoError(t, err)
	b, err := s.Infer(context.Background(), h, enrichmentRequest(11, 2000))
	require.NoError(t, err)
	assert.Equal(t, a.PosteriorMean, b.PosteriorMean)

	c, err := s.Infer(context.Background(), h, enrichmentRequest(12, 2000))
	require.NoError(t, err)
	assert.NotEqual(t, a.PosteriorMean, c.PosteriorMean)
}

func TestMCMCInferValidation(t *testing.T) {
	s := NewMCMC()
	h, err := s.Prepare(context.Background(), counts.ModelNone)
	require.NoError(t, err)

	req := enrichmentRequest(1, 2000)
	req.Iterations = 5
	_, err = s.Infer(context.Background(), h, req)
	assert.Error(t, err)

	req = enrichmentRequest(1, 2000)
	req.Wildtype = "G"
	_, err = s.Infer(context.Background(), h, req)
	assert.Error(t, err)

	_, err = s.Infer(context.Background(), nil, enrichmentRequest(1, 2000))
	assert.Error(t, err)
}
