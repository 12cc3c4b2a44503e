package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsprefs-core/alphabet"
	"dmsprefs-core/counts"
	"dmsprefs-core/prior"
)

func codonPair() (pre, post *counts.Table) {
	chars := append([]string(nil), alphabet.Codons...)
	pre = &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "ATG", Counts: map[string]int{"ATG": 90, "ATA": 10}},
		{Site: "2", Wildtype: "GCT", Counts: map[string]int{"GCT": 95, "GCA": 5}},
	}}
	post = &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "ATG", Counts: map[string]int{"ATG": 70, "ATA": 30}},
		{Site: "2", Wildtype: "GCT", Counts: map[string]int{"GCT": 80, "GCA": 20}},
	}}
	return pre, post
}

func sitePriors(sites ...string) map[string]prior.Set {
	out := make(map[string]prior.Set, len(sites))
	for _, s := range sites {
		out[s] = prior.Set{}
	}
	return out
}

func TestIterationsFor(t *testing.T) {
	for model, want := range map[counts.ErrorModel]int{
		counts.ModelNone:      2500,
		counts.ModelSame:      10000,
		counts.ModelDifferent: 20000,
	} {
		got, err := IterationsFor(model)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(model))
	}
	_, err := IterationsFor(counts.ErrorModel("bogus"))
	assert.Error(t, err)
}

func TestBuildTasksBudgetAndSeeds(t *testing.T) {
	pre, post := codonPair()
	errCtl := &counts.Table{Chars: pre.Chars, Rows: pre.Rows}

	tasks, err := BuildTasks(pre.Chars, counts.ModelDifferent, pre, post, errCtl, errCtl, sitePriors("1", "2"), 40)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	for i, task := range tasks {
		// error model `different` requests 20000 iterations per attempt
		assert.Equal(t, 20000, task.First.Iterations)
		assert.Equal(t, 20000, task.Retry.Iterations)
		assert.Equal(t, 1, task.First.Chains)
		assert.Equal(t, uint64(40+2*i), task.First.Seed)
		assert.Equal(t, task.First.Seed+1, task.Retry.Seed)
		assert.Contains(t, task.First.Counts, counts.CondErrPre)
		assert.Contains(t, task.First.Counts, counts.CondErrPost)
	}
}

func TestBuildTasksPerModelCounts(t *testing.T) {
	pre, post := codonPair()
	errCtl := &counts.Table{Chars: pre.Chars, Rows: pre.Rows}

	plain, err := BuildTasks(pre.Chars, counts.ModelNone, pre, post, nil, nil, sitePriors("1", "2"), 0)
	require.NoError(t, err)
	assert.NotContains(t, plain[0].First.Counts, counts.CondErrPre)
	assert.Equal(t, 2500, plain[0].First.Iterations)

	shared, err := BuildTasks(pre.Chars, counts.ModelSame, pre, post, errCtl, nil, sitePriors("1", "2"), 0)
	require.NoError(t, err)
	assert.Contains(t, shared[0].First.Counts, counts.CondErrPre)
	assert.NotContains(t, shared[0].First.Counts, counts.CondErrPost)
	assert.Equal(t, 10000, shared[0].First.Iterations)
}

func TestBuildTasksErrors(t *testing.T) {
	pre, post := codonPair()

	_, err := BuildTasks(pre.Chars, counts.ModelSame, pre, post, nil, nil, sitePriors("1", "2"), 0)
	assert.Error(t, err)

	_, err = BuildTasks(pre.Chars, counts.ModelNone, pre, post, nil, nil, sitePriors("1"), 0)
	assert.Error(t, err, "missing priors for site 2")
}
