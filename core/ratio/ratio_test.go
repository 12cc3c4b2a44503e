package ratio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsprefs-core/counts"
)

var chars = []string{"A", "C"}

func twoCharTables() (pre, post *counts.Table) {
	pre = &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 80, "C": 20}},
	}}
	post = &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 50, "C": 50}},
	}}
	return pre, post
}

func TestEstimateNoError(t *testing.T) {
	pre, post := twoCharTables()
	tb, err := Estimate(chars, pre, post, nil, nil, 1)
	require.NoError(t, err)
	require.Len(t, tb.Results, 1)

	probs := tb.Results[0].Probs
	// Enrichment under selection pushes C well above its raw pre-fraction 0.2.
	assert.Greater(t, probs["C"], 0.2)
	assert.InDelta(t, 0.7941176, probs["C"], 1e-6)
	assert.InDelta(t, 0.2058824, probs["A"], 1e-6)
	assert.InDelta(t, 1.0, probs["A"]+probs["C"], 1e-9)
}

func TestEstimateSharedErrorControl(t *testing.T) {
	pre, post := twoCharTables()
	errCtl := &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 95, "C": 5}},
	}}
	tb, err := Estimate(chars, pre, post, errCtl, errCtl, 1)
	require.NoError(t, err)

	probs := tb.Results[0].Probs
	// On this data the correction raises C's preference above the
	// uncorrected 0.7941: subtracting the same error rate removes a larger
	// fraction of C's smaller pre-selection count than of its
	// post-selection count, so the enrichment ratio grows.
	assert.InDelta(t, 0.8203970, probs["C"], 1e-6)
	assert.InDelta(t, 0.1796030, probs["A"], 1e-6)
	assert.InDelta(t, 1.0, probs["A"]+probs["C"], 1e-9)

	// Correction changes the answer relative to the uncorrected path.
	raw, err := Estimate(chars, pre, post, nil, nil, 1)
	require.NoError(t, err)
	assert.NotEqual(t, raw.Results[0].Probs["C"], probs["C"])
}

func TestEstimateDeterministicAndIdempotent(t *testing.T) {
	pre, post := twoCharTables()
	first, err := Estimate(chars, pre, post, nil, nil, 1)
	require.NoError(t, err)
	second, err := Estimate(chars, pre, post, nil, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEstimateRowsSumToOne(t *testing.T) {
	pre := &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 7, "C": 3}},
		{Site: "2", Wildtype: "C", Counts: map[string]int{"A": 1, "C": 9}},
		{Site: "3", Wildtype: "A", Counts: map[string]int{"A": 0, "C": 0}},
	}}
	post := &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 2, "C": 8}},
		{Site: "2", Wildtype: "C", Counts: map[string]int{"A": 5, "C": 5}},
		{Site: "3", Wildtype: "A", Counts: map[string]int{"A": 4, "C": 4}},
	}}
	tb, err := Estimate(chars, pre, post, nil, nil, 1)
	require.NoError(t, err)
	for _, r := range tb.Results {
		sum := 0.0
		for _, c := range chars {
			require.GreaterOrEqual(t, r.Probs[c], 0.0)
			sum += r.Probs[c]
		}
		assert.InDelta(t, 1.0, sum, 1e-4, "site %s", r.Site)
	}
}

func TestEstimateConfigErrors(t *testing.T) {
	pre, post := twoCharTables()

	_, err := Estimate(chars, pre, post, nil, nil, -1)
	assert.Error(t, err)

	errCtl := &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 95, "C": 5}},
	}}
	_, err = Estimate(chars, pre, post, errCtl, nil, 1)
	assert.Error(t, err)

	// zero pseudocount with a zero pre count is unusable
	zpre := &counts.Table{Chars: chars, Rows: []counts.Row{
		{Site: "1", Wildtype: "A", Counts: map[string]int{"A": 10, "C": 0}},
	}}
	_, err = Estimate(chars, zpre, post, nil, nil, 0)
	assert.Error(t, err)
}
