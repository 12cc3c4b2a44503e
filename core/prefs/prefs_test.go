package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSimplex(t *testing.T) {
	chars := []string{"A", "C", "G"}

	require.NoError(t, ValidateSimplex(chars, map[string]float64{"A": 0.5, "C": 0.3, "G": 0.2}))
	// within tolerance
	require.NoError(t, ValidateSimplex(chars, map[string]float64{"A": 0.50005, "C": 0.3, "G": 0.2}))

	assert.Error(t, ValidateSimplex(chars, map[string]float64{"A": 0.6, "C": 0.3, "G": 0.2}))
	assert.Error(t, ValidateSimplex(chars, map[string]float64{"A": 1.2, "C": -0.1, "G": -0.1}))
	assert.Error(t, ValidateSimplex(chars, map[string]float64{"A": 0.5, "C": 0.5}))
}

func TestAssemblePreservesOrder(t *testing.T) {
	chars := []string{"A", "C"}
	in := []SiteResult{
		{Site: "1", Wildtype: "A", Probs: map[string]float64{"A": 0.7, "C": 0.3}},
		{Site: "2", Wildtype: "C", Probs: map[string]float64{"A": 0.1, "C": 0.9}},
	}
	tb, err := Assemble(chars, in)
	require.NoError(t, err)
	require.Len(t, tb.Results, 2)
	assert.Equal(t, "1", tb.Results[0].Site)
	assert.Equal(t, "2", tb.Results[1].Site)
}

func TestAssembleRejectsBadRow(t *testing.T) {
	chars := []string{"A", "C"}
	in := []SiteResult{
		{Site: "1", Wildtype: "A", Probs: map[string]float64{"A": 0.9, "C": 0.3}},
	}
	_, err := Assemble(chars, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site 1")
}
