// internal/output/text_test.go
package output

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"dmsprefs-core/diffsel"
	"dmsprefs-core/prefs"
)

func TestWritePrefsTSV(t *testing.T) {
	tb := &prefs.Table{
		Chars: []string{"A", "C"},
		Results: []prefs.SiteResult{
			{Site: "1", Wildtype: "A", Probs: map[string]float64{"A": 0.75, "C": 0.25}},
			{Site: "2", Wildtype: "C", Probs: map[string]float64{"A": 0.5, "C": 0.5}},
		},
	}
	var buf bytes.Buffer
	if err := WritePrefsTSV(&buf, tb, true); err != nil {
		t.Fatalf("tsv write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d", len(lines))
	}
	if lines[0] != "site\tA\tC" {
		t.Fatalf("bad header %q", lines[0])
	}
	if lines[1] != "1\t0.750000\t0.250000" {
		t.Fatalf("bad row %q", lines[1])
	}
}

func TestWritePrefsTSV_NoHeader(t *testing.T) {
	tb := &prefs.Table{
		Chars:   []string{"A"},
		Results: []prefs.SiteResult{{Site: "1", Wildtype: "A", Probs: map[string]float64{"A": 1}}},
	}
	var buf bytes.Buffer
	if err := WritePrefsTSV(&buf, tb, false); err != nil {
		t.Fatalf("tsv write: %v", err)
	}
	if strings.Contains(buf.String(), "site") {
		t.Fatalf("header should be suppressed: %q", buf.String())
	}
}

func TestWriteMutDiffSelTSV_MaskedToNA(t *testing.T) {
	muts := []diffsel.Mut{
		{Site: "1", Wildtype: "A", Mutation: "A", Value: math.NaN()},
		{Site: "1", Wildtype: "A", Mutation: "C", Value: 1.5},
	}
	var buf bytes.Buffer
	if err := WriteMutDiffSelTSV(&buf, muts, true); err != nil {
		t.Fatalf("tsv write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[1] != "1\tA\tA\tNA" {
		t.Fatalf("wildtype row should be NA, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1\tA\tC\t1.5") {
		t.Fatalf("bad value row %q", lines[2])
	}
}

func TestWriteSiteDiffSelTSV(t *testing.T) {
	sites := []diffsel.Site{{Site: "5", Abs: 2, Positive: 1.5, Negative: -0.5, Max: 1.5, Min: -0.5}}
	var buf bytes.Buffer
	if err := WriteSiteDiffSelTSV(&buf, sites, true); err != nil {
		t.Fatalf("tsv write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "site\tabs_diffsel\t") {
		t.Fatalf("bad header: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\n5\t") {
		t.Fatalf("missing site row: %q", buf.String())
	}
}
