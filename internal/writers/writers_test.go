package writers

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
	"syscall"
	"testing"

	"dmsprefs-core/diffsel"
	"dmsprefs-core/prefs"
	"dmsprefs/pkg/api"
)

func demoPrefs() *prefs.Table {
	return &prefs.Table{
		Chars: []string{"A", "C"},
		Results: []prefs.SiteResult{
			{Site: "1", Wildtype: "A", Probs: map[string]float64{"A": 0.8, "C": 0.2}},
		},
	}
}

func TestWritePrefs_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePrefs(&buf, "text", demoPrefs(), true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "site\tA\tC\n") {
		t.Fatalf("bad text output: %q", buf.String())
	}
}

func TestWritePrefs_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePrefs(&buf, "json", demoPrefs(), true); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []api.PreferenceV1
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil || len(got) != 1 || got[0].Site != "1" {
		t.Fatalf("json roundtrip: %v %v", err, got)
	}
}

func TestWritePrefs_UnknownFormat(t *testing.T) {
	if err := WritePrefs(io.Discard, "fasta", demoPrefs(), true); err == nil {
		t.Fatal("want format error")
	}
}

func TestWriteMutDiffSel_JSONL(t *testing.T) {
	muts := []diffsel.Mut{
		{Site: "1", Wildtype: "A", Mutation: "A", Value: math.NaN()},
		{Site: "1", Wildtype: "A", Mutation: "C", Value: 2.0},
	}
	var buf bytes.Buffer
	if err := WriteMutDiffSel(&buf, "jsonl", muts, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 JSONL lines, got %d: %q", len(lines), buf.String())
	}
	var first api.MutDiffSelV1
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1: %v", err)
	}
	if first.Value != nil {
		t.Fatalf("masked value should be null, got %v", *first.Value)
	}
}

func TestIsBrokenPipe(t *testing.T) {
	if !IsBrokenPipe(syscall.EPIPE) {
		t.Fatal("EPIPE should count")
	}
	if !IsBrokenPipe(io.ErrClosedPipe) {
		t.Fatal("ErrClosedPipe should count")
	}
	if IsBrokenPipe(nil) || IsBrokenPipe(io.EOF) {
		t.Fatal("nil/EOF should not count")
	}
}
