// internal/output/json.go
package output

import (
	"io"
	"math"

	"dmsprefs-core/diffsel"
	"dmsprefs-core/prefs"
	"dmsprefs/internal/jsonutil"
	"dmsprefs/pkg/api"
)

// ToAPIPreference converts one site result to the stable wire schema (v1).
func ToAPIPreference(chars []string, r prefs.SiteResult) api.PreferenceV1 {
	p := make(map[string]float64, len(chars))
	for _, c := range chars {
		p[c] = r.Probs[c]
	}
	return api.PreferenceV1{Site: r.Site, Wildtype: r.Wildtype, Prefs: p}
}

// WritePrefsJSON writes the whole preference table as one JSON array.
func WritePrefsJSON(w io.Writer, tb *prefs.Table) error {
	rows := make([]api.PreferenceV1, 0, len(tb.Results))
	for _, r := range tb.Results {
		rows = append(rows, ToAPIPreference(tb.Chars, r))
	}
	return jsonutil.EncodePretty(w, rows)
}

// ToAPIMutDiffSel converts one mutdiffsel row to the stable wire schema
// (v1); masked (NaN) values become null.
func ToAPIMutDiffSel(m diffsel.Mut) api.MutDiffSelV1 {
	row := api.MutDiffSelV1{Site: m.Site, Wildtype: m.Wildtype, Mutation: m.Mutation}
	if !math.IsNaN(m.Value) {
		v := m.Value
		row.Value = &v
	}
	return row
}

// WriteMutDiffSelJSON writes mutdiffsel rows as one JSON array.
func WriteMutDiffSelJSON(w io.Writer, muts []diffsel.Mut) error {
	rows := make([]api.MutDiffSelV1, 0, len(muts))
	for _, m := range muts {
		rows = append(rows, ToAPIMutDiffSel(m))
	}
	return jsonutil.EncodePretty(w, rows)
}
