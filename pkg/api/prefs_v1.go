// pkg/api/prefs_v1.go
package api

// PreferenceV1 is the stable JSON schema for one site's preferences.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type PreferenceV1 struct {
	Site     string             `json:"site"`
	Wildtype string             `json:"wildtype"`
	Prefs    map[string]float64 `json:"prefs"`
}

// MutDiffSelV1 is the stable JSON schema for one mutation's differential
// selection. Value is null for masked (NaN) entries.
type MutDiffSelV1 struct {
	Site     string   `json:"site"`
	Wildtype string   `json:"wildtype"`
	Mutation string   `json:"mutation"`
	Value    *float64 `json:"mutdiffsel"`
}
