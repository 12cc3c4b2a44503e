// internal/jsonutil/json.go

// Package jsonutil holds the JSON encoding defaults shared by the table
// renderers.
package jsonutil

import (
	"encoding/json"
	"io"
)

// EncodePretty writes v as indented JSON to w, trailing newline included.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
