// internal/writers/diffsel.go
package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"dmsprefs-core/diffsel"
	"dmsprefs/internal/jsonlutil"
	"dmsprefs/internal/output"
)

// WriteMutDiffSel renders per-mutation differential selection.
func WriteMutDiffSel(w io.Writer, format string, muts []diffsel.Mut, header bool) error {
	switch format {
	case "text", "tsv":
		return output.WriteMutDiffSelTSV(w, muts, header)
	case "json":
		return output.WriteMutDiffSelJSON(w, muts)
	case "jsonl":
		return writeMutDiffSelJSONL(w, muts)
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or jsonl)", format)
	}
}

// writeMutDiffSelJSONL streams one v1 object per line through the shared
// encoder goroutine.
func writeMutDiffSelJSONL(w io.Writer, muts []diffsel.Mut) error {
	in, done := jsonlutil.Start(w, 0, func(enc *json.Encoder, m diffsel.Mut) error {
		return enc.Encode(output.ToAPIMutDiffSel(m))
	}, IsBrokenPipe)
	for _, m := range muts {
		in <- m
	}
	close(in)
	return <-done
}

// WriteSiteDiffSel renders the per-site summary (TSV only).
func WriteSiteDiffSel(w io.Writer, sites []diffsel.Site, header bool) error {
	return output.WriteSiteDiffSelTSV(w, sites, header)
}
