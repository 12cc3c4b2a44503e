// internal/writers/prefs.go
package writers

import (
	"fmt"
	"io"

	"dmsprefs-core/prefs"
	"dmsprefs/internal/output"
)

// WritePrefs renders a preference table in the requested format.
func WritePrefs(w io.Writer, format string, tb *prefs.Table, header bool) error {
	switch format {
	case "text", "tsv":
		return output.WritePrefsTSV(w, tb, header)
	case "json":
		return output.WritePrefsJSON(w, tb)
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}
