// internal/output/text.go
package output

import (
	"fmt"
	"io"
	"strings"

	"dmsprefs-core/diffsel"
	"dmsprefs-core/prefs"
	"dmsprefs/internal/common"
)

// WritePrefsTSV writes one row per site: the site column followed by one
// probability column per character.
func WritePrefsTSV(w io.Writer, tb *prefs.Table, header bool) error {
	if header {
		if _, err := fmt.Fprintf(w, "site\t%s\n", strings.Join(tb.Chars, "\t")); err != nil {
			return err
		}
	}
	for _, r := range tb.Results {
		cols := make([]string, 0, len(tb.Chars)+1)
		cols = append(cols, r.Site)
		for _, c := range tb.Chars {
			cols = append(cols, common.FormatProb(r.Probs[c]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// WriteMutDiffSelTSV writes one row per (site, mutation).
func WriteMutDiffSelTSV(w io.Writer, muts []diffsel.Mut, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, "site\twildtype\tmutation\tmutdiffsel"); err != nil {
			return err
		}
	}
	for _, m := range muts {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Site, m.Wildtype, m.Mutation, common.FormatValue(m.Value)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSiteDiffSelTSV writes the per-site summary columns.
func WriteSiteDiffSelTSV(w io.Writer, sites []diffsel.Site, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w,
			"site\tabs_diffsel\tpositive_diffsel\tnegative_diffsel\tmax_diffsel\tmin_diffsel"); err != nil {
			return err
		}
	}
	for _, s := range sites {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Site,
			common.FormatValue(s.Abs), common.FormatValue(s.Positive),
			common.FormatValue(s.Negative), common.FormatValue(s.Max),
			common.FormatValue(s.Min)); err != nil {
			return err
		}
	}
	return nil
}
