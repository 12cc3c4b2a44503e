// internal/diffselcli/options.go
package diffselcli

import (
	"errors"
	"flag"
	"fmt"

	"dmsprefs/internal/version"
)

// Options holds all dmsdiffsel flags.
type Options struct {
	// Count-table input
	Sel    string
	Mock   string
	ErrCtl string

	// Parameters
	Chartype    string  // aa | aa_stop | codon
	Pseudocount float64 // depth-scaled before use
	Mincount    int
	ExcludeStop bool

	// Output
	Output   string // text | json | jsonl (per-mutation table on stdout)
	SiteFile string // optional per-site summary TSV
	Header   bool

	// Misc
	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: differential selection from selected vs mock-selected counts

License: MIT
Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.Sel, "sel", "", "selected-sample counts TSV [*]")
	fs.StringVar(&opt.Mock, "mock", "", "mock-selected counts TSV [*]")
	fs.StringVar(&opt.ErrCtl, "err", "", "error-control counts TSV")

	fs.StringVar(&opt.Chartype, "chartype", "aa", "character set: aa | aa_stop | codon [aa]")
	fs.Float64Var(&opt.Pseudocount, "pseudocount", 10, "pseudocount, scaled by relative depth [10]")
	fs.IntVar(&opt.Mincount, "mincount", 0, "mask mutations with fewer counts in both samples [0]")
	fs.BoolVar(&opt.ExcludeStop, "excludestop", false, "exclude stop codons from the character set [false]")

	fs.StringVar(&opt.Output, "output", "text", "per-mutation output format: text | json | jsonl [text]")
	fs.StringVar(&opt.SiteFile, "sitefile", "", "also write the per-site summary TSV to this path")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line in text/TSV [false]")

	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress progress logging [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.Header = !noHeader

	if opt.Sel == "" || opt.Mock == "" {
		return opt, errors.New("--sel and --mock are required")
	}
	switch opt.Chartype {
	case "aa", "aa_stop", "codon":
	default:
		return opt, fmt.Errorf("invalid --chartype %q (want aa, aa_stop, or codon)", opt.Chartype)
	}
	if opt.Chartype == "aa_stop" && opt.ExcludeStop {
		return opt, errors.New("--excludestop conflicts with --chartype aa_stop")
	}
	if opt.Pseudocount <= 0 {
		return opt, errors.New("--pseudocount must be > 0")
	}
	if opt.Mincount < 0 {
		return opt, errors.New("--mincount must be >= 0")
	}
	if opt.Output != "text" && opt.Output != "json" && opt.Output != "jsonl" {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	return opt, nil
}
