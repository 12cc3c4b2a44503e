// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"dmsprefs/internal/version"
)

// Inference methods
const (
	MethodRatio    = "ratio"
	MethodBayesian = "bayesian"
)

// Options holds all CLI flags and arguments.
type Options struct {
	// Count-table input
	Pre     string
	Post    string
	ErrPre  string
	ErrPost string

	// Inference parameters
	Chartype    string // aa | aa_stop | codon
	Method      string // ratio | bayesian
	Pseudocount int    // ratio estimator only
	ConcPi      float64
	ConcMu      float64
	ConcErr     float64
	Seed        uint64
	ExcludeStop bool

	// Performance
	Workers int // -1 = all CPUs

	// Output
	Output string // text | json
	Header bool   // true unless --no-header

	// Misc
	ConfigFile string
	Quiet      bool
	Version    bool

	// set records which flags were given explicitly, so a config file
	// can fill in the rest without clobbering the command line.
	set map[string]bool
}

// Explicit reports whether the named flag appeared on the command line.
func (o *Options) Explicit(name string) bool { return o.set[name] }

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: site-specific amino-acid preferences from deep mutational scanning counts

License: MIT
Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// Parse is the top-level call for CLI parsing.
func Parse() (Options, error) { return ParseArgs(flag.CommandLine, nil) }

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Count-table input
	fs.StringVar(&opt.Pre, "pre", "", "pre-selection counts TSV [*]")
	fs.StringVar(&opt.Post, "post", "", "post-selection counts TSV [*]")
	fs.StringVar(&opt.ErrPre, "errpre", "", "pre-selection error-control counts TSV")
	fs.StringVar(&opt.ErrPost, "errpost", "", "post-selection error-control counts TSV")

	// Inference parameters
	fs.StringVar(&opt.Chartype, "chartype", "aa", "character set: aa | aa_stop | codon [aa]")
	fs.StringVar(&opt.Method, "method", MethodBayesian, "inference method: ratio | bayesian ["+MethodBayesian+"]")
	fs.IntVar(&opt.Pseudocount, "pseudocount", 1, "pseudocount added to every character (ratio method) [1]")
	fs.Float64Var(&opt.ConcPi, "conc-pi", 1.0, "concentration of the preference prior [1.0]")
	fs.Float64Var(&opt.ConcMu, "conc-mu", 1.0, "concentration of the mutagenesis prior [1.0]")
	fs.Float64Var(&opt.ConcErr, "conc-err", 1.0, "concentration of the error-rate prior [1.0]")
	fs.Uint64Var(&opt.Seed, "seed", 1, "random seed for the Bayesian sampler [1]")
	fs.BoolVar(&opt.ExcludeStop, "excludestop", false, "exclude stop codons from the character set [false]")

	// Performance
	fs.IntVar(&opt.Workers, "workers", -1, "parallel per-site inferences (-1 = all CPUs) [-1]")

	// Output
	fs.StringVar(&opt.Output, "output", "text", "output format: text | json [text]")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line in text/TSV [false]")

	// Misc
	fs.StringVar(&opt.ConfigFile, "config", "", "YAML run-config; flags given on the command line win")
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
	opt.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opt.set[f.Name] = true })

	return opt, Validate(&opt)
}

// Validate applies the flag-level checks. It runs again after a config
// file overlay, so it must not depend on parse state.
func Validate(opt *Options) error {
	if opt.Pre == "" || opt.Post == "" {
		return errors.New("--pre and --post are required")
	}
	switch opt.Chartype {
	case "aa", "aa_stop", "codon":
	default:
		return fmt.Errorf("invalid --chartype %q (want aa, aa_stop, or codon)", opt.Chartype)
	}
	switch opt.Method {
	case MethodRatio, MethodBayesian:
	default:
		return fmt.Errorf("invalid --method %q (want ratio or bayesian)", opt.Method)
	}
	if opt.Chartype == "aa_stop" && opt.ExcludeStop {
		return errors.New("--excludestop conflicts with --chartype aa_stop")
	}
	if opt.Method == MethodRatio && opt.Pseudocount <= 0 {
		return errors.New("--pseudocount must be > 0")
	}
	if opt.ConcPi <= 0 || opt.ConcMu <= 0 || opt.ConcErr <= 0 {
		return errors.New("--conc-pi, --conc-mu, and --conc-err must be > 0")
	}
	if opt.Workers == 0 || opt.Workers < -1 {
		return errors.New("--workers must be positive or -1")
	}
	if opt.Output != "text" && opt.Output != "json" {
		return fmt.Errorf("invalid --output %q", opt.Output)
	}
	return nil
}
