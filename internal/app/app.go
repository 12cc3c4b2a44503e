// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"dmsprefs-core/alphabet"
	"dmsprefs-core/counts"
	"dmsprefs-core/infer"
	"dmsprefs-core/prefs"
	"dmsprefs-core/prior"
	"dmsprefs-core/ratio"
	"dmsprefs-core/sampler"
	"dmsprefs/internal/cli"
	"dmsprefs/internal/cmdutil"
	"dmsprefs/internal/config"
	"dmsprefs/internal/countsio"
	"dmsprefs/internal/runutil"
	"dmsprefs/internal/version"
	"dmsprefs/internal/writers"
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("dmsprefs")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(outw)
		fs.Usage()
		if err := outw.Flush(); writers.IsBrokenPipe(err) {
			return 0
		} else if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		return 0
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			if e := outw.Flush(); writers.IsBrokenPipe(e) {
				return 0
			} else if e != nil {
				_, _ = fmt.Fprintln(stderr, e)
				return 3
			}
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "dmsprefs version %s\n", version.Version)
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return 0
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}

	if opts.ConfigFile != "" {
		cf, err := config.Load(opts.ConfigFile)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 2
		}
		if err := config.Overlay(&opts, cf); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 2
		}
	}

	log := cmdutil.NewLogger(stderr, opts.Quiet).With("run", runutil.NewRunID())

	tb, err := loadTables(opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	result, err := estimate(parent, opts, tb, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	if err := writers.WritePrefs(outw, opts.Output, result, opts.Header); err != nil {
		if writers.IsBrokenPipe(err) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return 0
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// tables bundles the loaded inputs with the detected error model.
type tables struct {
	Pre, Post       *counts.Table
	ErrPre, ErrPost *counts.Table
	Model           counts.ErrorModel
}

func loadTables(opts cli.Options) (*tables, error) {
	model, err := countsio.DetectErrorModel(opts.ErrPre, opts.ErrPost)
	if err != nil {
		return nil, err
	}
	tb := &tables{Model: model}
	if tb.Pre, err = countsio.ReadTable(opts.Pre); err != nil {
		return nil, err
	}
	if tb.Post, err = countsio.ReadTable(opts.Post); err != nil {
		return nil, err
	}
	switch model {
	case counts.ModelSame:
		if tb.ErrPre, err = countsio.ReadTable(opts.ErrPre); err != nil {
			return nil, err
		}
		tb.ErrPost = tb.ErrPre
	case counts.ModelDifferent:
		if tb.ErrPre, err = countsio.ReadTable(opts.ErrPre); err != nil {
			return nil, err
		}
		if tb.ErrPost, err = countsio.ReadTable(opts.ErrPost); err != nil {
			return nil, err
		}
	}
	if err := counts.Consistent(tb.Pre, tb.Post, tb.ErrPre, tb.ErrPost); err != nil {
		return nil, err
	}
	if opts.ExcludeStop {
		counts.TrimTerminalStop(tb.Pre, tb.Post, tb.ErrPre, tb.ErrPost)
	}
	return tb, nil
}

func estimate(ctx context.Context, opts cli.Options, tb *tables, log *slog.Logger) (*prefs.Table, error) {
	chars, err := alphabet.Chars(opts.Chartype)
	if err != nil {
		return nil, err
	}
	if opts.Method == cli.MethodRatio {
		pre, post, errPre, errPost, err := atGranularity(opts, tb)
		if err != nil {
			return nil, err
		}
		return ratio.Estimate(chars, pre, post, errPre, errPost, opts.Pseudocount)
	}
	return inferPrefs(ctx, opts, tb, chars, log)
}

// atGranularity collapses codon tables to the amino-acid character set
// when the chartype asks for it. Already-collapsed inputs pass through.
func atGranularity(opts cli.Options, tb *tables) (pre, post, errPre, errPost *counts.Table, err error) {
	pre, post, errPre, errPost = tb.Pre, tb.Post, tb.ErrPre, tb.ErrPost
	if opts.Chartype == alphabet.CharsCodon {
		if !tb.Pre.IsCodon() {
			return nil, nil, nil, nil, errors.New("--chartype codon requires codon-granularity counts")
		}
		return pre, post, errPre, errPost, nil
	}
	if !tb.Pre.IsCodon() {
		return pre, post, errPre, errPost, nil
	}
	withStop := opts.Chartype == alphabet.CharsAAStop
	if pre, err = counts.CollapseToAA(tb.Pre, withStop); err != nil {
		return nil, nil, nil, nil, err
	}
	if post, err = counts.CollapseToAA(tb.Post, withStop); err != nil {
		return nil, nil, nil, nil, err
	}
	if tb.ErrPre != nil {
		if errPre, err = counts.CollapseToAA(tb.ErrPre, withStop); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if tb.ErrPost != nil {
		if errPost, err = counts.CollapseToAA(tb.ErrPost, withStop); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return pre, post, errPre, errPost, nil
}

func inferPrefs(ctx context.Context, opts cli.Options, tb *tables, chars []string, log *slog.Logger) (*prefs.Table, error) {
	var errPost *counts.Table
	if tb.Model == counts.ModelDifferent {
		errPost = tb.ErrPost
	}
	cfg := infer.Config{
		Chars:       chars,
		Model:       tb.Model,
		Workers:     opts.Workers,
		Seed:        opts.Seed,
		Poll:        runutil.EffectivePoll(0),
		Conc:        prior.Concentrations{Pi: opts.ConcPi, Mu: opts.ConcMu, Err: opts.ConcErr},
		ExcludeStop: opts.ExcludeStop || opts.Chartype == alphabet.CharsAA,
		Log:         log,
	}
	return infer.Run(ctx, cfg, tb.Pre, tb.Post, tb.ErrPre, errPost, sampler.NewMCMC())
}
