// internal/diffselapp/app.go
package diffselapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"dmsprefs-core/alphabet"
	"dmsprefs-core/counts"
	"dmsprefs-core/diffsel"
	"dmsprefs/internal/countsio"
	"dmsprefs/internal/diffselcli"
	"dmsprefs/internal/version"
	"dmsprefs/internal/writers"
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := diffselcli.NewFlagSet("dmsdiffsel")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = diffselcli.ParseArgs(fs, []string{"-h"})
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

	opts, err := diffselcli.ParseArgs(fs, argv)
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
		_, _ = fmt.Fprintf(outw, "dmsdiffsel version %s\n", version.Version)
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return 0
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return 3
		}
		return 0
	}

	if err := parent.Err(); err != nil {
		return 130
	}

	muts, err := compute(opts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.SiteFile != "" {
		if err := writeSiteFile(opts.SiteFile, muts, opts.Header); err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
	}

	if err := writers.WriteMutDiffSel(outw, opts.Output, muts, opts.Header); err != nil {
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

func compute(opts diffselcli.Options) ([]diffsel.Mut, error) {
	sel, err := countsio.ReadTable(opts.Sel)
	if err != nil {
		return nil, err
	}
	mock, err := countsio.ReadTable(opts.Mock)
	if err != nil {
		return nil, err
	}
	var errCtl *counts.Table
	if opts.ErrCtl != "" {
		if errCtl, err = countsio.ReadTable(opts.ErrCtl); err != nil {
			return nil, err
		}
	}
	if err := counts.Consistent(sel, mock, errCtl); err != nil {
		return nil, err
	}
	if opts.ExcludeStop {
		counts.TrimTerminalStop(sel, mock, errCtl)
	}

	if opts.Chartype == alphabet.CharsCodon && !sel.IsCodon() {
		return nil, errors.New("--chartype codon requires codon-granularity counts")
	}

	// Correct at the granularity the counts were taken at, then collapse.
	fsel, err := counts.Corrected(sel, errCtl)
	if err != nil {
		return nil, err
	}
	fmock, err := counts.Corrected(mock, errCtl)
	if err != nil {
		return nil, err
	}
	if opts.Chartype != alphabet.CharsCodon && sel.IsCodon() {
		withStop := opts.Chartype == alphabet.CharsAAStop
		if fsel, err = fsel.CollapseToAA(withStop); err != nil {
			return nil, err
		}
		if fmock, err = fmock.CollapseToAA(withStop); err != nil {
			return nil, err
		}
	}

	muts, err := diffsel.ComputeCorrected(fsel, fmock, opts.Pseudocount, opts.Mincount)
	if err != nil {
		return nil, err
	}
	diffsel.SortOutput(muts)
	return muts, nil
}

func writeSiteFile(path string, muts []diffsel.Mut, header bool) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fh)
	if err := writers.WriteSiteDiffSel(w, diffsel.ToSite(muts), header); err != nil {
		_ = fh.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
