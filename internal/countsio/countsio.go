// internal/countsio/countsio.go

// Package countsio reads per-site count tables from TSV files and detects
// which error model the supplied files imply.
package countsio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dmsprefs-core/counts"
)

// ReadTable loads a count table. The first non-comment line is the header:
// `site wildtype <char...>`; every following line carries one site's
// counts in the header's column order. Blank lines and '#' comments are
// skipped. Rows are returned sorted in natural site order and validated.
func ReadTable(path string) (*counts.Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	var tbl *counts.Table
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if tbl == nil {
			if len(f) < 3 || !strings.EqualFold(f[0], "site") || !strings.EqualFold(f[1], "wildtype") {
				return nil, fmt.Errorf("%s:%d header must be 'site wildtype <char...>'", path, ln)
			}
			tbl = &counts.Table{Chars: normalizeChars(f[2:])}
			continue
		}
		if len(f) != len(tbl.Chars)+2 {
			return nil, fmt.Errorf("%s:%d want %d fields, got %d", path, ln, len(tbl.Chars)+2, len(f))
		}
		row := counts.Row{
			Site:     f[0],
			Wildtype: strings.ToUpper(f[1]),
			Counts:   make(map[string]int, len(tbl.Chars)),
		}
		for i, c := range tbl.Chars {
			n, err := strconv.Atoi(f[i+2])
			if err != nil {
				return nil, fmt.Errorf("%s:%d bad count for %s: %v", path, ln, c, err)
			}
			row.Counts[c] = n
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if tbl == nil {
		return nil, fmt.Errorf("%s: empty counts file", path)
	}
	tbl.SortRows()
	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

func normalizeChars(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c == "*" {
			out[i] = c
			continue
		}
		out[i] = strings.ToUpper(c)
	}
	return out
}

// DetectErrorModel decides the error model from the supplied error-control
// paths: none when both are empty, same when both resolve to the identical
// underlying file, different otherwise. Supplying only one path is a
// configuration error.
func DetectErrorModel(errPre, errPost string) (counts.ErrorModel, error) {
	switch {
	case errPre == "" && errPost == "":
		return counts.ModelNone, nil
	case errPre == "" || errPost == "":
		return "", fmt.Errorf("countsio: error-control files must be given for both conditions or neither")
	}
	a, err := os.Stat(errPre)
	if err != nil {
		return "", err
	}
	b, err := os.Stat(errPost)
	if err != nil {
		return "", err
	}
	if os.SameFile(a, b) {
		return counts.ModelSame, nil
	}
	return counts.ModelDifferent, nil
}
