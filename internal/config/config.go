// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dmsprefs/internal/cli"
)

// File is an optional YAML run-config. Every field mirrors a flag;
// values apply only where the flag was not given on the command line.
type File struct {
	Pre     string `yaml:"pre"`
	Post    string `yaml:"post"`
	ErrPre  string `yaml:"errpre"`
	ErrPost string `yaml:"errpost"`

	Chartype    string   `yaml:"chartype"`
	Method      string   `yaml:"method"`
	Pseudocount *int     `yaml:"pseudocount"`
	ConcPi      *float64 `yaml:"conc_pi"`
	ConcMu      *float64 `yaml:"conc_mu"`
	ConcErr     *float64 `yaml:"conc_err"`
	Seed        *uint64  `yaml:"seed"`
	ExcludeStop *bool    `yaml:"excludestop"`

	Workers *int   `yaml:"workers"`
	Output  string `yaml:"output"`
}

// Load reads and decodes a YAML run-config. Unknown keys are rejected
// so a typo does not silently fall back to a default.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &f, nil
}

// Overlay fills opt from f for every flag that was not set explicitly,
// then re-runs flag validation on the merged result.
func Overlay(opt *cli.Options, f *File) error {
	if f.Pre != "" && !opt.Explicit("pre") {
		opt.Pre = f.Pre
	}
	if f.Post != "" && !opt.Explicit("post") {
		opt.Post = f.Post
	}
	if f.ErrPre != "" && !opt.Explicit("errpre") {
		opt.ErrPre = f.ErrPre
	}
	if f.ErrPost != "" && !opt.Explicit("errpost") {
		opt.ErrPost = f.ErrPost
	}
	if f.Chartype != "" && !opt.Explicit("chartype") {
		opt.Chartype = f.Chartype
	}
	if f.Method != "" && !opt.Explicit("method") {
		opt.Method = f.Method
	}
	if f.Pseudocount != nil && !opt.Explicit("pseudocount") {
		opt.Pseudocount = *f.Pseudocount
	}
	if f.ConcPi != nil && !opt.Explicit("conc-pi") {
		opt.ConcPi = *f.ConcPi
	}
	if f.ConcMu != nil && !opt.Explicit("conc-mu") {
		opt.ConcMu = *f.ConcMu
	}
	if f.ConcErr != nil && !opt.Explicit("conc-err") {
		opt.ConcErr = *f.ConcErr
	}
	if f.Seed != nil && !opt.Explicit("seed") {
		opt.Seed = *f.Seed
	}
	if f.ExcludeStop != nil && !opt.Explicit("excludestop") {
		opt.ExcludeStop = *f.ExcludeStop
	}
	if f.Workers != nil && !opt.Explicit("workers") {
		opt.Workers = *f.Workers
	}
	if f.Output != "" && !opt.Explicit("output") {
		opt.Output = f.Output
	}
	return cli.Validate(opt)
}
