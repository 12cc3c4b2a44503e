// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	// Lower layers must not reach up into the app shells or CLIs.
	bans := map[string][]string{
		"dmsprefs/internal/output": {
			"dmsprefs/internal/app", "dmsprefs/internal/diffselapp",
			"dmsprefs/internal/cli", "dmsprefs/internal/diffselcli",
			"dmsprefs/internal/writers", "dmsprefs/cmd/",
		},
		"dmsprefs/internal/writers": {
			"dmsprefs/internal/app", "dmsprefs/internal/diffselapp",
			"dmsprefs/internal/cli", "dmsprefs/internal/diffselcli",
			"dmsprefs/cmd/",
		},
		"dmsprefs/internal/countsio": {
			"dmsprefs/internal/app", "dmsprefs/internal/diffselapp",
			"dmsprefs/internal/cli", "dmsprefs/internal/diffselcli",
			"dmsprefs/internal/writers", "dmsprefs/internal/output", "dmsprefs/cmd/",
		},
		"dmsprefs/internal/cli": {
			"dmsprefs/internal/app", "dmsprefs/internal/diffselapp", "dmsprefs/cmd/",
		},
		"dmsprefs/internal/config": {
			"dmsprefs/internal/app", "dmsprefs/internal/diffselapp", "dmsprefs/cmd/",
		},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "dmsprefs/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				for _, f := range forbidden {
					if strings.HasPrefix(dep, f) {
						violations = append(violations, imp+" imports "+dep)
					}
				}
			}
		}
	}
	if len(violations) > 0 {
		t.Fatalf("layering violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
