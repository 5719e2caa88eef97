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
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	outer := []string{
		"matchchains/internal/app", "matchchains/internal/appshell",
		"matchchains/internal/cli", "matchchains/internal/cmdutil",
		"matchchains/cmd/",
	}
	bans := map[string][]string{
		"matchchains/internal/fasta":      append([]string{"matchchains/internal/pipeline", "matchchains/internal/indexer"}, outer...),
		"matchchains/internal/reads":      append([]string{"matchchains/internal/pipeline", "matchchains/internal/indexer"}, outer...),
		"matchchains/internal/windowhash": append([]string{"matchchains/internal/pipeline", "matchchains/internal/indexer", "matchchains/internal/fasta"}, outer...),
		"matchchains/internal/indexfile":  append([]string{"matchchains/internal/pipeline", "matchchains/internal/indexer"}, outer...),
		"matchchains/internal/pipeline":   append([]string{"matchchains/internal/indexer", "matchchains/internal/windowhash"}, outer...),
		"matchchains/internal/indexer":    append([]string{"matchchains/internal/windowhash", "matchchains/internal/metrics"}, outer...),
		"matchchains/internal/metrics":    outer,
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "matchchains/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if imp != prefix {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "matchchains/") {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
