package constraints

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type goListPackage struct {
	ImportPath string
	Imports    []string
}

const modulePrefix = "github.com/jacoelho/tq/internal/"

// foundation packages describe trees and paths; they sit below everything.
var foundation = map[string]struct{}{
	modulePrefix + "stack":  {},
	modulePrefix + "number": {},
	modulePrefix + "tree":   {},
	modulePrefix + "path":   {},
}

// engine packages transform trees and know nothing about the command line.
var engine = map[string]struct{}{
	modulePrefix + "flatten":   {},
	modulePrefix + "prune":     {},
	modulePrefix + "predicate": {},
	modulePrefix + "refine":    {},
}

func TestFoundationPackagesOnlyImportFoundation(t *testing.T) {
	t.Parallel()

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := foundation[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if !strings.HasPrefix(imp, modulePrefix) {
				continue
			}
			if _, ok := foundation[imp]; !ok {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found foundation packages importing upper layers:\n%s", strings.Join(violations, "\n"))
	}
}

func TestEnginePackagesDoNotImportFrontend(t *testing.T) {
	t.Parallel()

	frontend := []string{
		modulePrefix + "cli",
		modulePrefix + "config",
		modulePrefix + "exit",
		modulePrefix + "formatter",
		modulePrefix + "log",
		modulePrefix + "source",
		modulePrefix + "specfile",
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := engine[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			for _, f := range frontend {
				if imp == f {
					violations = append(violations, pkg.ImportPath+" imports "+imp)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found engine packages importing frontend packages:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPurePackagesAvoidSideEffectImports(t *testing.T) {
	t.Parallel()

	forbidden := map[string]struct{}{
		"os":           {},
		"os/exec":      {},
		"net/http":     {},
		"math/rand":    {},
		"math/rand/v2": {},
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		_, isFoundation := foundation[pkg.ImportPath]
		_, isEngine := engine[pkg.ImportPath]
		if !isFoundation && !isEngine {
			continue
		}
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports forbidden package "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports in pure packages:\n%s", strings.Join(violations, "\n"))
	}
}

func goList(t *testing.T, patterns ...string) []goListPackage {
	t.Helper()

	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	cmd.Dir = repoRoot(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("go list failed: %v\nstderr:\n%s", err, stderr.String())
	}

	decoder := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var packages []goListPackage
	for decoder.More() {
		var pkg goListPackage
		if err := decoder.Decode(&pkg); err != nil {
			t.Fatalf("decode go list json: %v", err)
		}
		packages = append(packages, pkg)
	}

	return packages
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
