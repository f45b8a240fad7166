//go:build integration
// +build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/louisbranch/warroom"

// Domain packages hold pure rules; they must not reach storage, the engine,
// or any transport surface.
func TestDomainPackagesStayPure(t *testing.T) {
	forbidden := []string{
		modulePath + "/internal/services/game/storage",
		modulePath + "/internal/services/game/engine",
		modulePath + "/internal/services/game/api/httpapi",
		modulePath + "/internal/services/notifications",
	}
	assertNoImports(t, "./internal/services/game/domain/...", forbidden)
}

// The engine is transport-agnostic: every surface calls it, never the other
// way around.
func TestEngineDoesNotImportTransports(t *testing.T) {
	forbidden := []string{
		modulePath + "/internal/services/game/api/httpapi",
		modulePath + "/internal/services/mcp",
		modulePath + "/internal/services/notifications/hub",
		modulePath + "/internal/tools/scenario",
	}
	assertNoImports(t, "./internal/services/game/engine/...", forbidden)
}

// Transports mutate state only through the engine, never through the sqlite
// stores directly.
func TestTransportsGoThroughTheEngine(t *testing.T) {
	forbidden := []string{
		modulePath + "/internal/services/game/storage/sqlite",
	}
	assertNoImports(t, "./internal/services/game/api/httpapi/...", forbidden)
	assertNoImports(t, "./internal/services/mcp/...", forbidden)
}

func assertNoImports(t *testing.T, pattern string, forbidden []string) {
	t.Helper()

	config := &packages.Config{
		Mode:  packages.NeedName | packages.NeedImports | packages.NeedFiles,
		Tests: false,
		Dir:   guardrailRepoRoot(t),
	}
	pkgs, err := packages.Load(config, pattern)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("package load errors for %s", pattern)
	}
	if len(pkgs) == 0 {
		t.Fatalf("no packages matched %s", pattern)
	}

	var violations []string
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			for _, banned := range forbidden {
				if importPath == banned || strings.HasPrefix(importPath, banned+"/") {
					violations = append(violations, pkg.PkgPath+" imports "+importPath)
				}
			}
		}
	}
	if len(violations) > 0 {
		t.Fatalf("forbidden imports:\n- %s", strings.Join(violations, "\n- "))
	}
}

func guardrailRepoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get working dir: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			t.Fatal("go.mod not found")
		}
		wd = parent
	}
}
