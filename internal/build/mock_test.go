package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/pkgs/buildsys"
	"github.com/goplus/mrjar/pkgs/buildsys/javac"
)

// mockCompiler writes one class file per source file, holding the unit name
// and release, and records every invocation.
type mockCompiler struct {
	mu    sync.Mutex
	calls []buildsys.Invocation
	fail  map[string]bool // unit names to fail
}

func (m *mockCompiler) Compile(ctx context.Context, inv buildsys.Invocation) error {
	m.mu.Lock()
	m.calls = append(m.calls, inv)
	m.mu.Unlock()

	if m.fail[inv.Unit] {
		return &buildsys.CompileError{Unit: inv.Unit, Release: inv.Release, Err: fmt.Errorf("boom")}
	}
	if err := os.RemoveAll(inv.OutputDir); err != nil {
		return err
	}
	if err := os.MkdirAll(inv.OutputDir, 0755); err != nil {
		return err
	}
	for _, src := range inv.Sources {
		rel := relToRoots(src, inv.SourceRoots)
		dst := filepath.Join(inv.OutputDir, strings.TrimSuffix(rel, ".java")+".class")
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		content := inv.Unit + "@" + strconv.Itoa(inv.Release)
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCompiler) call(unit string) (buildsys.Invocation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.calls {
		if inv.Unit == unit {
			return inv, true
		}
	}
	return buildsys.Invocation{}, false
}

func relToRoots(path string, roots []string) string {
	for _, root := range roots {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(path)
}

// mockResolver pretends every JDK is installed except the ones in missing.
type mockResolver struct {
	missing map[int]bool
}

func (m *mockResolver) Resolve(version int) (toolchain.Toolchain, error) {
	if m.missing[version] {
		return toolchain.Toolchain{}, fmt.Errorf("java %d: %w", version, toolchain.ErrNotFound)
	}
	return toolchain.Toolchain{
		Version: version,
		Full:    "v" + strconv.Itoa(version) + ".0.0",
		Home:    filepath.Join("/jdk", strconv.Itoa(version)),
	}, nil
}

type testCall struct {
	toolchain int
	launch    javac.TestLaunch
}

type checkCall struct {
	toolchain int
	check     javac.ModuleCheck
}

// mockTools records test launches and module checks.
type mockTools struct {
	tests  []testCall
	checks []checkCall
}

func (m *mockTools) RunTests(ctx context.Context, tc toolchain.Toolchain, l javac.TestLaunch) error {
	m.tests = append(m.tests, testCall{toolchain: tc.Version, launch: l})
	return nil
}

func (m *mockTools) CheckModule(ctx context.Context, tc toolchain.Toolchain, c javac.ModuleCheck) error {
	m.checks = append(m.checks, checkCall{toolchain: tc.Version, check: c})
	return nil
}
