// Package testwire derives the test runs of a project: the default run on
// the actual toolchain and one run per tested Java version.
package testwire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

// DefaultRun is the name of the run on the actual toolchain.
const DefaultRun = "test"

// RunName returns the name of the run on Java version v.
func RunName(v int) string {
	return "testJava" + strconv.Itoa(v)
}

// Run is one test execution.
type Run struct {
	Name string `json:"name" yaml:"name"`
	// Version is the Java version the run executes on. It is the actual
	// toolchain version for the default run.
	Version     int      `json:"version" yaml:"version"`
	ClassesDirs []string `json:"classesDirs" yaml:"classesDirs"`
	Classpath   []string `json:"classpath" yaml:"classpath"`
	DependsOn   []string `json:"dependsOn" yaml:"dependsOn"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Reason      string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Wirer collects test runs while variants of the test unit are derived.
type Wirer struct {
	actual int
	runs   []*Run
	byVer  map[int]*Run
}

// TestWith returns the versions tests are executed on: the project target,
// the configured versions and the alternate versions of the test unit.
func TestWith(target int, configured, testAlternates []int) []int {
	ret := append([]int{target}, configured...)
	ret = append(ret, testAlternates...)
	slices.Sort(ret)
	return slices.Compact(ret)
}

// NewWirer creates the default run and one run per version in testWith for
// the base test unit.
func NewWirer(versions toolchain.Versions, testWith []int, test *unit.Unit) *Wirer {
	actual := versions.Actual()
	w := &Wirer{actual: actual, byVer: make(map[int]*Run)}
	deps := []string{test.CompileTaskName(), test.ProcessResourcesTaskName()}

	newRun := func(name string, version int) *Run {
		return &Run{
			Name:        name,
			Version:     version,
			ClassesDirs: []string{test.Output.ClassesDir},
			Classpath:   slices.Clone(test.RuntimeClasspath),
			DependsOn:   slices.Clone(deps),
			Enabled:     true,
		}
	}
	w.runs = append(w.runs, newRun(DefaultRun, actual))
	for _, v := range testWith {
		if _, ok := w.byVer[v]; ok {
			continue
		}
		r := newRun(RunName(v), v)
		switch {
		case !versions.Strict:
			r.Enabled, r.Reason = false, "strict versions disabled"
		case v == actual:
			r.Enabled, r.Reason = false, "covered by "+DefaultRun
		}
		w.runs = append(w.runs, r)
		w.byVer[v] = r
	}
	return w
}

// Add wires a derived test variant into the runs. It is a variant.Action.
func (w *Wirer) Add(d variant.Details) {
	u := d.Variant
	if w.actual >= d.Target {
		w.include(w.runs[0], u)
	}
	if r, ok := w.byVer[d.Target]; ok {
		w.include(r, u)
	}
}

func (w *Wirer) include(r *Run, u *unit.Unit) {
	r.ClassesDirs = unit.Union(r.ClassesDirs, []string{u.Output.ClassesDir})
	r.Classpath = unit.Union(r.Classpath, u.RuntimeClasspath)
	r.DependsOn = unit.Union(r.DependsOn, []string{u.CompileTaskName()})
}

// UseArchive makes every run test against archive instead of the loose
// output of the main unit.
func (w *Wirer) UseArchive(archive, jarTask string, mainOutput []string) {
	for _, r := range w.runs {
		r.DependsOn = unit.Union(r.DependsOn, []string{jarTask})
		r.Classpath = unit.Union([]string{archive}, unit.Minus(r.Classpath, mainOutput...))
	}
}

// Runs returns the runs, default first, then ascending by version.
func (w *Wirer) Runs() []*Run {
	return slices.Clone(w.runs)
}

// Run returns the run called name.
func (w *Wirer) Run(name string) (*Run, bool) {
	for _, r := range w.runs {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// WriteFile writes runs as indented JSON to path.
func WriteFile(path string, runs []*Run) error {
	if runs == nil {
		runs = []*Run{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode test runs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write test runs: %w", err)
	}
	return nil
}
