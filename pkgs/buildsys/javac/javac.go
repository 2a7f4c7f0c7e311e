// Package javac drives the JDK command line tools: javac to compile units,
// jdeps to check modules and java to launch tests.
package javac

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/pkgs/buildsys"
)

// Javac compiles units with the javac of the selected toolchain.
type Javac struct {
	// Args are appended to every compilation, before per-unit arguments.
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
	env    map[string]string
}

var _ buildsys.Compiler = (*Javac)(nil)

// New creates a Javac writing tool output to the process streams.
func New() *Javac {
	return &Javac{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		env:    map[string]string{},
	}
}

// Env sets an environment variable for every spawned tool.
func (j *Javac) Env(key, val string) {
	if j.env == nil {
		j.env = map[string]string{}
	}
	j.env[key] = val
}

// Compile implements buildsys.Compiler. The output directory is recreated
// so classes of deleted sources never reach the archive.
func (j *Javac) Compile(ctx context.Context, inv buildsys.Invocation) error {
	if err := os.RemoveAll(inv.OutputDir); err != nil {
		return err
	}
	if err := os.MkdirAll(inv.OutputDir, 0755); err != nil {
		return err
	}
	if len(inv.Sources) == 0 {
		return nil
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("running javac",
		"unit", inv.Unit, "release", inv.Release, "toolchain", inv.Toolchain.Version, "sources", len(inv.Sources))

	if err := j.run(ctx, inv.Toolchain.Tool("javac"), j.CompileArgs(inv)); err != nil {
		return &buildsys.CompileError{Unit: inv.Unit, Release: inv.Release, Err: err}
	}
	return nil
}

// CompileArgs returns the javac command line for inv.
func (j *Javac) CompileArgs(inv buildsys.Invocation) []string {
	args := []string{
		"-encoding", "UTF-8",
		// Keep parameter names for reflection.
		"-parameters",
		"-Xlint:all",
	}
	modern := inv.Toolchain.Version >= 9
	if modern {
		args = append(args, "-Xdoclint", "-Xdoclint:-missing")
	}
	if inv.Release > 0 {
		release := strconv.Itoa(inv.Release)
		if modern {
			args = append(args, "--release", release)
		} else {
			args = append(args, "-source", sourceLevel(inv.Release), "-target", sourceLevel(inv.Release))
		}
	}
	if inv.Preview {
		args = append(args, "--enable-preview")
	}
	args = append(args, "-d", inv.OutputDir)
	if len(inv.Classpath) > 0 {
		args = append(args, "-classpath", strings.Join(inv.Classpath, string(os.PathListSeparator)))
	}
	args = append(args, j.Args...)
	args = append(args, inv.Args...)
	args = append(args, inv.Sources...)
	return args
}

// ModuleCheck describes a jdeps module validation.
type ModuleCheck struct {
	Module       string
	Archive      string
	ModulePath   []string
	MultiRelease int // 0 if the archive has no versioned entries
}

// CheckModule runs jdeps --check against the module packed in c.Archive.
func (j *Javac) CheckModule(ctx context.Context, tc toolchain.Toolchain, c ModuleCheck) error {
	var args []string
	if c.MultiRelease > 0 {
		args = append(args, "--multi-release", strconv.Itoa(c.MultiRelease))
	}
	path := append([]string{c.Archive}, c.ModulePath...)
	args = append(args,
		"--module-path", strings.Join(path, string(os.PathListSeparator)),
		"--check", c.Module,
	)
	if err := j.run(ctx, tc.Tool("jdeps"), args); err != nil {
		return fmt.Errorf("module %s failed validation: %w", c.Module, err)
	}
	return nil
}

// TestLaunch describes one test run through the JUnit console launcher.
type TestLaunch struct {
	Launcher    string
	ClassesDirs []string
	Classpath   []string
	Preview     bool
}

// RunTests launches the test classes of l with the java of tc.
func (j *Javac) RunTests(ctx context.Context, tc toolchain.Toolchain, l TestLaunch) error {
	sep := string(os.PathListSeparator)
	var args []string
	if l.Preview {
		args = append(args, "--enable-preview")
	}
	args = append(args,
		"-jar", l.Launcher,
		"--class-path", strings.Join(append(append([]string{}, l.ClassesDirs...), l.Classpath...), sep),
		"--scan-class-path="+strings.Join(l.ClassesDirs, sep),
		"--fail-if-no-tests",
	)
	return j.run(ctx, tc.Tool("java"), args)
}

func (j *Javac) run(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = j.Stdout
	cmd.Stderr = j.Stderr
	if len(j.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), j.env)
	}
	return cmd.Run()
}

// sourceLevel renders a release the way pre-9 compilers expect it: 1.8, 9, 10...
func sourceLevel(release int) string {
	if release < 9 {
		return "1." + strconv.Itoa(release)
	}
	return strconv.Itoa(release)
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
