// Package build runs planned projects: it compiles every chain, merges the
// archives, and records outgoing views and test runs.
package build

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/goplus/mrjar/internal/archive"
	"github.com/goplus/mrjar/internal/publish"
	"github.com/goplus/mrjar/internal/testwire"
	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/buildsys"
	"github.com/goplus/mrjar/pkgs/buildsys/javac"
	"github.com/goplus/mrjar/pkgs/unit"
)

// ErrDependencyFailed marks units skipped because a unit they depend on
// failed to build.
var ErrDependencyFailed = errors.New("dependency failed")

// Resolver selects the JDK for a feature release.
type Resolver interface {
	Resolve(version int) (toolchain.Toolchain, error)
}

// ModuleChecker validates module descriptors of built archives.
type ModuleChecker interface {
	CheckModule(ctx context.Context, tc toolchain.Toolchain, c javac.ModuleCheck) error
}

// TestRunner executes one test run.
type TestRunner interface {
	RunTests(ctx context.Context, tc toolchain.Toolchain, l javac.TestLaunch) error
}

// Builder executes projects.
type Builder struct {
	Compiler   buildsys.Compiler
	Toolchains Resolver
	Checker    ModuleChecker
	Runner     TestRunner
	// Jobs limits the number of chains built at once. Zero means GOMAXPROCS.
	Jobs int
}

// NewBuilder returns a Builder running every tool through j.
func NewBuilder(j *javac.Javac, toolchains Resolver) *Builder {
	return &Builder{Compiler: j, Toolchains: toolchains, Checker: j, Runner: j}
}

// Build compiles every chain of p and merges its archives. Chains wait for
// the chains of the units they depend on; a failing chain only stops its
// dependents. All failures are joined.
func (b *Builder) Build(ctx context.Context, p *Project) error {
	log := logr.FromContextOrDiscard(ctx)
	chains := p.Plan.Chains()

	done := make(map[string]chan struct{}, len(chains))
	for _, c := range chains {
		done[c.Base.Name] = make(chan struct{})
	}
	var (
		mu     sync.Mutex
		errs   []error
		failed = make(map[string]bool)
	)

	jobs := b.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// Chains are in dependency order, so a chain holding a slot never
	// waits on a chain that has not started.
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, c := range chains {
		c := c
		g.Go(func() error {
			defer close(done[c.Base.Name])
			for _, dep := range p.deps[c.Base.Name] {
				select {
				case <-done[dep]:
				case <-ctx.Done():
					return nil
				}
			}

			mu.Lock()
			var blocked string
			for _, dep := range p.deps[c.Base.Name] {
				if failed[dep] {
					blocked = dep
					break
				}
			}
			mu.Unlock()

			err := ctx.Err()
			switch {
			case err != nil:
			case blocked != "":
				err = fmt.Errorf("skipping %s: %s: %w", c.Base.Name, blocked, ErrDependencyFailed)
			default:
				err = b.buildChain(ctx, p, c)
			}
			if err != nil {
				log.Error(err, "build failed", "unit", c.Base.Name)
				mu.Lock()
				failed[c.Base.Name] = true
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := publish.WriteFile(p.OutgoingFile(), p.Elements); err != nil {
		return err
	}
	return testwire.WriteFile(p.TestsFile(), p.Runs())
}

// buildChain compiles the base unit and every variant in version order,
// then merges the archives.
func (b *Builder) buildChain(ctx context.Context, p *Project, c *variant.Chain) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("unit", c.Base.Name)
	ctx = logr.NewContext(ctx, log)

	if err := b.compile(ctx, p, c.Base, p.Versions.Target, nil); err != nil {
		return err
	}
	for _, v := range c.Variants() {
		if err := b.compile(ctx, p, v.Unit, v.Version(), v.ModulePatch.Args()); err != nil {
			return err
		}
	}

	pkg := c.Base.Packaging
	if pkg.Archive == "" {
		return nil
	}
	m := &archive.Merger{Reproducible: p.Reproducible}
	err := m.Merge(ctx, archive.Spec{
		Path:         pkg.Archive,
		Layout:       archive.ClassesLayout(c),
		Manifest:     pkg.Manifest,
		MultiRelease: !c.Empty(),
	})
	if err != nil {
		return err
	}
	if pkg.SourcesArchive != "" {
		err = m.Merge(ctx, archive.Spec{
			Path:         pkg.SourcesArchive,
			Layout:       archive.SourcesLayout(c),
			MultiRelease: !c.Empty(),
		})
		if err != nil {
			return err
		}
	}
	log.Info("built", "variants", c.Versions(), "archive", pkg.Archive)
	return nil
}

// compile processes the resources of u and compiles its sources for release.
func (b *Builder) compile(ctx context.Context, p *Project, u *unit.Unit, release int, extra []string) error {
	log := logr.FromContextOrDiscard(ctx)

	if err := buildsys.ProcessResources(u.ResourceRoots, u.Output.ResourcesDir); err != nil {
		return fmt.Errorf("failed to process resources of %s: %w", u, err)
	}
	sources, err := buildsys.SourceFiles(u.SourceRoots, ".java")
	if err != nil {
		return &buildsys.CompileError{Unit: u.Name, Release: release, Err: err}
	}

	inv := buildsys.Invocation{
		Unit:        u.Name,
		SourceRoots: u.SourceRoots,
		Sources:     sources,
		OutputDir:   u.Output.ClassesDir,
		Classpath:   u.CompileClasspath,
		Release:     release,
		Args:        append(slices.Clone(p.CompilerArgs), extra...),
		Preview:     p.Versions.Preview,
	}
	if len(sources) == 0 {
		log.V(1).Info("no source", "target", u.CompileTaskName())
	} else {
		tc, err := b.Toolchains.Resolve(p.Versions.For(release))
		if err != nil {
			return &buildsys.CompileError{Unit: u.Name, Release: release, Err: err}
		}
		inv.Toolchain = tc
		log.V(1).Info("compiling", "target", u.CompileTaskName(), "release", release, "toolchain", tc.Version)
	}
	return b.Compiler.Compile(ctx, inv)
}
