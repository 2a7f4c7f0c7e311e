package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/goplus/mrjar/internal/testwire"
	"github.com/goplus/mrjar/pkgs/buildsys/javac"
)

// ErrNoLauncher is returned when tests run without a configured launcher.
var ErrNoLauncher = errors.New("no test launcher configured")

// Test runs the enabled test runs of p, or only the runs named in names.
// The project must have been built.
func (b *Builder) Test(ctx context.Context, p *Project, names ...string) error {
	log := logr.FromContextOrDiscard(ctx)
	runs, err := selectRuns(p.Runs(), names)
	if err != nil {
		return err
	}
	if p.Launcher == "" {
		return ErrNoLauncher
	}

	var errs []error
	for _, r := range runs {
		if !r.Enabled {
			log.Info("skipping test run", "run", r.Name, "reason", r.Reason)
			continue
		}
		tc, err := b.Toolchains.Resolve(r.Version)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, err))
			continue
		}
		log.Info("running tests", "run", r.Name, "toolchain", tc.Version)
		err = b.Runner.RunTests(ctx, tc, javac.TestLaunch{
			Launcher:    p.Launcher,
			ClassesDirs: r.ClassesDirs,
			Classpath:   r.Classpath,
			Preview:     p.Versions.Preview,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s failed: %w", r.Name, err))
		}
	}
	return errors.Join(errs...)
}

func selectRuns(runs []*testwire.Run, names []string) ([]*testwire.Run, error) {
	if len(names) == 0 {
		return runs, nil
	}
	byName := make(map[string]*testwire.Run, len(runs))
	for _, r := range runs {
		byName[r.Name] = r
	}
	ret := make([]*testwire.Run, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown test run %q", name)
		}
		ret = append(ret, r)
	}
	return ret, nil
}
