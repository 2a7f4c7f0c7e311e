package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/goplus/mrjar/pkgs/buildsys/javac"
)

// Validate checks the module descriptor of every built modular archive
// against all of its versions. Units without a module name or archive are
// skipped.
func (b *Builder) Validate(ctx context.Context, p *Project) error {
	log := logr.FromContextOrDiscard(ctx)
	var errs []error
	for _, c := range p.Plan.Chains() {
		base := c.Base
		if c.Module == "" || base.Packaging.Archive == "" {
			continue
		}
		maxVersion := c.MaxVersion()
		tc, err := b.Toolchains.Resolve(p.Versions.For(maxVersion))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to validate %s: %w", base.Name, err))
			continue
		}
		log.Info("validating module", "unit", base.Name, "module", c.Module, "toolchain", tc.Version)
		err = b.Checker.CheckModule(ctx, tc, javac.ModuleCheck{
			Module:       c.Module,
			Archive:      base.Packaging.Archive,
			ModulePath:   base.CompileClasspath,
			MultiRelease: maxVersion,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
