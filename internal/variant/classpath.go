package variant

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/mrjar/pkgs/unit"
)

// ModulePatch lets a variant compile as part of the module whose earlier
// versions are the outputs of the base unit and the preceding variants.
type ModulePatch struct {
	Module  string
	Outputs []unit.Output
}

// Dirs returns the output directories of p in order.
func (p ModulePatch) Dirs() []string {
	lists := make([][]string, len(p.Outputs))
	for i, o := range p.Outputs {
		lists[i] = o.Dirs()
	}
	return unit.Union(lists...)
}

// Args returns the compiler arguments for p, or nil if no module is named.
func (p ModulePatch) Args() []string {
	if p.Module == "" {
		return nil
	}
	patch := p.Dirs()
	dirs := make([]string, len(patch))
	for i, dir := range patch {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		dirs[i] = dir
	}
	return []string{
		"--patch-module",
		p.Module + "=" + strings.Join(dirs, string(os.PathListSeparator)),
	}
}

// Compose computes the classpaths and module patch of every variant of c.
// Parents are composed before their children, so each variant sees the
// cumulative view of all earlier units.
func Compose(c *Chain) {
	for _, v := range c.variants {
		u, parent := v.Unit, v.Unit.Parent
		u.CompileClasspath = unit.Union(
			u.Classpath,
			u.Implementation,
			parent.CompileClasspath,
			parent.Output.Dirs(),
		)
		u.RuntimeClasspath = unit.Union(
			u.Output.Dirs(),
			u.Implementation,
			parent.RuntimeClasspath,
		)

		outputs := make([]unit.Output, 0, v.Index+1)
		outputs = append(outputs, c.Base.Output)
		for _, prev := range c.variants[:v.Index] {
			outputs = append(outputs, prev.Unit.Output)
		}
		v.ModulePatch = ModulePatch{Module: c.Module, Outputs: outputs}
	}
}
