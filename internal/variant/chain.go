package variant

import (
	"path/filepath"

	"github.com/goplus/mrjar/pkgs/unit"
)

// Variant is one derived unit of a chain.
type Variant struct {
	Unit  *unit.Unit
	Index int

	// ModulePatch is filled by Compose.
	ModulePatch ModulePatch
}

// Version returns the target version of v.
func (v *Variant) Version() int {
	return v.Unit.Release
}

// Parent returns the unit v is derived from: the base unit for the first
// variant, the previous variant otherwise.
func (v *Variant) Parent() *unit.Unit {
	return v.Unit.Parent
}

// Chain is the ordered list of version-specific units derived from one base unit.
type Chain struct {
	Base   *unit.Unit
	Module string

	variants []*Variant
}

// BuildChain derives one unit per version from base. versions must already be
// validated (see ValidateVersions).
func BuildChain(base *unit.Unit, versions []int) *Chain {
	c := &Chain{Base: base, Module: base.ModuleName}
	parent := base
	for i, version := range versions {
		name := unit.VersionName(base, version)
		u := &unit.Unit{
			Name:          name,
			SourceRoots:   unit.SiblingRoots(base.SourceRoots, version),
			ResourceRoots: unit.SiblingRoots(base.ResourceRoots, version),
			Output: unit.Output{
				ClassesDir:   siblingOutput(base.Output.ClassesDir, name),
				ResourcesDir: siblingOutput(base.Output.ResourcesDir, name),
			},
			Implementation: parent.Output.Dirs(),
			ModuleName:     base.ModuleName,
			Release:        version,
			Parent:         parent,
			Test:           base.Test,
		}
		c.variants = append(c.variants, &Variant{Unit: u, Index: i})
		parent = u
	}
	return c
}

// Len returns the number of variants in c.
func (c *Chain) Len() int {
	return len(c.variants)
}

// Empty reports whether c has no variants.
func (c *Chain) Empty() bool {
	return len(c.variants) == 0
}

// At returns the i-th variant.
func (c *Chain) At(i int) *Variant {
	return c.variants[i]
}

// Variants returns the variants of c in ascending version order.
func (c *Chain) Variants() []*Variant {
	ret := make([]*Variant, len(c.variants))
	copy(ret, c.variants)
	return ret
}

// Versions returns the target versions of c in ascending order.
func (c *Chain) Versions() []int {
	ret := make([]int, len(c.variants))
	for i, v := range c.variants {
		ret[i] = v.Version()
	}
	return ret
}

// MaxVersion returns the newest version of c, or 0 if c is empty.
func (c *Chain) MaxVersion() int {
	if len(c.variants) == 0 {
		return 0
	}
	return c.variants[len(c.variants)-1].Version()
}

// Units returns the base unit followed by every variant unit.
func (c *Chain) Units() []*unit.Unit {
	ret := make([]*unit.Unit, 0, len(c.variants)+1)
	ret = append(ret, c.Base)
	for _, v := range c.variants {
		ret = append(ret, v.Unit)
	}
	return ret
}

func siblingOutput(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(filepath.Clean(dir)), name)
}
