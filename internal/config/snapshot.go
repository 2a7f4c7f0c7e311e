package config

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

// Declared is a base unit together with its declarations.
type Declared struct {
	Unit              *unit.Unit
	AlternateVersions []int
	DependsOn         []string
}

// Snapshot is the resolved, read-only view of a project. Paths are absolute.
type Snapshot struct {
	Name         string
	Dir          string
	OutputDir    string
	Reproducible bool

	// Versions carries the version policy. Running is left for the caller
	// to fill in once toolchains are discovered.
	Versions     toolchain.Versions
	TestWith     []int
	Toolchains   map[int]string
	CompilerArgs []string
	Launcher     string

	// Units are ordered so that every unit follows its dependencies.
	Units []Declared
}

// Snapshot resolves p. It must only be called on a validated project.
func (p *Project) Snapshot() (*Snapshot, error) {
	ordered, err := p.order()
	if err != nil {
		return nil, err
	}
	out := p.Path(p.Output)
	s := &Snapshot{
		Name:         p.Name,
		Dir:          p.Dir,
		OutputDir:    out,
		Reproducible: *p.Reproducible,
		Versions: toolchain.Versions{
			Target:           p.Java.Target,
			MinimumToolchain: p.Java.MinimumToolchain,
			Strict:           *p.Java.StrictVersions,
			Preview:          p.Java.PreviewFeatures,
		},
		TestWith:     slices.Clone(p.Java.TestWith),
		Toolchains:   make(map[int]string, len(p.Java.Toolchains)),
		CompilerArgs: slices.Clone(p.Java.CompilerArgs),
		Launcher:     p.Path(p.Test.Launcher),
	}
	for v, home := range p.Java.Toolchains {
		s.Toolchains[v] = p.Path(home)
	}

	built := make(map[string]*unit.Unit, len(ordered))
	for _, decl := range ordered {
		u := &unit.Unit{
			Name:          decl.Name,
			SourceRoots:   p.paths(decl.Sources),
			ResourceRoots: p.paths(decl.Resources),
			Output: unit.Output{
				ClassesDir:   filepath.Join(out, "classes", "java", decl.Name),
				ResourcesDir: filepath.Join(out, "resources", decl.Name),
			},
			Classpath:  p.paths(decl.Classpath),
			ModuleName: decl.ModuleName,
			Test:       *decl.Test,
			Packaging: unit.Packaging{
				Archive:        p.archive(out, decl.Archive, decl, ""),
				SourcesArchive: p.archive(out, decl.SourcesArchive, decl, "sources"),
				Manifest:       maps.Clone(decl.Manifest),
				Library:        *decl.Library,
			},
		}
		var depCompile, depRuntime [][]string
		for _, name := range decl.DependsOn {
			dep := built[name]
			u.Implementation = unit.Union(u.Implementation, dep.Output.Dirs())
			depCompile = append(depCompile, dep.CompileClasspath)
			depRuntime = append(depRuntime, dep.RuntimeClasspath)
		}
		u.CompileClasspath = unit.Union(append([][]string{u.Classpath, u.Implementation}, depCompile...)...)
		u.RuntimeClasspath = unit.Union(append([][]string{u.Output.Dirs(), u.Implementation, u.Classpath}, depRuntime...)...)
		built[decl.Name] = u

		s.Units = append(s.Units, Declared{
			Unit:              u,
			AlternateVersions: slices.Clone(decl.AlternateVersions),
			DependsOn:         slices.Clone(decl.DependsOn),
		})
	}
	return s, nil
}

// archive returns the archive path of decl. Main archives default to
// <output>/libs/<project>[-classifier].jar; other library units get their
// name added to the file name. Non-library units other than main are not
// archived unless configured.
func (p *Project) archive(out, configured string, decl *Unit, classifier string) string {
	if configured != "" {
		return p.Path(configured)
	}
	base := p.Name
	switch {
	case decl.Name == unit.Main:
	case *decl.Library:
		base += "-" + decl.Name
	default:
		return ""
	}
	if classifier != "" {
		base += "-" + classifier
	}
	return filepath.Join(out, "libs", base+".jar")
}

// Declarations returns the variant declarations of the snapshot's units.
// actions are attached to the unit with the same name.
func (s *Snapshot) Declarations(actions map[string][]variant.Action) []variant.Declaration {
	ret := make([]variant.Declaration, len(s.Units))
	for i, d := range s.Units {
		ret[i] = variant.Declaration{
			Unit:              d.Unit,
			AlternateVersions: d.AlternateVersions,
			Actions:           actions[d.Unit.Name],
		}
	}
	return ret
}

// Unit returns the declared unit called name.
func (s *Snapshot) Unit(name string) (Declared, bool) {
	for _, d := range s.Units {
		if d.Unit.Name == name {
			return d, true
		}
	}
	return Declared{}, false
}
