package build

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goplus/mrjar/internal/archive"
	"github.com/goplus/mrjar/internal/publish"
	"github.com/goplus/mrjar/internal/testwire"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

type planDoc struct {
	Name     string              `yaml:"name"`
	Versions versionsDoc         `yaml:"versions"`
	Chains   []chainDoc          `yaml:"chains"`
	Outgoing []*publish.Elements `yaml:"outgoing,omitempty"`
	Tests    []*testwire.Run     `yaml:"tests,omitempty"`
}

type versionsDoc struct {
	Target           int  `yaml:"target"`
	MinimumToolchain int  `yaml:"minimumToolchain"`
	Strict           bool `yaml:"strict"`
	Running          int  `yaml:"running"`
	Actual           int  `yaml:"actual"`
}

type chainDoc struct {
	Unit     string      `yaml:"unit"`
	Module   string      `yaml:"module,omitempty"`
	Archive  string      `yaml:"archive,omitempty"`
	Base     unitDoc     `yaml:"base"`
	Variants []unitDoc   `yaml:"variants,omitempty"`
	Layout   []layoutDoc `yaml:"layout,omitempty"`
}

type unitDoc struct {
	Name             string   `yaml:"name"`
	Release          int      `yaml:"release"`
	Toolchain        int      `yaml:"toolchain"`
	Compile          string   `yaml:"compile"`
	Sources          []string `yaml:"sources,flow"`
	ClassesDir       string   `yaml:"classesDir"`
	CompileClasspath []string `yaml:"compileClasspath,omitempty"`
	RuntimeClasspath []string `yaml:"runtimeClasspath,omitempty"`
	PatchModule      []string `yaml:"patchModule,omitempty,flow"`
}

type layoutDoc struct {
	Prefix string   `yaml:"prefix"`
	Dirs   []string `yaml:"dirs"`
}

// Describe writes the plan of p as a YAML document.
func (p *Project) Describe(w io.Writer) error {
	doc := planDoc{
		Name: p.Name,
		Versions: versionsDoc{
			Target:           p.Versions.Target,
			MinimumToolchain: p.Versions.MinimumToolchain,
			Strict:           p.Versions.Strict,
			Running:          p.Versions.Running,
			Actual:           p.Versions.Actual(),
		},
		Outgoing: p.Elements,
		Tests:    p.Runs(),
	}
	for _, c := range p.Plan.Chains() {
		cd := chainDoc{
			Unit:    c.Base.Name,
			Module:  c.Module,
			Archive: c.Base.Packaging.Archive,
			Base:    p.describeUnit(c.Base, p.Versions.Target, nil),
		}
		for _, v := range c.Variants() {
			cd.Variants = append(cd.Variants, p.describeUnit(v.Unit, v.Version(), v))
		}
		if cd.Archive != "" {
			for _, e := range archive.ClassesLayout(c).Entries {
				cd.Layout = append(cd.Layout, layoutDoc{Prefix: e.Prefix, Dirs: e.Dirs})
			}
		}
		doc.Chains = append(doc.Chains, cd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (p *Project) describeUnit(u *unit.Unit, release int, v *variant.Variant) unitDoc {
	d := unitDoc{
		Name:             u.Name,
		Release:          release,
		Toolchain:        p.Versions.For(release),
		Compile:          u.CompileTaskName(),
		Sources:          u.SourceRoots,
		ClassesDir:       u.Output.ClassesDir,
		CompileClasspath: u.CompileClasspath,
		RuntimeClasspath: u.RuntimeClasspath,
	}
	if v != nil {
		d.PatchModule = v.ModulePatch.Args()
	}
	return d
}
