package build

import (
	"path/filepath"

	"github.com/goplus/mrjar/internal/config"
	"github.com/goplus/mrjar/internal/publish"
	"github.com/goplus/mrjar/internal/testwire"
	"github.com/goplus/mrjar/internal/toolchain"
	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

// Project is a fully planned project: every chain derived, every outgoing
// view and test run wired. Nothing is compiled yet.
type Project struct {
	*config.Snapshot

	Versions toolchain.Versions
	Plan     *variant.Plan
	Elements []*publish.Elements
	// Tests is nil if the project has no test unit.
	Tests *testwire.Wirer

	deps map[string][]string
}

// Prepare plans snap. versions is the snapshot's policy with the running
// toolchain filled in. Invalid variant declarations of all units are
// reported together and leave nothing planned.
func Prepare(snap *config.Snapshot, versions toolchain.Versions) (*Project, error) {
	p := &Project{
		Snapshot: snap,
		Versions: versions,
		deps:     make(map[string][]string, len(snap.Units)),
	}
	for _, d := range snap.Units {
		p.deps[d.Unit.Name] = d.DependsOn
	}

	actions := make(map[string][]variant.Action)
	if test, ok := testUnit(snap); ok {
		testWith := testwire.TestWith(versions.Target, snap.TestWith, test.AlternateVersions)
		p.Tests = testwire.NewWirer(versions, testWith, test.Unit)
		actions[test.Unit.Name] = []variant.Action{p.Tests.Add}
	}

	plan, err := variant.Derive(versions.Target, snap.Declarations(actions))
	if err != nil {
		return nil, err
	}
	p.Plan = plan

	for _, c := range plan.Chains() {
		e := publish.LibraryElements(c.Base, c.Base.Packaging.Archive)
		if e == nil {
			continue
		}
		publish.Publish(e, c)
		p.Elements = append(p.Elements, e)
	}

	if main, ok := plan.Chain(unit.Main); ok && !main.Empty() && p.Tests != nil {
		if archive := main.Base.Packaging.Archive; archive != "" {
			p.Tests.UseArchive(archive, main.Base.JarTaskName(), main.Base.Output.Dirs())
		}
	}
	return p, nil
}

// testUnit returns the unit whose variants feed the test runs: the unit
// called "test", or else the first test unit.
func testUnit(snap *config.Snapshot) (config.Declared, bool) {
	if d, ok := snap.Unit(testwire.DefaultRun); ok && d.Unit.Test {
		return d, true
	}
	for _, d := range snap.Units {
		if d.Unit.Test {
			return d, true
		}
	}
	return config.Declared{}, false
}

// OutgoingFile is where the outgoing views are written.
func (p *Project) OutgoingFile() string {
	return filepath.Join(p.OutputDir, "mrjar", "outgoing.json")
}

// TestsFile is where the test runs are written.
func (p *Project) TestsFile() string {
	return filepath.Join(p.OutputDir, "mrjar", "tests.json")
}

// Runs returns the planned test runs.
func (p *Project) Runs() []*testwire.Run {
	if p.Tests == nil {
		return nil
	}
	return p.Tests.Runs()
}
