package archive

import (
	"strconv"

	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

// MultiReleaseRoot is the archive directory holding per-version entries.
const MultiReleaseRoot = "META-INF/versions/"

// Entry places the contents of Dirs under Prefix.
type Entry struct {
	Prefix string
	Dirs   []string
	// Optional entries skip missing directories instead of failing.
	Optional bool
}

// Layout is the ordered list of entries of one archive.
type Layout struct {
	Entries []Entry
}

// VersionPrefix returns the archive prefix of the entries for version.
func VersionPrefix(version int) string {
	return MultiReleaseRoot + strconv.Itoa(version) + "/"
}

// ClassesLayout maps the base output to the archive root and every variant
// output to its version prefix.
func ClassesLayout(c *variant.Chain) Layout {
	l := Layout{Entries: []Entry{{Dirs: c.Base.Output.Dirs()}}}
	for _, v := range c.Variants() {
		l.Entries = append(l.Entries, Entry{
			Prefix: VersionPrefix(v.Version()),
			Dirs:   v.Unit.Output.Dirs(),
		})
	}
	return l
}

// SourcesLayout is ClassesLayout for source trees. Source roots are
// declarations, so missing ones are skipped.
func SourcesLayout(c *variant.Chain) Layout {
	l := Layout{Entries: []Entry{{Dirs: allSource(c.Base), Optional: true}}}
	for _, v := range c.Variants() {
		l.Entries = append(l.Entries, Entry{
			Prefix:   VersionPrefix(v.Version()),
			Dirs:     allSource(v.Unit),
			Optional: true,
		})
	}
	return l
}

func allSource(u *unit.Unit) []string {
	return unit.Union(u.SourceRoots, u.ResourceRoots)
}
