// Package unit defines compilation units: named sets of source and resource
// roots compiled into one output, and the naming rules shared by every step
// that operates on them.
package unit

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Main is the name of the primary unit. Its step names omit the unit name,
// so "main" compiles with "compileJava" while "test" compiles with
// "compileTestJava".
const Main = "main"

// Output describes where a unit's compiled classes and processed resources land.
type Output struct {
	ClassesDir   string
	ResourcesDir string
}

// Dirs returns the output directories in classpath order.
func (o Output) Dirs() []string {
	return []string{o.ClassesDir, o.ResourcesDir}
}

// Packaging holds the archive facts of a base unit.
type Packaging struct {
	Archive        string            // empty if the unit is not archived
	SourcesArchive string            // empty if no sources archive is produced
	Manifest       map[string]string // extra manifest attributes
	Library        bool              // the unit exposes outgoing elements
}

// Unit is a compilation unit.
//
// Base units have Release == 0, meaning they compile at the project's target
// version, and a nil Parent. Derived units always carry both.
type Unit struct {
	Name          string
	SourceRoots   []string
	ResourceRoots []string
	Output        Output

	// Classpath holds the binary inputs declared for this unit.
	Classpath []string
	// Implementation holds file dependencies on the outputs of other units.
	Implementation []string

	CompileClasspath []string
	RuntimeClasspath []string

	ModuleName string
	Release    int
	Parent     *Unit
	Test       bool
	Packaging  Packaging
}

// IsVariant reports whether u was derived from another unit.
func (u *Unit) IsVariant() bool {
	return u.Parent != nil
}

// Root returns the base unit u was derived from, or u itself.
func (u *Unit) Root() *Unit {
	for u.Parent != nil {
		u = u.Parent
	}
	return u
}

// TaskName returns the name of a step operating on u, e.g.
// TaskName("compile", "Java") is "compileJava" for main and
// "compileTestJava" for test.
func (u *Unit) TaskName(verb, target string) string {
	name := u.Name
	if name == Main {
		name = ""
	}
	return lowerCamel(verb, name, target)
}

// CompileTaskName returns the name of the compile step of u.
func (u *Unit) CompileTaskName() string {
	return u.TaskName("compile", "Java")
}

// ProcessResourcesTaskName returns the name of the resource processing step of u.
func (u *Unit) ProcessResourcesTaskName() string {
	return u.TaskName("process", "Resources")
}

// JarTaskName returns the name of the archive step of u.
func (u *Unit) JarTaskName() string {
	return u.TaskName("", "jar")
}

// SourcesJarTaskName returns the name of the sources archive step of u.
func (u *Unit) SourcesJarTaskName() string {
	return u.TaskName("", "sourcesJar")
}

func (u *Unit) String() string {
	if u.Release == 0 {
		return u.Name
	}
	return u.Name + "@" + strconv.Itoa(u.Release)
}

// VersionName returns the name of the unit derived from parent for version,
// e.g. "java17" for main and "testJava17" for test.
func VersionName(parent *Unit, version int) string {
	return parent.TaskName("", "java"+strconv.Itoa(version))
}

// SiblingRoots maps every root "dir/X" to its versioned sibling "dir/X<version>".
func SiblingRoots(roots []string, version int) []string {
	if len(roots) == 0 {
		return nil
	}
	suffix := strconv.Itoa(version)
	ret := make([]string, 0, len(roots))
	for _, root := range roots {
		root = filepath.Clean(root)
		ret = append(ret, filepath.Join(filepath.Dir(root), filepath.Base(root)+suffix))
	}
	return ret
}

// Union concatenates lists, keeping the first occurrence of each entry.
func Union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var ret []string
	for _, list := range lists {
		for _, item := range list {
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			ret = append(ret, item)
		}
	}
	return ret
}

// Minus returns list without the entries in remove, preserving order.
func Minus(list []string, remove ...string) []string {
	drop := make(map[string]bool, len(remove))
	for _, r := range remove {
		drop[r] = true
	}
	ret := make([]string, 0, len(list))
	for _, item := range list {
		if !drop[item] {
			ret = append(ret, item)
		}
	}
	return ret
}

func lowerCamel(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		if b.Len() == 0 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		b.WriteString(part[size:])
	}
	return b.String()
}
