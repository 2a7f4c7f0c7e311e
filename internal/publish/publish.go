// Package publish maintains the outgoing views of library units: what a
// consumer sees when it depends on the unit's API or runtime.
package publish

import (
	"strings"

	"github.com/goplus/mrjar/internal/variant"
	"github.com/goplus/mrjar/pkgs/unit"
)

// Artifact types.
const (
	TypeJar              = "jar"
	TypeClassesDirectory = "java-classes-directory"
	TypeResourcesDir     = "java-resources-directory"
)

// Secondary variant names.
const (
	ClassesVariant   = "classes"
	ResourcesVariant = "resources"
)

// Artifact is a file exposed by an outgoing view, together with the step
// that produces it.
type Artifact struct {
	File    string `json:"file" yaml:"file"`
	Type    string `json:"type" yaml:"type"`
	BuiltBy string `json:"builtBy" yaml:"builtBy"`
}

// SecondaryVariant is a named alternative to a view's primary artifacts.
type SecondaryVariant struct {
	Name      string     `json:"name" yaml:"name"`
	Artifacts []Artifact `json:"artifacts" yaml:"artifacts"`
}

// Configuration is one outgoing view of a unit.
type Configuration struct {
	Name      string              `json:"name" yaml:"name"`
	Artifacts []Artifact          `json:"artifacts" yaml:"artifacts"`
	Variants  []*SecondaryVariant `json:"variants" yaml:"variants"`
}

// Variant returns the secondary variant called name, or nil.
func (c *Configuration) Variant(name string) *SecondaryVariant {
	for _, v := range c.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Elements groups the outgoing views of one library unit.
type Elements struct {
	Unit    string         `json:"unit" yaml:"unit"`
	API     *Configuration `json:"apiElements" yaml:"apiElements"`
	Runtime *Configuration `json:"runtimeElements" yaml:"runtimeElements"`
}

// LibraryElements creates the outgoing views of base, whose primary artifact
// is archive. It returns nil for units that are not libraries.
func LibraryElements(base *unit.Unit, archive string) *Elements {
	if !base.Packaging.Library {
		return nil
	}
	jar := Artifact{File: archive, Type: TypeJar, BuiltBy: base.JarTaskName()}
	classes := Artifact{File: base.Output.ClassesDir, Type: TypeClassesDirectory, BuiltBy: base.CompileTaskName()}
	resources := Artifact{File: base.Output.ResourcesDir, Type: TypeResourcesDir, BuiltBy: base.ProcessResourcesTaskName()}
	return &Elements{
		Unit: base.Name,
		API: &Configuration{
			Name:      elementsName(base, "apiElements"),
			Artifacts: []Artifact{jar},
			Variants: []*SecondaryVariant{
				{Name: ClassesVariant, Artifacts: []Artifact{classes}},
			},
		},
		Runtime: &Configuration{
			Name:      elementsName(base, "runtimeElements"),
			Artifacts: []Artifact{jar},
			Variants: []*SecondaryVariant{
				{Name: ClassesVariant, Artifacts: []Artifact{classes}},
				{Name: ResourcesVariant, Artifacts: []Artifact{resources}},
			},
		},
	}
}

// Publish exposes the output of every variant of c through elements. Nil
// elements are left alone; views are only ever appended to.
func Publish(elements *Elements, c *variant.Chain) {
	if elements == nil {
		return
	}
	for _, v := range c.Variants() {
		u := v.Unit
		classes := Artifact{File: u.Output.ClassesDir, Type: TypeClassesDirectory, BuiltBy: u.CompileTaskName()}
		resources := Artifact{File: u.Output.ResourcesDir, Type: TypeResourcesDir, BuiltBy: u.ProcessResourcesTaskName()}
		if elements.API != nil {
			appendTo(elements.API, ClassesVariant, classes)
		}
		if elements.Runtime != nil {
			appendTo(elements.Runtime, ClassesVariant, classes)
			appendTo(elements.Runtime, ResourcesVariant, resources)
		}
	}
}

func appendTo(c *Configuration, name string, a Artifact) {
	v := c.Variant(name)
	if v == nil {
		v = &SecondaryVariant{Name: name}
		c.Variants = append(c.Variants, v)
	}
	v.Artifacts = append(v.Artifacts, a)
}

func elementsName(base *unit.Unit, name string) string {
	if base.Name == unit.Main {
		return name
	}
	return base.Name + strings.ToUpper(name[:1]) + name[1:]
}
