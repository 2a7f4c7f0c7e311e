// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the mrjar.yaml project descriptor.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goplus/mrjar/internal/env"
	"github.com/goplus/mrjar/pkgs/unit"
)

// DefaultFile is the descriptor looked up when none is given.
const DefaultFile = "mrjar.yaml"

// Defaults.
const (
	DefaultOutput           = "build"
	DefaultTarget           = 8
	DefaultMinimumToolchain = 11
)

// Project is the decoded project descriptor.
type Project struct {
	Name         string `yaml:"name"`
	Output       string `yaml:"output"`
	Reproducible *bool  `yaml:"reproducible"`
	Java         Java   `yaml:"java"`
	Test         Test   `yaml:"test"`
	Units        []Unit `yaml:"units"`

	// Dir is the directory relative paths resolve against.
	Dir string `yaml:"-"`
}

// Java holds the Java version policy.
type Java struct {
	Target           int            `yaml:"target"`
	MinimumToolchain int            `yaml:"minimumToolchain"`
	StrictVersions   *bool          `yaml:"strictVersions"`
	PreviewFeatures  bool           `yaml:"previewFeatures"`
	TestWith         []int          `yaml:"testWith"`
	Toolchains       map[int]string `yaml:"toolchains"`
	CompilerArgs     []string       `yaml:"compilerArgs"`
}

// Test configures test execution.
type Test struct {
	// Launcher is the JUnit platform console launcher archive.
	Launcher string `yaml:"launcher"`
}

// Unit declares one compilation unit.
type Unit struct {
	Name              string            `yaml:"name"`
	Sources           []string          `yaml:"sources"`
	Resources         []string          `yaml:"resources"`
	Classpath         []string          `yaml:"classpath"`
	ModuleName        string            `yaml:"moduleName"`
	AlternateVersions []int             `yaml:"alternateVersions"`
	Library           *bool             `yaml:"library"`
	Archive           string            `yaml:"archive"`
	SourcesArchive    string            `yaml:"sourcesArchive"`
	Manifest          map[string]string `yaml:"manifest"`
	Test              *bool             `yaml:"test"`
	DependsOn         []string          `yaml:"dependsOn"`
}

// Load reads and validates the descriptor at path.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	p.Dir = abs
	if p.Name == "" {
		p.Name = filepath.Base(abs)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes a descriptor and applies defaults. Unknown fields are
// rejected.
func Decode(r io.Reader) (*Project, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Project
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	p.applyDefaults()
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.Output == "" {
		p.Output = DefaultOutput
	}
	if p.Reproducible == nil {
		p.Reproducible = ptr(true)
	}
	if p.Java.Target == 0 {
		p.Java.Target = DefaultTarget
	}
	if p.Java.MinimumToolchain == 0 {
		p.Java.MinimumToolchain = DefaultMinimumToolchain
	}
	if p.Java.StrictVersions == nil {
		p.Java.StrictVersions = ptr(env.StrictVersions())
	}
	if len(p.Units) == 0 {
		p.Units = []Unit{{Name: unit.Main}}
	}
	for i := range p.Units {
		u := &p.Units[i]
		if u.Sources == nil {
			u.Sources = []string{filepath.Join("src", u.Name, "java")}
		}
		if u.Resources == nil {
			u.Resources = []string{filepath.Join("src", u.Name, "resources")}
		}
		if u.Test == nil {
			u.Test = ptr(u.Name == "test")
		}
		if u.Library == nil {
			u.Library = ptr(u.Name == unit.Main)
		}
		if *u.Test && u.DependsOn == nil && u.Name != unit.Main {
			u.DependsOn = []string{unit.Main}
		}
	}
}

// Validate checks unit names and dependencies.
func (p *Project) Validate() error {
	var errs []error
	if p.Java.Target <= 0 {
		errs = append(errs, fmt.Errorf("java target must be positive, got %d", p.Java.Target))
	}
	names := make(map[string]*Unit, len(p.Units))
	for i := range p.Units {
		u := &p.Units[i]
		switch {
		case u.Name == "":
			errs = append(errs, fmt.Errorf("unit #%d has no name", i))
		case names[u.Name] != nil:
			errs = append(errs, fmt.Errorf("duplicate unit %q", u.Name))
		default:
			names[u.Name] = u
		}
	}
	for _, u := range p.Units {
		for _, dep := range u.DependsOn {
			if names[dep] == nil {
				errs = append(errs, fmt.Errorf("unit %q depends on unknown unit %q", u.Name, dep))
			}
		}
	}
	if len(errs) == 0 {
		if _, err := p.order(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// order returns the units so that every unit follows its dependencies.
func (p *Project) order() ([]*Unit, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(p.Units))
	byName := make(map[string]*Unit, len(p.Units))
	for i := range p.Units {
		byName[p.Units[i].Name] = &p.Units[i]
	}
	var ret []*Unit
	var visit func(u *Unit, path []string) error
	visit = func(u *Unit, path []string) error {
		switch state[u.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle: %v", append(path, u.Name))
		}
		state[u.Name] = visiting
		for _, dep := range u.DependsOn {
			if err := visit(byName[dep], append(path, u.Name)); err != nil {
				return err
			}
		}
		state[u.Name] = done
		ret = append(ret, u)
		return nil
	}
	for i := range p.Units {
		if err := visit(&p.Units[i], nil); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Path resolves a descriptor relative path.
func (p *Project) Path(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

func (p *Project) paths(list []string) []string {
	if list == nil {
		return nil
	}
	ret := make([]string, len(list))
	for i, path := range list {
		ret[i] = p.Path(path)
	}
	return ret
}

func ptr[T any](v T) *T {
	return &v
}
