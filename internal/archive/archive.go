// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive packs a base unit and its version chain into a single
// multi-release archive.
//
// The base output lands at the archive root and each variant output below
// META-INF/versions/<version>/. The Multi-Release manifest attribute is set
// only for archives that actually carry variants.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fluxcd/pkg/lockedfile"
	"github.com/go-logr/logr"
)

// reproducibleTime is the timestamp of every entry of a reproducible archive.
var reproducibleTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

// Spec describes one archive to write.
type Spec struct {
	Path         string
	Layout       Layout
	Manifest     map[string]string
	MultiRelease bool
}

// Merger writes archives.
type Merger struct {
	// Reproducible archives use fixed timestamps, so merging unchanged
	// inputs twice yields byte-identical files.
	Reproducible bool
}

type file struct {
	name    string // slash separated, directories end in "/"
	src     string // empty for directories
	modTime time.Time
}

// Merge writes the archive described by spec. The archive is replaced
// atomically while holding a lock next to it, so concurrent writers of the
// same path are serialized.
func (m *Merger) Merge(ctx context.Context, spec Spec) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("archive", spec.Path)

	files, err := m.collect(ctx, spec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(spec.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	unlock, err := lockedfile.MutexAt(spec.Path + ".lock").Lock()
	if err != nil {
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(spec.Path)+".tmp-*")
	if err != nil {
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := m.write(tmp, spec, files); err != nil {
		tmp.Close()
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	if err := os.Rename(tmp.Name(), spec.Path); err != nil {
		return &PackagingError{Archive: spec.Path, Err: err}
	}
	log.V(1).Info("wrote archive", "entries", len(files), "multiRelease", spec.MultiRelease)
	return nil
}

// collect lists the archive entries in write order. Within each layout entry
// names are sorted; across entries the layout order is kept. The first
// occurrence of a name wins.
func (m *Merger) collect(ctx context.Context, spec Spec) ([]file, error) {
	log := logr.FromContextOrDiscard(ctx)
	seen := map[string]bool{"META-INF/": true, ManifestPath: true}
	files := []file{{name: "META-INF/"}, {name: ManifestPath}}

	for _, entry := range spec.Layout.Entries {
		var group []file
		for _, d := range parents(entry.Prefix) {
			group = append(group, file{name: d})
		}
		for _, root := range entry.Dirs {
			info, err := os.Stat(root)
			if err != nil {
				if entry.Optional && errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, &PackagingError{Archive: spec.Path, Dir: root, Err: err}
			}
			if !info.IsDir() {
				return nil, &PackagingError{Archive: spec.Path, Dir: root, Err: errors.New("not a directory")}
			}
			err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if p == root {
					return nil
				}
				rel, err := filepath.Rel(root, p)
				if err != nil {
					return err
				}
				name := entry.Prefix + filepath.ToSlash(rel)
				if d.IsDir() {
					group = append(group, file{name: name + "/"})
					return nil
				}
				if !d.Type().IsRegular() {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return err
				}
				group = append(group, file{name: name, src: p, modTime: info.ModTime()})
				return nil
			})
			if err != nil {
				return nil, &PackagingError{Archive: spec.Path, Dir: root, Err: err}
			}
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].name < group[j].name })
		for _, f := range group {
			if seen[f.name] {
				if f.src != "" {
					log.V(1).Info("skipping duplicate archive entry", "archive", spec.Path, "entry", f.name, "source", f.src)
				}
				continue
			}
			seen[f.name] = true
			files = append(files, f)
		}
	}
	return files, nil
}

func (m *Merger) write(w io.Writer, spec Spec, files []file) error {
	zw := zip.NewWriter(w)
	manifest := Manifest(spec.Manifest, spec.MultiRelease)
	for _, f := range files {
		header := &zip.FileHeader{Name: f.name, Method: zip.Deflate}
		header.Modified = m.timestamp(f.modTime)
		if strings.HasSuffix(f.name, "/") {
			header.Method = zip.Store
			header.SetMode(fs.ModeDir | 0755)
		} else {
			header.SetMode(0644)
		}
		out, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		switch {
		case f.name == ManifestPath:
			if _, err := out.Write(manifest); err != nil {
				return err
			}
		case f.src != "":
			if err := copyInto(out, f.src); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}

func (m *Merger) timestamp(t time.Time) time.Time {
	if m.Reproducible || t.IsZero() {
		return reproducibleTime
	}
	return t
}

func copyInto(w io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// parents returns the directory entries leading to prefix, e.g.
// "META-INF/", "META-INF/versions/", "META-INF/versions/9/".
func parents(prefix string) []string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return nil
	}
	var dirs []string
	for p := prefix; p != "." && p != "/" && p != ""; p = path.Dir(p) {
		dirs = append([]string{p + "/"}, dirs...)
	}
	return dirs
}
