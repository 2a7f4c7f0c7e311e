// Package buildsys is the boundary between the variant composer and the
// tools that compile and test a unit.
package buildsys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/mrjar/internal/toolchain"
)

// ErrCompileFailure indicates a unit failed to compile.
var ErrCompileFailure = errors.New("compilation failed")

// CompileError reports the unit whose compilation failed.
type CompileError struct {
	Unit    string
	Release int
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s (release %d): %v", e.Unit, e.Release, e.Err)
}

func (e *CompileError) Is(target error) bool {
	return target == ErrCompileFailure
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Invocation is everything a compiler needs to build one unit.
type Invocation struct {
	Unit        string
	SourceRoots []string
	Sources     []string // source files found under SourceRoots
	OutputDir   string
	Classpath   []string
	Release     int
	Args        []string // extra compiler arguments, e.g. --patch-module
	Toolchain   toolchain.Toolchain
	Preview     bool
}

// Compiler compiles a unit. Implementations must recreate OutputDir so it
// holds only the classes of the current sources.
type Compiler interface {
	Compile(ctx context.Context, inv Invocation) error
}

// SourceFiles returns the files below roots whose name ends in ext, sorted.
// Missing roots are skipped.
func SourceFiles(roots []string, ext string) ([]string, error) {
	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
