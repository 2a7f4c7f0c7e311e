package buildsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ProcessResources copies every file below roots into dest, preserving
// relative paths. dest is recreated so stale resources do not leak into
// the archive. When roots overlap, later roots win.
func ProcessResources(roots []string, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for _, root := range roots {
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			target, err := securejoin.SecureJoin(dest, rel)
			if err != nil {
				return err
			}
			if d.IsDir() {
				return os.MkdirAll(target, 0755)
			}
			if !d.Type().IsRegular() {
				return nil
			}
			return copyFile(path, target)
		})
		if err != nil {
			return fmt.Errorf("failed to process resources from %s: %w", root, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
