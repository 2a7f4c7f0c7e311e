package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitInit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init: %v\n%s", err, out)
	}
	return dir
}

func TestGitVCS_Changes(t *testing.T) {
	requireGit(t)
	vcs := NewGitVCS()
	ctx := context.Background()
	dir := gitInit(t)

	changes, err := vcs.Changes(ctx, dir)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("fresh repo changes = %v, want none", changes)
	}

	if err := os.MkdirAll(filepath.Join(dir, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "Foo.java"), []byte("class Foo {}"), 0644); err != nil {
		t.Fatal(err)
	}
	changes, err = vcs.Changes(ctx, dir)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(changes) != 1 || changes[0] != "src/Foo.java" {
		t.Errorf("changes = %v, want [src/Foo.java]", changes)
	}
}

func TestGitVCS_NotRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	_, err := NewGitVCS().Changes(context.Background(), dir)
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("Changes error = %v, want ErrNotRepository", err)
	}
}

func TestWithGitPath(t *testing.T) {
	v := NewGitVCS(WithGitPath("/nonexistent/git"))
	if _, err := v.Changes(context.Background(), t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("Changes error = %v, want ErrNotRepository", err)
	}
}

type mockVCS struct {
	changes []string
	err     error
}

func (m *mockVCS) Changes(ctx context.Context, dir string) ([]string, error) {
	return m.changes, m.err
}

func TestRequireClean(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		vcs     *mockVCS
		wantErr error
	}{
		{"clean", &mockVCS{}, nil},
		{"dirty", &mockVCS{changes: []string{"src/Foo.java"}}, ErrDirty},
		{"not a repository", &mockVCS{err: ErrNotRepository}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireClean(ctx, tt.vcs, "dir")
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("RequireClean() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
