// Package vcs inspects the working tree a project is built from.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned for directories outside any working tree.
var ErrNotRepository = errors.New("not a version controlled directory")

// ErrDirty is returned by RequireClean for working trees with uncommitted
// changes.
var ErrDirty = errors.New("working tree has uncommitted changes")

// VCS defines the interface for version control operations.
type VCS interface {
	// Changes returns the paths with uncommitted changes below dir,
	// untracked files included.
	Changes(ctx context.Context, dir string) ([]string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git string
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) ensureRepo(ctx context.Context, dir string) error {
	out, err := g.output(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	return nil
}

func (g *gitVCS) Changes(ctx context.Context, dir string) ([]string, error) {
	if err := g.ensureRepo(ctx, dir); err != nil {
		return nil, err
	}
	output, err := g.output(ctx, dir, "status", "--porcelain", "--untracked-files=all", "--", ".")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var changes []string
	for _, line := range strings.Split(output, "\n") {
		// format: XY <path>
		if len(line) > 3 {
			changes = append(changes, line[3:])
		}
	}
	return changes, nil
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.git, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s", msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// RequireClean fails if dir has uncommitted changes, so archives always
// match the committed sources. Directories outside version control pass.
func RequireClean(ctx context.Context, v VCS, dir string) error {
	changes, err := v.Changes(ctx, dir)
	if errors.Is(err, ErrNotRepository) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		return fmt.Errorf("%w: %s", ErrDirty, strings.Join(changes, ", "))
	}
	return nil
}
