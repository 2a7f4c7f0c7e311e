// Package toolchain discovers installed JDKs and selects the one a step
// must run with.
package toolchain

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrNotFound indicates no installed JDK matches a requested version.
var ErrNotFound = errors.New("no matching toolchain")

// Toolchain is an installed JDK.
type Toolchain struct {
	Version int    // feature release, e.g. 17
	Full    string // canonical semver, e.g. v17.0.2
	Home    string
}

// Tool returns the path of the named executable in t.
func (t Toolchain) Tool(name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(t.Home, "bin", name)
}

func (t Toolchain) String() string {
	return fmt.Sprintf("%d (%s)", t.Version, t.Home)
}

// ParseVersion parses a JDK version string such as "17.0.2", "1.8.0_292"
// or "22-ea" into its feature release and canonical semver form.
func ParseVersion(s string) (feature int, canonical string, err error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if i := strings.IndexAny(s, "_+-"); i >= 0 {
		s = s[:i]
	}
	if parts := strings.Split(s, "."); len(parts) > 3 {
		s = strings.Join(parts[:3], ".")
	}
	canonical = semver.Canonical("v" + s)
	if canonical == "" {
		return 0, "", fmt.Errorf("invalid java version %q", s)
	}
	major := strings.TrimPrefix(semver.Major(canonical), "v")
	if major == "1" {
		// 1.8.0 style: the feature release is the minor component.
		major = strings.TrimPrefix(semver.MajorMinor(canonical), "v1.")
	}
	feature, err = strconv.Atoi(major)
	if err != nil {
		return 0, "", fmt.Errorf("invalid java version %q: %w", s, err)
	}
	return feature, canonical, nil
}

// Probe reads the release file of the JDK installed at home.
func Probe(home string) (Toolchain, error) {
	f, err := os.Open(filepath.Join(home, "release"))
	if err != nil {
		return Toolchain{}, fmt.Errorf("failed to probe toolchain at %s: %w", home, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(key) != "JAVA_VERSION" {
			continue
		}
		feature, full, err := ParseVersion(val)
		if err != nil {
			return Toolchain{}, fmt.Errorf("failed to probe toolchain at %s: %w", home, err)
		}
		return Toolchain{Version: feature, Full: full, Home: home}, nil
	}
	if err := scanner.Err(); err != nil {
		return Toolchain{}, err
	}
	return Toolchain{}, fmt.Errorf("failed to probe toolchain at %s: no JAVA_VERSION in release file", home)
}
