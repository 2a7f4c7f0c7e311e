package toolchain

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"

	"golang.org/x/mod/semver"
)

// Options lists the places Discover looks for JDKs.
type Options struct {
	// Homes are explicitly configured JDKs keyed by feature release.
	Homes map[int]string
	// Advertised are JDKs found through the environment, keyed by feature release.
	Advertised map[int][]string
	// JavaHome is the JDK mrjar runs with. If empty, javac is looked up
	// on PATH through LookPath.
	JavaHome string
	LookPath func(file string) (string, error)
}

// Resolver selects installed JDKs.
type Resolver struct {
	installs []Toolchain
	current  *Toolchain
}

// Discover probes every JDK named by opts. JDKs that cannot be probed are
// skipped, except explicitly configured ones whose release file disagrees
// with their configured version.
func Discover(opts Options) (*Resolver, error) {
	r := &Resolver{}
	seen := make(map[string]bool)
	add := func(tc Toolchain) {
		if seen[tc.Home] {
			return
		}
		seen[tc.Home] = true
		r.installs = append(r.installs, tc)
	}

	versions := make([]int, 0, len(opts.Homes))
	for version := range opts.Homes {
		versions = append(versions, version)
	}
	sort.Ints(versions)
	for _, version := range versions {
		home := opts.Homes[version]
		tc, err := Probe(home)
		if err != nil {
			// No release file: trust the configuration.
			tc = Toolchain{Version: version, Full: fmt.Sprintf("v%d.0.0", version), Home: home}
		} else if tc.Version != version {
			return nil, fmt.Errorf("toolchain %s is configured as %d but reports %d", home, version, tc.Version)
		}
		add(tc)
	}
	advertised := make([]int, 0, len(opts.Advertised))
	for version := range opts.Advertised {
		advertised = append(advertised, version)
	}
	sort.Ints(advertised)
	for _, version := range advertised {
		for _, home := range opts.Advertised[version] {
			if tc, err := Probe(home); err == nil {
				add(tc)
			}
		}
	}

	home := opts.JavaHome
	if home == "" && opts.LookPath != nil {
		if javac, err := opts.LookPath("javac"); err == nil {
			if resolved, err := filepath.EvalSymlinks(javac); err == nil {
				javac = resolved
			}
			home = filepath.Dir(filepath.Dir(javac))
		}
	}
	if home != "" {
		if tc, err := Probe(home); err == nil {
			add(tc)
			r.current = &tc
		}
	}
	return r, nil
}

// DefaultLookPath is the LookPath used outside tests.
var DefaultLookPath = exec.LookPath

// Current returns the JDK mrjar runs with.
func (r *Resolver) Current() (Toolchain, bool) {
	if r.current == nil {
		return Toolchain{}, false
	}
	return *r.current, true
}

// Installs returns every discovered JDK.
func (r *Resolver) Installs() []Toolchain {
	return slices.Clone(r.installs)
}

// Resolve returns the newest installed JDK of the given feature release.
func (r *Resolver) Resolve(version int) (Toolchain, error) {
	var best *Toolchain
	for i := range r.installs {
		tc := &r.installs[i]
		if tc.Version != version {
			continue
		}
		if best == nil || semver.Compare(tc.Full, best.Full) > 0 {
			best = tc
		}
	}
	if best == nil {
		return Toolchain{}, fmt.Errorf("%w: java %d", ErrNotFound, version)
	}
	return *best, nil
}
