// Package env reads the settings mrjar takes from the process environment.
package env

import (
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// StrictVersionsVar forces every compile and test step onto the exact
	// toolchain it targets instead of the running JDK.
	StrictVersionsVar = "MRJAR_STRICT_VERSIONS"
	// CIVar is set by most CI providers; strict versions default to it.
	CIVar = "CI"
	// JavaHomeVar names the JDK mrjar runs with.
	JavaHomeVar = "JAVA_HOME"
)

// JAVA_HOME_17, JAVA_HOME_17_X64, JAVA_HOME_17_arm64, ...
var versionedHome = regexp.MustCompile(`^JAVA_HOME_(\d+)(?:_[A-Za-z0-9]+)?$`)

// StrictVersions reports whether strict toolchain versions are requested.
// StrictVersionsVar wins over CIVar; empty variables are ignored and
// unparsable values count as false.
func StrictVersions() bool {
	for _, key := range []string{StrictVersionsVar, CIVar} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			strict, err := strconv.ParseBool(val)
			return err == nil && strict
		}
	}
	return false
}

// JavaHome returns the JDK home mrjar runs with, or "" if unset.
func JavaHome() string {
	return os.Getenv(JavaHomeVar)
}

// ToolchainHomes returns the JDK homes advertised through JAVA_HOME_<N>
// variables, keyed by feature version. Homes of one version are sorted.
func ToolchainHomes() map[int][]string {
	homes := make(map[int][]string)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || val == "" {
			continue
		}
		m := versionedHome.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		homes[version] = append(homes[version], val)
	}
	for _, list := range homes {
		sort.Strings(list)
	}
	return homes
}
