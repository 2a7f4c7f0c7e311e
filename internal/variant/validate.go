package variant

import "slices"

// MinimumVersion is the newest version that cannot be an alternate. The
// archive format resolves per-version classes only for versions above it.
const MinimumVersion = 8

// ValidateVersions checks the alternate versions requested for unitName
// against the base version and MinimumVersion. It returns them de-duplicated
// in ascending order.
func ValidateVersions(unitName string, base int, requested []int) ([]int, error) {
	versions := slices.Clone(requested)
	slices.Sort(versions)
	versions = slices.Compact(versions)

	for _, version := range versions {
		if version <= base {
			return nil, &ConfigError{Unit: unitName, Version: version, Base: base}
		}
		if version <= MinimumVersion {
			return nil, &ConfigError{Unit: unitName, Version: version, Base: base, Minimum: MinimumVersion}
		}
	}
	return versions, nil
}
