package toolchain

// Versions is the project's version policy.
type Versions struct {
	// Target is the release the base units compile to.
	Target int
	// MinimumToolchain is the oldest JDK allowed to run the build.
	MinimumToolchain int
	// Strict pins every step to the exact toolchain it needs instead of
	// reusing a newer running JDK.
	Strict bool
	// Running is the feature release of the JDK mrjar was started with,
	// or 0 if none was found.
	Running int
	// Preview enables preview language features.
	Preview bool
}

// Minimum returns the oldest toolchain the project can build with.
func (v Versions) Minimum() int {
	return max(v.MinimumToolchain, v.Target)
}

// Actual returns the toolchain version base steps run with.
func (v Versions) Actual() int {
	minimum := v.Minimum()
	if v.Strict || v.Running < minimum {
		return minimum
	}
	return v.Running
}

// For returns the toolchain version needed to target release. The result is
// never older than release.
func (v Versions) For(release int) int {
	return max(v.Actual(), release)
}
