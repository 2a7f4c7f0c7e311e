package variant

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration indicates the declared alternate versions of a unit
// cannot form a multi-release chain.
var ErrInvalidConfiguration = errors.New("invalid multi-release configuration")

// ConfigError reports an alternate version rejected during validation.
type ConfigError struct {
	Unit    string
	Version int
	Base    int
	// Minimum is set when Version was rejected by the multi-release threshold
	// rather than by the base version.
	Minimum int
}

func (e *ConfigError) Error() string {
	if e.Minimum > 0 {
		return fmt.Sprintf("multi-release archives can only hold variants targeting a version greater than %d, but %d was declared for unit %q",
			e.Minimum, e.Version, e.Unit)
	}
	return fmt.Sprintf("declared multi-release variant (version %d) of unit %q is not greater than the base version (%d)",
		e.Version, e.Unit, e.Base)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
