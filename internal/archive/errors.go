package archive

import (
	"errors"
	"fmt"
)

// ErrPackagingFailure indicates an archive could not be assembled from its
// inputs. A missing output directory means a compile step was not run first.
var ErrPackagingFailure = errors.New("packaging failed")

// PackagingError reports the archive and input that failed.
type PackagingError struct {
	Archive string
	Dir     string
	Err     error
}

func (e *PackagingError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("failed to package %s: %v", e.Archive, e.Err)
	}
	return fmt.Sprintf("failed to package %s from %s: %v", e.Archive, e.Dir, e.Err)
}

func (e *PackagingError) Is(target error) bool {
	return target == ErrPackagingFailure
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}
