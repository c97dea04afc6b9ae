package geodrill

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch reports that a dataset could not be retrieved from any
	// candidate location.
	ErrFetch = errors.New("geodrill: dataset fetch failed")
	// ErrEmptyDataset reports a request that succeeded but produced no usable
	// coordinates or no matched sub-regions.
	ErrEmptyDataset = errors.New("geodrill: empty dataset")
	// ErrUnresolvedJoin reports a point of interest whose sub-region name
	// matches no constructed mesh.
	ErrUnresolvedJoin = errors.New("geodrill: unresolved join")
	// ErrDegenerateGeometry reports a ring-group that cannot be extruded.
	ErrDegenerateGeometry = errors.New("geodrill: degenerate geometry")
	// ErrRegionNotFound reports a coarse region name missing from the
	// re-fetched region dataset.
	ErrRegionNotFound = errors.New("geodrill: region not found")
)

// FetchError records every path attempted for one dataset and the cause of
// the last failure. It unwraps to ErrFetch and to the last cause.
type FetchError struct {
	Paths []string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("geodrill: dataset fetch failed after %d attempt(s) [%s]: %v",
		len(e.Paths), strings.Join(e.Paths, ", "), e.Err)
}

// Unwrap exposes both ErrFetch and the underlying cause to errors.Is.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
