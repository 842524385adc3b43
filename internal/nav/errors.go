package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrSolveDivergence is returned when no bootstrap resample produced an
	// accepted latitude fit.
	ErrSolveDivergence = errors.New("latitude fit did not converge on any resample")

	// ErrNoLongitude is returned when no star yields a valid hour angle.
	ErrNoLongitude = errors.New("no star produced a valid hour angle")
)

// GeometryError reports star layouts that cannot constrain the solution:
// too few stars, collinear stars, or no same-side pairs on an axis.
type GeometryError struct {
	Axis   string // "x", "y", or empty when not axis specific
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("degenerate star geometry: %s", e.Reason)
	}
	return fmt.Sprintf("degenerate star geometry on %s axis: %s", e.Axis, e.Reason)
}

// IsGeometryError reports whether err is or wraps a *GeometryError.
func IsGeometryError(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}
