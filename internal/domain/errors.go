package domain

import "errors"

var (
	// ErrNoResults means the provider answered normally but matched nothing.
	ErrNoResults = errors.New("no results")
	// ErrNoCoordinates means the best match carried no usable location.
	ErrNoCoordinates = errors.New("no coordinates")
)

// IsRowMiss reports whether err only affects the current row.
// Any other error aborts the run.
func IsRowMiss(err error) bool {
	return errors.Is(err, ErrNoResults) || errors.Is(err, ErrNoCoordinates)
}
