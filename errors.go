package mutscan

import (
	"errors"

	"github.com/mutscan/mutscan/similarity"
)

var (
	// ErrNoVariants is returned when a run finishes without a single
	// completed variant.
	ErrNoVariants = errors.New("mutscan: no variants completed")

	// ErrInvalidConfig is returned when the scanner configuration is
	// incomplete or inconsistent.
	ErrInvalidConfig = errors.New("mutscan: invalid config")
)

// IsIntegrityError reports whether err indicates systemic miscomputation
// (shape or length mismatch). Integrity errors abort the whole run;
// everything else raised inside one variant's pipeline only skips that
// variant. Callers can use this to decide whether a failed run is worth
// retrying.
func IsIntegrityError(err error) bool {
	var sm *similarity.ErrShapeMismatch
	var lm *similarity.ErrLengthMismatch
	return errors.As(err, &sm) || errors.As(err, &lm)
}
