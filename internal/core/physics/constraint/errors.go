package constraint

import (
	"errors"
	"fmt"

	"github.com/zeusync/impulse/internal/core/physics/body"
)

var (
	ErrBodyNotFound    = errors.New("constraint body not found")
	ErrSameBody        = errors.New("constraint needs two distinct bodies")
	ErrNegativeSpring  = errors.New("spring constant must not be negative")
	ErrNegativeDamping = errors.New("damping factor must not be negative")
	ErrUnknownAxes     = errors.New("unknown axis combination")
)

func bodyError(h body.Handle) error {
	return fmt.Errorf("body %s: %w", h, ErrBodyNotFound)
}
