package body

import "errors"

var (
	ErrInvalidMass  = errors.New("mass must be positive")
	ErrBodyNotFound = errors.New("body not found")
	ErrAlreadyInSet = errors.New("body already belongs to a set")
)
