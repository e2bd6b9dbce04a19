package engine

import "errors"

var (
	ErrInvalidSettings    = errors.New("invalid engine settings")
	ErrUnknownIntegration = errors.New("unknown integration type")
	ErrDanglingConstraint = errors.New("constraint references a missing body")
)
