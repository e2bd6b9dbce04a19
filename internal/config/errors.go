package config

import "errors"

var (
	ErrUnknownFormat     = errors.New("unknown config file format")
	ErrUnknownDebugFlag  = errors.New("unknown debug flag")
	ErrUnknownShape      = errors.New("unknown shape type")
	ErrUnknownConstraint = errors.New("unknown constraint type")
	ErrUnknownBody       = errors.New("unknown body name")
	ErrDuplicateBody     = errors.New("duplicate body name")
)
