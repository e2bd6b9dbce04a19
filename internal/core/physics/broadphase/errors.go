package broadphase

import "errors"

var (
	ErrDegenerateSweepAxis = errors.New("sweep axis has no direction")
	ErrUnknownKind         = errors.New("unknown broadphase kind")
)
