package model

import "errors"

// Conversion failures. Each is wrapped together with the underlying cause.
var (
	ErrDecode = errors.New("failed to decode image")
	ErrResize = errors.New("failed to resize image")
	ErrEncode = errors.New("failed to encode image")
	ErrWrite  = errors.New("failed to write image")
)

// ErrRootUnavailable means the root directory could not be obtained.
// It is the only error that aborts a run.
var ErrRootUnavailable = errors.New("root path unavailable")
