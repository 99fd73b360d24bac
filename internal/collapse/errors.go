package collapse

import "errors"

var (
	// ErrNoInput is returned when no input stream is supplied.
	ErrNoInput = errors.New("no input stream")

	// ErrUnsupportedFormat is returned when the format is not registered.
	ErrUnsupportedFormat = errors.New("unsupported trace format")
)
