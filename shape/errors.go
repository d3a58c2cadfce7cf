package shape

import "errors"

// Sentinel errors for the shape package.
var (
	// ErrNilSource is returned when shaping is attempted without a font source.
	ErrNilSource = errors.New("shape: nil font source")
)
