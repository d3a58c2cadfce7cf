package font

import "errors"

// Sentinel errors for the font package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("font: empty font data")

	// ErrInvalidFontData is returned when font data fails to parse.
	// This is fatal: no layout can begin on a face that did not load.
	ErrInvalidFontData = errors.New("font: invalid font data")
)
