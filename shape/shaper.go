// Package shape turns text strings into positioned glyph runs.
//
// The default implementation wraps go-text/typesetting's HarfBuzz port and
// reports advances and offsets in font design units, so downstream layout
// can scale them together with glyph outline geometry.
package shape

import "github.com/gogpu/textmesh/font"

// Glyph is one shaped glyph: an index into the font plus the pen movement
// and positioning adjustments shaping assigned to it. All values are in
// font design units.
type Glyph struct {
	// GID is the glyph index within the font.
	GID font.GlyphID

	// Cluster is the rune index in the original text this glyph maps to.
	Cluster int

	// XAdvance and YAdvance are the pen advance after this glyph.
	XAdvance float64
	YAdvance float64

	// XOffset and YOffset are positioning adjustments applied to the
	// glyph without moving the pen.
	XOffset float64
	YOffset float64
}

// Shaper converts text into an ordered sequence of positioned glyphs.
// The order matches logical glyph order as shaping defines it.
type Shaper interface {
	// Shape shapes text against the given font source.
	// Returns nil (no error) for empty text.
	Shape(src *font.Source, text string) ([]Glyph, error)
}

// Direction specifies text direction for a shaped run.
type Direction int

const (
	// DirectionLTR is left-to-right text (English, French, etc.)
	DirectionLTR Direction = iota
	// DirectionRTL is right-to-left text (Arabic, Hebrew)
	DirectionRTL
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "LTR"
	case DirectionRTL:
		return "RTL"
	default:
		return "Unknown"
	}
}
