// Package font provides font loading and outline extraction for textmesh.
package font

// Parser is an interface for font parsing backends.
// This abstraction allows swapping the font parsing library
// (e.g., golang.org/x/image/font/opentype vs a pure Go implementation).
//
// The default implementation uses golang.org/x/image/font/opentype.
type Parser interface {
	// Parse parses font data (TTF or OTF) and returns a ParsedFont.
	Parse(data []byte) (ParsedFont, error)
}

// GlyphID identifies a glyph within a font.
type GlyphID uint16

// ParsedFont represents a parsed font file.
// This interface abstracts the underlying font representation.
type ParsedFont interface {
	// Name returns the font family name.
	// Returns empty string if not available.
	Name() string

	// NumGlyphs returns the number of glyphs in the font.
	NumGlyphs() int

	// UnitsPerEm returns the units per em for the font.
	UnitsPerEm() int

	// HasGlyfOutlines reports whether the font carries a native TrueType
	// contour table. Fonts without one store PostScript-style contours,
	// whose winding convention is the opposite of the native table's;
	// the mesh builder reverses its winding classification for them.
	HasGlyfOutlines() bool

	// GlyphIndex returns the glyph index for a rune.
	// Returns 0 if the glyph is not found.
	GlyphIndex(r rune) GlyphID

	// GlyphAdvance returns the advance width for a glyph at the given
	// size (ppem, pixels per em).
	GlyphAdvance(gid GlyphID, size float64) float64

	// GlyphBounds returns the bounding box for a glyph at the given size.
	// Passing float64(UnitsPerEm()) yields bounds in font design units.
	GlyphBounds(gid GlyphID, size float64) Rect

	// Outline returns the glyph outline as a materialized segment list in
	// font design units, with the y axis pointing up. An empty list with a
	// nil error means the glyph has no outline (e.g., space).
	Outline(gid GlyphID) ([]Segment, error)

	// Metrics returns the font metrics at the given size.
	Metrics(size float64) Metrics
}

// Metrics holds font-level metrics at a specific size.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of the font (positive).
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the font (negative).
	Descent float64

	// LineGap is the recommended line gap between lines.
	LineGap float64

	// XHeight is the height of lowercase letters (like 'x').
	XHeight float64

	// CapHeight is the height of uppercase letters.
	CapHeight float64
}

// Height returns the total line height (ascent - descent + line gap).
func (m Metrics) Height() float64 {
	return m.Ascent - m.Descent + m.LineGap
}

// Rect represents a rectangle for glyph bounds.
type Rect struct {
	// Min is the bottom-left corner in glyph space (y up)
	MinX, MinY float64
	// Max is the top-right corner
	MaxX, MaxY float64
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Empty reports whether the rectangle is empty.
func (r Rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// parserRegistry holds registered font parsers.
// The default parser is "ximage" (golang.org/x/image).
var parserRegistry = map[string]Parser{
	"ximage": &ximageParser{},
}

// defaultParserName is the name of the default parser.
const defaultParserName = "ximage"

// RegisterParser registers a custom font parser.
// This allows users to provide their own parsing implementation.
func RegisterParser(name string, parser Parser) {
	parserRegistry[name] = parser
}

// getParser returns the parser by name, or the default if not found.
func getParser(name string) Parser {
	if p, ok := parserRegistry[name]; ok {
		return p
	}
	return parserRegistry[defaultParserName]
}
