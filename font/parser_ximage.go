package font

import (
	"encoding/binary"
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ximageParser implements Parser using golang.org/x/image/font/opentype.
type ximageParser struct{}

// Parse implements Parser.Parse.
func (p *ximageParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFontData, err)
	}
	return &ximageParsedFont{
		font:    f,
		hasGlyf: hasTable(data, "glyf"),
	}, nil
}

// hasTable reports whether the sfnt table directory contains the given tag.
// The sfnt API does not expose table presence, so the 16-byte table records
// starting at offset 12 are scanned directly.
func hasTable(data []byte, tag string) bool {
	if len(data) < 12 || len(tag) != 4 {
		return false
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	for i := 0; i < numTables; i++ {
		off := 12 + i*16
		if off+4 > len(data) {
			return false
		}
		if string(data[off:off+4]) == tag {
			return true
		}
	}
	return false
}

// ximageParsedFont implements ParsedFont using sfnt.Font.
type ximageParsedFont struct {
	font    *opentype.Font
	hasGlyf bool
}

// Name implements ParsedFont.Name.
func (f *ximageParsedFont) Name() string {
	if name, err := f.font.Name(nil, sfnt.NameIDFamily); err == nil {
		return name
	}
	return ""
}

// NumGlyphs implements ParsedFont.NumGlyphs.
func (f *ximageParsedFont) NumGlyphs() int {
	return f.font.NumGlyphs()
}

// UnitsPerEm implements ParsedFont.UnitsPerEm.
func (f *ximageParsedFont) UnitsPerEm() int {
	return int(f.font.UnitsPerEm())
}

// HasGlyfOutlines implements ParsedFont.HasGlyfOutlines.
func (f *ximageParsedFont) HasGlyfOutlines() bool {
	return f.hasGlyf
}

// GlyphIndex implements ParsedFont.GlyphIndex.
func (f *ximageParsedFont) GlyphIndex(r rune) GlyphID {
	idx, err := f.font.GlyphIndex(nil, r)
	if err != nil {
		return 0
	}
	return GlyphID(idx)
}

// GlyphAdvance implements ParsedFont.GlyphAdvance.
func (f *ximageParsedFont) GlyphAdvance(gid GlyphID, size float64) float64 {
	var buf sfnt.Buffer
	advance, err := f.font.GlyphAdvance(&buf, sfnt.GlyphIndex(gid), floatToFixed(size), xfont.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat64(advance)
}

// GlyphBounds implements ParsedFont.GlyphBounds.
// sfnt reports bounds with y growing down; they are flipped to glyph
// space (y up) here.
func (f *ximageParsedFont) GlyphBounds(gid GlyphID, size float64) Rect {
	var buf sfnt.Buffer
	bounds, _, err := f.font.GlyphBounds(&buf, sfnt.GlyphIndex(gid), floatToFixed(size), xfont.HintingNone)
	if err != nil {
		return Rect{}
	}
	return Rect{
		MinX: fixedToFloat64(bounds.Min.X),
		MinY: -fixedToFloat64(bounds.Max.Y),
		MaxX: fixedToFloat64(bounds.Max.X),
		MaxY: -fixedToFloat64(bounds.Min.Y),
	}
}

// Outline implements ParsedFont.Outline.
// Loading at ppem equal to the units per em keeps coordinates in font
// design units.
func (f *ximageParsedFont) Outline(gid GlyphID) ([]Segment, error) {
	var buf sfnt.Buffer
	upem := fixed.Int26_6(f.font.UnitsPerEm()) << 6

	segments, err := f.font.LoadGlyph(&buf, sfnt.GlyphIndex(gid), upem, nil)
	if err != nil {
		return nil, fmt.Errorf("font: load glyph %d: %w", gid, err)
	}
	if len(segments) == 0 {
		return nil, nil
	}

	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		var s Segment
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			s.Op = OpMoveTo
			s.Points[0] = fixedPoint(seg.Args[0])
		case sfnt.SegmentOpLineTo:
			s.Op = OpLineTo
			s.Points[0] = fixedPoint(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			s.Op = OpQuadTo
			s.Points[0] = fixedPoint(seg.Args[0]) // Control
			s.Points[1] = fixedPoint(seg.Args[1]) // Target
		case sfnt.SegmentOpCubeTo:
			s.Op = OpCubicTo
			s.Points[0] = fixedPoint(seg.Args[0]) // Control 1
			s.Points[1] = fixedPoint(seg.Args[1]) // Control 2
			s.Points[2] = fixedPoint(seg.Args[2]) // Target
		}
		out = append(out, s)
	}
	return out, nil
}

// Metrics implements ParsedFont.Metrics.
func (f *ximageParsedFont) Metrics(size float64) Metrics {
	var buf sfnt.Buffer
	m, err := f.font.Metrics(&buf, floatToFixed(size), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:    fixedToFloat64(m.Ascent),
		Descent:   -fixedToFloat64(m.Descent),
		LineGap:   fixedToFloat64(m.Height - m.Ascent - m.Descent),
		XHeight:   fixedToFloat64(m.XHeight),
		CapHeight: fixedToFloat64(m.CapHeight),
	}
}

// fixedPoint converts a fixed.Point26_6 to a Point, flipping the y axis
// from sfnt's y-down convention to glyph space (y up).
func fixedPoint(p fixed.Point26_6) Point {
	return Point{
		X: float32(p.X) / 64.0,
		Y: -float32(p.Y) / 64.0,
	}
}

// floatToFixed converts a float64 size to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat64 converts a fixed.Int26_6 value to float64.
func fixedToFloat64(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
