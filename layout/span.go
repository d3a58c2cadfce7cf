package layout

import (
	"errors"
	"fmt"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/font"
	"github.com/gogpu/textmesh/glyph"
	"github.com/gogpu/textmesh/shape"
)

// ErrNoFont is returned when a span is built without a font source.
var ErrNoFont = errors.New("layout: span has no font source")

var defaultShaper shape.Shaper = shape.NewHarfBuzzShaper()

// Span is one run of text with a single font, size, color and alignment.
type Span struct {
	src      *font.Source
	text     string
	fontSize float64 // pixels

	posX, posY  float64
	boxW, boxH  float64
	alignH      Align
	alignV      Align
	color       textmesh.RGBA
	shaper      shape.Shaper
	meshBuilder *glyph.MeshBuilder
	cache       *glyph.Cache
}

// SpanOption configures a Span.
type SpanOption func(*Span)

// WithPosition sets the span's anchor position in pixels.
func WithPosition(x, y float64) SpanOption {
	return func(s *Span) { s.posX, s.posY = x, y }
}

// WithFontSize sets the font size in pixels.
func WithFontSize(px float64) SpanOption {
	return func(s *Span) { s.fontSize = px }
}

// WithFontSizePt sets the font size in points, converted at 150 dpi.
func WithFontSizePt(pt float64) SpanOption {
	return func(s *Span) { s.fontSize = pt * PxPerPoint }
}

// WithBox sets the alignment box extent in pixels. Alignment offsets are
// computed against this box; a zero box makes Middle and End collapse
// toward the anchor.
func WithBox(w, h float64) SpanOption {
	return func(s *Span) { s.boxW, s.boxH = w, h }
}

// WithAlign sets horizontal and vertical alignment inside the box.
func WithAlign(h, v Align) SpanOption {
	return func(s *Span) { s.alignH, s.alignV = h, v }
}

// WithColor sets the span color.
func WithColor(c textmesh.RGBA) SpanOption {
	return func(s *Span) { s.color = c }
}

// WithShaper overrides the package default shaper.
func WithShaper(sh shape.Shaper) SpanOption {
	return func(s *Span) { s.shaper = sh }
}

// WithCache attaches a mesh cache shared across spans.
func WithCache(c *glyph.Cache) SpanOption {
	return func(s *Span) { s.cache = c }
}

// NewSpan creates a span for text rendered from src.
func NewSpan(src *font.Source, text string, opts ...SpanOption) *Span {
	s := &Span{
		src:      src,
		text:     text,
		fontSize: 16,
		color:    textmesh.RGB(0, 0, 0),
		shaper:   defaultShaper,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Color returns the span's color.
func (s *Span) Color() textmesh.RGBA { return s.color }

// Mesh shapes and lays out the span against viewport. Shaping failures
// are fatal; glyphs whose outlines cannot be triangulated are skipped
// with a warning, their advances preserved.
func (s *Span) Mesh(viewport Viewport) (TextMesh, error) {
	if s.src == nil {
		return TextMesh{}, ErrNoFont
	}
	parsed := s.src.Parsed()

	glyphs, err := s.shaper.Shape(s.src, s.text)
	if err != nil {
		return TextMesh{}, fmt.Errorf("layout: shaping failed: %w", err)
	}

	upem := parsed.UnitsPerEm()
	scale := s.fontSize / float64(upem) * EmCorrection

	var advance float64
	for _, g := range glyphs {
		advance += g.XAdvance
	}
	width := advance * scale

	originX := s.posX + s.alignH.offset(s.boxW, width)
	originY := s.posY + s.alignV.offset(s.boxH, s.fontSize)

	b := NewBuilder(viewport, s.fontSize, originX, originY, upem)
	mb := s.meshBuilder
	if mb == nil {
		mb = glyph.NewMeshBuilder()
	}
	for _, g := range glyphs {
		m, err := s.glyphMesh(mb, parsed, g.GID)
		if err != nil {
			var degen *glyph.DegenerateGeometryError
			if errors.As(err, &degen) {
				textmesh.Logger().Warn("skipping glyph with degenerate outline",
					"font", parsed.Name(), "gid", degen.GID)
				m = nil
			} else {
				return TextMesh{}, err
			}
		}
		b.Add(m, g)
	}
	return b.Build()
}

func (s *Span) glyphMesh(mb *glyph.MeshBuilder, parsed font.ParsedFont, gid font.GlyphID) (*glyph.Mesh, error) {
	if s.cache != nil {
		key := glyph.CacheKey{FontID: s.src.ID(), GID: gid}
		if m, ok := s.cache.Get(key); ok {
			return m, nil
		}
		m, err := mb.Build(parsed, gid)
		if err != nil {
			return nil, err
		}
		s.cache.Put(key, m)
		return m, nil
	}
	return mb.Build(parsed, gid)
}
