package layout

import (
	"errors"
	"testing"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/font"
	"github.com/gogpu/textmesh/glyph"
	"github.com/gogpu/textmesh/shape"
)

// testParser builds fonts whose glyphs are simple synthetic outlines:
// gid 1 is a solid square, gid 2 has no outline (space), gid 3 is a lone
// hole contour that cannot be triangulated.
type testParser struct{}

type testParsed struct{}

func seg(op font.Op, pts ...font.Point) font.Segment {
	s := font.Segment{Op: op}
	copy(s.Points[:], pts)
	return s
}

func (testParsed) Name() string                          { return "Test Square" }
func (testParsed) NumGlyphs() int                        { return 4 }
func (testParsed) UnitsPerEm() int                       { return 1000 }
func (testParsed) HasGlyfOutlines() bool                 { return true }
func (testParsed) GlyphIndex(rune) font.GlyphID          { return 1 }
func (testParsed) GlyphAdvance(font.GlyphID, float64) float64 { return 600 }
func (testParsed) GlyphBounds(font.GlyphID, float64) font.Rect {
	return font.Rect{MaxX: 100, MaxY: 100}
}
func (testParsed) Metrics(float64) font.Metrics { return font.Metrics{Ascent: 800, Descent: 200} }

func (testParsed) Outline(gid font.GlyphID) ([]font.Segment, error) {
	switch gid {
	case 1:
		// Clockwise square, the solid winding.
		return []font.Segment{
			seg(font.OpMoveTo, font.Point{X: 0, Y: 0}),
			seg(font.OpLineTo, font.Point{X: 0, Y: 100}),
			seg(font.OpLineTo, font.Point{X: 100, Y: 100}),
			seg(font.OpLineTo, font.Point{X: 100, Y: 0}),
		}, nil
	case 3:
		// Counter-clockwise ring reads as a hole with no solid to attach to.
		return []font.Segment{
			seg(font.OpMoveTo, font.Point{X: 0, Y: 0}),
			seg(font.OpLineTo, font.Point{X: 100, Y: 0}),
			seg(font.OpLineTo, font.Point{X: 100, Y: 100}),
			seg(font.OpLineTo, font.Point{X: 0, Y: 100}),
		}, nil
	default:
		return nil, nil
	}
}

func (testParser) Parse([]byte) (font.ParsedFont, error) { return testParsed{}, nil }

func testSource(t *testing.T) *font.Source {
	t.Helper()
	font.RegisterParser("layout-test", testParser{})
	src, err := font.NewSource([]byte("test"), font.WithParserBackend("layout-test"))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	return src
}

// runeShaper maps every rune to its own glyph: spaces to gid 2, 'x' to
// the untriangulatable gid 3, everything else to the square gid 1.
type runeShaper struct{}

func (runeShaper) Shape(_ *font.Source, text string) ([]shape.Glyph, error) {
	var glyphs []shape.Glyph
	for i, r := range []rune(text) {
		gid := font.GlyphID(1)
		switch r {
		case ' ':
			gid = 2
		case 'x':
			gid = 3
		}
		glyphs = append(glyphs, shape.Glyph{GID: gid, Cluster: i, XAdvance: 600})
	}
	return glyphs, nil
}

type failShaper struct{}

var errShapeFailed = errors.New("shaping failed")

func (failShaper) Shape(*font.Source, string) ([]shape.Glyph, error) {
	return nil, errShapeFailed
}

func TestSpan_Mesh(t *testing.T) {
	src := testSource(t)
	span := NewSpan(src, "ab",
		WithFontSize(10),
		WithShaper(runeShaper{}),
	)

	mesh, err := span.Mesh(Viewport{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if len(mesh.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8 (two squares)", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 12 {
		t.Errorf("indices = %d, want 12", len(mesh.Indices))
	}
}

func TestSpan_EmptyText(t *testing.T) {
	span := NewSpan(testSource(t), "", WithShaper(runeShaper{}))
	mesh, err := span.Mesh(Viewport{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if len(mesh.Vertices) != 0 {
		t.Errorf("vertices = %d, want 0 for empty text", len(mesh.Vertices))
	}
}

func TestSpan_NilSource(t *testing.T) {
	span := NewSpan(nil, "abc")
	if _, err := span.Mesh(Viewport{Width: 200, Height: 100}); !errors.Is(err, ErrNoFont) {
		t.Errorf("Mesh() error = %v, want ErrNoFont", err)
	}
}

func TestSpan_ShapingFailureIsFatal(t *testing.T) {
	span := NewSpan(testSource(t), "abc", WithShaper(failShaper{}))
	if _, err := span.Mesh(Viewport{Width: 200, Height: 100}); !errors.Is(err, errShapeFailed) {
		t.Errorf("Mesh() error = %v, want wrapped shaper error", err)
	}
}

func TestSpan_SkipsUntriangulatableGlyph(t *testing.T) {
	// The 'x' glyph cannot be triangulated; it is dropped but its advance
	// still separates the surrounding squares.
	src := testSource(t)
	span := NewSpan(src, "axb",
		WithFontSize(10),
		WithShaper(runeShaper{}),
	)
	mesh, err := span.Mesh(Viewport{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if len(mesh.Vertices) != 8 {
		t.Fatalf("vertices = %d, want 8 (failed glyph skipped)", len(mesh.Vertices))
	}

	scale := float32(10.0 / 1000.0 * EmCorrection)
	delta := mesh.Vertices[4].Position[0] - mesh.Vertices[0].Position[0]
	wantDelta := 1200 * scale / 200 * 2
	if !almostEqual(delta, wantDelta) {
		t.Errorf("glyph spacing = %v, want %v (skipped advance retained)", delta, wantDelta)
	}
}

func TestSpan_WhitespaceAdvance(t *testing.T) {
	src := testSource(t)
	span := NewSpan(src, "a b", WithFontSize(10), WithShaper(runeShaper{}))
	mesh, err := span.Mesh(Viewport{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	if len(mesh.Vertices) != 8 {
		t.Fatalf("vertices = %d, want 8", len(mesh.Vertices))
	}
	scale := float32(10.0 / 1000.0 * EmCorrection)
	delta := mesh.Vertices[4].Position[0] - mesh.Vertices[0].Position[0]
	wantDelta := 1200 * scale / 200 * 2
	if !almostEqual(delta, wantDelta) {
		t.Errorf("glyph spacing = %v, want %v", delta, wantDelta)
	}
}

func TestSpan_FontSizePt(t *testing.T) {
	span := NewSpan(nil, "", WithFontSizePt(72))
	if span.fontSize != 72*PxPerPoint {
		t.Errorf("fontSize = %v, want %v", span.fontSize, 72*PxPerPoint)
	}
	// 72 pt at 150 dpi is 150 px.
	if span.fontSize != 150 {
		t.Errorf("fontSize = %v, want 150", span.fontSize)
	}
}

func TestSpan_Alignment(t *testing.T) {
	src := testSource(t)
	viewport := Viewport{Width: 200, Height: 100}

	start := NewSpan(src, "a", WithFontSize(10), WithShaper(runeShaper{}),
		WithBox(200, 100), WithAlign(AlignStart, AlignStart))
	end := NewSpan(src, "a", WithFontSize(10), WithShaper(runeShaper{}),
		WithBox(200, 100), WithAlign(AlignEnd, AlignStart))

	sm, err := start.Mesh(viewport)
	if err != nil {
		t.Fatal(err)
	}
	em, err := end.Mesh(viewport)
	if err != nil {
		t.Fatal(err)
	}

	// End alignment shifts by box minus content width. Content width is
	// one advance of 600 design units scaled to pixels.
	scale := 10.0 / 1000.0 * EmCorrection
	contentPx := 600 * scale
	wantShift := float32((200 - contentPx) / 200 * 2)
	shift := em.Vertices[0].Position[0] - sm.Vertices[0].Position[0]
	if !almostEqual(shift, wantShift) {
		t.Errorf("alignment shift = %v, want %v", shift, wantShift)
	}
}

func TestSpan_CacheReuse(t *testing.T) {
	src := testSource(t)
	cache := glyph.NewCache(16)
	span := NewSpan(src, "aaaa", WithFontSize(10), WithShaper(runeShaper{}), WithCache(cache))

	if _, err := span.Mesh(Viewport{Width: 200, Height: 100}); err != nil {
		t.Fatalf("Mesh() error = %v", err)
	}
	hits, misses := cache.Stats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1 (one distinct glyph)", misses)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3 (three repeats)", hits)
	}
}

func TestCompositor_PaletteDedup(t *testing.T) {
	src := testSource(t)
	viewport := Viewport{Width: 200, Height: 100}
	red := textmesh.RGB(1, 0, 0)
	blue := textmesh.RGB(0, 0, 1)

	c := NewCompositor(viewport)
	c.Add(
		NewSpan(src, "a", WithFontSize(10), WithShaper(runeShaper{}), WithColor(red)),
		NewSpan(src, "b", WithFontSize(10), WithShaper(runeShaper{}), WithColor(red)),
		NewSpan(src, "c", WithFontSize(10), WithShaper(runeShaper{}), WithColor(blue)),
	)

	batch, err := c.Compose()
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(batch.Palette) != 2 {
		t.Fatalf("palette = %d entries, want 2", len(batch.Palette))
	}
	if batch.Palette[0] != red || batch.Palette[1] != blue {
		t.Errorf("palette = %v, want [red blue]", batch.Palette)
	}

	// First 8 vertices are the two red spans, last 4 the blue one.
	for i, v := range batch.Vertices {
		want := uint32(0)
		if i >= 8 {
			want = 1
		}
		if v.ColorIndex != want {
			t.Errorf("vertex %d color index = %d, want %d", i, v.ColorIndex, want)
		}
	}
}

func TestCompositor_GlobalReindex(t *testing.T) {
	src := testSource(t)
	c := NewCompositor(Viewport{Width: 200, Height: 100})
	c.Add(
		NewSpan(src, "a", WithFontSize(10), WithShaper(runeShaper{})),
		NewSpan(src, "b", WithFontSize(10), WithShaper(runeShaper{})),
	)
	batch, err := c.Compose()
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(batch.Vertices) != 8 || len(batch.Indices) != 12 {
		t.Fatalf("batch = %d vertices, %d indices, want 8 and 12",
			len(batch.Vertices), len(batch.Indices))
	}
	for _, idx := range batch.Indices[6:] {
		if idx < 4 || idx > 7 {
			t.Errorf("second span index %d outside [4, 7]", idx)
		}
	}
}

func TestCompositor_SpanFailureAborts(t *testing.T) {
	c := NewCompositor(Viewport{Width: 200, Height: 100})
	c.Add(NewSpan(testSource(t), "a", WithShaper(failShaper{})))
	if _, err := c.Compose(); !errors.Is(err, errShapeFailed) {
		t.Errorf("Compose() error = %v, want wrapped shaper error", err)
	}
}

func TestBatch_SubpixelOffsets(t *testing.T) {
	b := &Batch{}
	offsets := b.SubpixelOffsets()
	if offsets[0] != -1.0/3.0 || offsets[1] != 1.0/3.0 || offsets[2] != 0 {
		t.Errorf("SubpixelOffsets() = %v, want {-1/3, 1/3, 0}", offsets)
	}
}
