package glyph

import (
	"errors"
	"testing"

	"github.com/gogpu/textmesh/font"
)

// stubFont is a minimal font.ParsedFont whose outlines are supplied per
// glyph index.
type stubFont struct {
	outlines map[font.GlyphID][]font.Segment
	hasGlyf  bool
}

func (s *stubFont) Name() string                                { return "stub" }
func (s *stubFont) NumGlyphs() int                              { return len(s.outlines) }
func (s *stubFont) UnitsPerEm() int                             { return 1000 }
func (s *stubFont) HasGlyfOutlines() bool                       { return s.hasGlyf }
func (s *stubFont) GlyphIndex(rune) font.GlyphID                { return 0 }
func (s *stubFont) GlyphAdvance(font.GlyphID, float64) float64  { return 600 }
func (s *stubFont) GlyphBounds(font.GlyphID, float64) font.Rect { return font.Rect{} }
func (s *stubFont) Metrics(float64) font.Metrics                { return font.Metrics{} }

func (s *stubFont) Outline(gid font.GlyphID) ([]font.Segment, error) {
	return s.outlines[gid], nil
}

// solidSquare is a clockwise contour, the solid winding for native
// contour tables.
func solidSquare(x0, y0, x1, y1 float32) []font.Segment {
	return []font.Segment{
		moveTo(x0, y0),
		lineTo(x0, y1),
		lineTo(x1, y1),
		lineTo(x1, y0),
	}
}

// hole is a counter-clockwise contour.
func hole(x0, y0, x1, y1 float32) []font.Segment {
	return []font.Segment{
		moveTo(x0, y0),
		lineTo(x1, y0),
		lineTo(x1, y1),
		lineTo(x0, y1),
	}
}

func TestMeshBuilder_EmptyOutline(t *testing.T) {
	f := &stubFont{outlines: map[font.GlyphID][]font.Segment{}, hasGlyf: true}
	mesh, err := NewMeshBuilder().Build(f, 3)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if mesh != nil {
		t.Errorf("Build() = %v, want nil mesh for empty outline", mesh)
	}
}

func TestMeshBuilder_Square(t *testing.T) {
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: solidSquare(0, 0, 100, 100)},
		hasGlyf:  true,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if mesh.GID != 1 {
		t.Errorf("GID = %d, want 1", mesh.GID)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 6 {
		t.Errorf("indices = %d, want 6", len(mesh.Indices))
	}
	for i, v := range mesh.Vertices {
		if v.Meta != 0 {
			t.Errorf("vertex %d meta = %d, want 0 for flat fill", i, v.Meta)
		}
		if v.UV != [2]float32{0, 0} {
			t.Errorf("vertex %d uv = %v, want zero", i, v.UV)
		}
	}
}

func TestMeshBuilder_QuadCurveAddsTriangle(t *testing.T) {
	// A square whose top edge is a convex quadratic. The flat polygon keeps
	// its 4 hull points; the curve adds 3 more vertices and one triangle.
	segs := []font.Segment{
		moveTo(0, 0),
		lineTo(0, 100),
		quadTo(50, 150, 100, 100),
		lineTo(100, 0),
	}
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: segs},
		hasGlyf:  true,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(mesh.Vertices) != 7 {
		t.Errorf("vertices = %d, want 7 (4 hull + 3 curve)", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 9 {
		t.Errorf("indices = %d, want 9 (2 fill + 1 curve triangles)", len(mesh.Indices))
	}

	curveVerts := mesh.Vertices[4:]
	for i, v := range curveVerts {
		if v.Meta&MetaCurve == 0 {
			t.Errorf("curve vertex %d missing curve bit", i)
		}
		if v.Meta&MetaConcave != 0 {
			t.Errorf("curve vertex %d marked concave, want convex", i)
		}
		if v.UV != curveUVs[i] {
			t.Errorf("curve vertex %d uv = %v, want %v", i, v.UV, curveUVs[i])
		}
	}
}

func TestMeshBuilder_ConcaveCurveExtendsHull(t *testing.T) {
	// The top edge bows into the square: the control point joins the flat
	// polygon and the curve triangle carries the concave bit.
	segs := []font.Segment{
		moveTo(0, 0),
		lineTo(0, 100),
		quadTo(50, 50, 100, 100),
		lineTo(100, 0),
	}
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: segs},
		hasGlyf:  true,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// 5 hull points (control included) and 3 curve vertices.
	if len(mesh.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8 (5 hull + 3 curve)", len(mesh.Vertices))
	}
	last := mesh.Vertices[len(mesh.Vertices)-1]
	if last.Meta != MetaCurve|MetaConcave {
		t.Errorf("curve meta = %d, want curve|concave", last.Meta)
	}
}

func TestMeshBuilder_SquareWithHole(t *testing.T) {
	segs := append(solidSquare(0, 0, 100, 100), hole(30, 30, 70, 70)...)
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: segs},
		hasGlyf:  true,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(mesh.Vertices) != 8 {
		t.Errorf("vertices = %d, want 8", len(mesh.Vertices))
	}
	if len(mesh.Indices) < 24 {
		t.Errorf("indices = %d, want at least 24", len(mesh.Indices))
	}
}

func TestMeshBuilder_OrphanHole(t *testing.T) {
	// A hole contour with no preceding solid contour is rejected, wrapped
	// in a per-glyph degenerate error.
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: hole(0, 0, 10, 10)},
		hasGlyf:  true,
	}
	_, err := NewMeshBuilder().Build(f, 1)
	if !errors.Is(err, ErrOrphanHole) {
		t.Fatalf("Build() error = %v, want ErrOrphanHole", err)
	}
	var degen *DegenerateGeometryError
	if !errors.As(err, &degen) {
		t.Fatal("error is not a DegenerateGeometryError")
	}
	if degen.GID != 1 {
		t.Errorf("degenerate GID = %d, want 1", degen.GID)
	}
}

func TestMeshBuilder_ReverseWindForNonGlyf(t *testing.T) {
	// For PostScript-style outlines the winding convention flips: the ring
	// that reads as a hole in a native table is solid here.
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: hole(0, 0, 100, 100)},
		hasGlyf:  false,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(mesh.Vertices))
	}
}

func TestMeshBuilder_TinyRingDropped(t *testing.T) {
	// Two-point contours carry no area and are skipped.
	segs := append(solidSquare(0, 0, 100, 100),
		moveTo(200, 200), lineTo(210, 210))
	f := &stubFont{
		outlines: map[font.GlyphID][]font.Segment{1: segs},
		hasGlyf:  true,
	}
	mesh, err := NewMeshBuilder().Build(f, 1)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4 (degenerate contour dropped)", len(mesh.Vertices))
	}
}
