// Package glyph triangulates vector glyph outlines into GPU-ready meshes.
//
// A glyph outline arrives as a list of move/line/quad/cubic segments in
// font design units. The outline's closed contours (rings) are classified
// as solid or hole by winding direction, grouped, and filled with
// ear-clipping-with-holes triangulation. Each curved edge additionally
// yields one curve triangle whose UV coordinates drive an implicit
// quadratic in/out test in the fragment shader, so curves stay smooth
// without dense tessellation.
package glyph

import (
	"github.com/gogpu/textmesh/font"
)

// Vertex metadata bits, mirrored by the glyph shader.
const (
	// MetaConcave marks a curve triangle whose curved edge bows into the
	// fill: samples inside the implicit curve are kept instead of discarded.
	MetaConcave int32 = 1 << 0

	// MetaCurve marks a vertex belonging to a curve triangle rather than
	// the flat interior fill.
	MetaCurve int32 = 1 << 1
)

// Vertex is one mesh vertex in the layout uploaded to the GPU.
type Vertex struct {
	// Position holds x, y in font design units until layout rescales
	// them. Z is a placeholder and stays 0.
	Position [3]float32

	// UV is (0,0) for flat fill vertices. The three vertices of a curve
	// triangle carry (0,0), (0.5,0), (1,1), placing the implicit curve
	// u^2 - v = 0 along the triangle's curved edge.
	UV [2]float32

	// Meta is the metadata bitfield (MetaCurve, MetaConcave).
	Meta int32

	// ColorIndex is the palette slot assigned by the compositor.
	// Zero until a compositor stamps it.
	ColorIndex uint32
}

// Mesh is the immutable triangulation result for one glyph.
// Indices reference only this mesh's vertices until a layout or compositor
// pass re-indexes them into a larger buffer.
type Mesh struct {
	// GID is the glyph this mesh was built from.
	GID font.GlyphID

	// Vertices holds flat-fill vertices followed by curve-triangle vertices.
	Vertices []Vertex

	// Indices is a triangle list into Vertices.
	Indices []uint16

	// Bounds is the font's advertised bounding box for the glyph in
	// design units, independent of later layout transforms.
	Bounds font.Rect
}

// ringPoint is one outline point on a ring.
type ringPoint = font.Point

// ring is a closed contour; the last point implicitly connects to the first.
type ring []ringPoint

// curveTriangle is one quadratic bezier segment lifted to a GPU-testable
// triangle: start point, control point, end point.
type curveTriangle struct {
	p0, p1, p2 ringPoint
	concave    bool
}
