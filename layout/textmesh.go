package layout

import (
	"math"

	"github.com/gogpu/textmesh/glyph"
	"github.com/gogpu/textmesh/shape"
)

// TextMesh is the flattened triangle mesh for one span or one composed
// batch. Ownership transfers to the caller on build.
type TextMesh struct {
	Vertices []glyph.Vertex
	Indices  []uint16
}

// item pairs a glyph's mesh (nil when the glyph has no outline or was
// skipped) with its shaped positioning data.
type item struct {
	mesh *glyph.Mesh
	g    shape.Glyph
}

// Builder lays glyph meshes out along a cursor and rescales them from
// font design units into normalized device coordinates.
//
// The cursor starts at (0, 0) and advances by each glyph's shaped
// advance, whether or not the glyph produced a mesh, so whitespace still
// consumes its width.
type Builder struct {
	viewport   Viewport
	fontSize   float64
	originX    float64 // post-alignment origin in pixels
	originY    float64
	unitsPerEm int
	items      []item
}

// NewBuilder creates a layout builder for one span.
// fontSize and the origin are in pixels; unitsPerEm comes from the font.
func NewBuilder(viewport Viewport, fontSize, originX, originY float64, unitsPerEm int) *Builder {
	return &Builder{
		viewport:   viewport,
		fontSize:   fontSize,
		originX:    originX,
		originY:    originY,
		unitsPerEm: unitsPerEm,
	}
}

// Add appends one shaped glyph. mesh may be nil (no outline, or skipped
// after a triangulation failure); its advance is still consumed.
func (b *Builder) Add(mesh *glyph.Mesh, g shape.Glyph) {
	b.items = append(b.items, item{mesh: mesh, g: g})
}

// Build produces the final mesh. Vertices are transformed design-unit →
// pixel → NDC; indices are re-offset into the combined vertex list.
func (b *Builder) Build() (TextMesh, error) {
	scale := float32(b.fontSize / float64(b.unitsPerEm) * EmCorrection)
	w := float32(b.viewport.Width)
	h := float32(b.viewport.Height)
	offsetX := float32(b.originX) / w * 2
	offsetY := float32(b.originY) / h * 2

	var out TextMesh
	var cursorX, cursorY float32

	for _, it := range b.items {
		if it.mesh != nil {
			base := len(out.Vertices)
			if base+len(it.mesh.Vertices) > math.MaxUint16+1 {
				return TextMesh{}, glyph.ErrMeshTooLarge
			}
			for _, idx := range it.mesh.Indices {
				out.Indices = append(out.Indices, idx+uint16(base))
			}
			gx := cursorX + float32(it.g.XOffset)
			gy := cursorY + float32(it.g.YOffset)
			for _, v := range it.mesh.Vertices {
				x := (v.Position[0] + gx) * scale
				y := (v.Position[1] + gy) * scale
				v.Position[0] = x/w*2 - 1 + offsetX
				v.Position[1] = y/h*2 - 1 + offsetY
				out.Vertices = append(out.Vertices, v)
			}
		}
		cursorX += float32(it.g.XAdvance)
		cursorY += float32(it.g.YAdvance)
	}

	return out, nil
}
