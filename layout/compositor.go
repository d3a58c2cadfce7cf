package layout

import (
	"math"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/glyph"
)

// Batch is the composed output of all spans: one vertex/index pair ready
// for upload, a deduplicated color palette indexed by Vertex.ColorIndex,
// and the subpixel offsets the renderer draws one instance per.
type Batch struct {
	Vertices []glyph.Vertex
	Indices  []uint16
	Palette  []textmesh.RGBA
	Viewport Viewport
}

// SubpixelOffsets returns the per-instance horizontal offsets in pixels.
func (b *Batch) SubpixelOffsets() [3]float32 {
	return subpixelOffsets
}

// Compositor merges spans into a single draw batch.
type Compositor struct {
	viewport Viewport
	spans    []*Span
}

// NewCompositor creates a compositor rendering into viewport.
func NewCompositor(viewport Viewport) *Compositor {
	return &Compositor{viewport: viewport}
}

// Add queues a span. Spans are composed in insertion order.
func (c *Compositor) Add(spans ...*Span) {
	c.spans = append(c.spans, spans...)
}

// Compose builds every span's mesh, assigns palette indices by exact
// color equality and merges the meshes into one batch. Any span failure
// aborts the whole composition.
func (c *Compositor) Compose() (*Batch, error) {
	batch := &Batch{Viewport: c.viewport}
	palette := make(map[textmesh.RGBA]uint32)

	for _, s := range c.spans {
		mesh, err := s.Mesh(c.viewport)
		if err != nil {
			return nil, err
		}
		idx, ok := palette[s.Color()]
		if !ok {
			idx = uint32(len(batch.Palette))
			palette[s.Color()] = idx
			batch.Palette = append(batch.Palette, s.Color())
		}

		base := len(batch.Vertices)
		if base+len(mesh.Vertices) > math.MaxUint16+1 {
			return nil, glyph.ErrMeshTooLarge
		}
		for _, i := range mesh.Indices {
			batch.Indices = append(batch.Indices, i+uint16(base))
		}
		for _, v := range mesh.Vertices {
			v.ColorIndex = idx
			batch.Vertices = append(batch.Vertices, v)
		}
	}

	textmesh.Logger().Debug("composed batch",
		"spans", len(c.spans),
		"vertices", len(batch.Vertices),
		"indices", len(batch.Indices),
		"colors", len(batch.Palette))
	return batch, nil
}
