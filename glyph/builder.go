package glyph

import (
	"math"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/font"
)

// curveUVs are the UV coordinates assigned to the three vertices of every
// curve triangle, in vertex order. They place the implicit curve
// u^2 - v = 0 through the triangle's start and end points with the
// control point outside it.
var curveUVs = [3][2]float32{{0, 0}, {0.5, 0}, {1, 1}}

// shapeGroup is one solid contour with the holes cut out of it.
type shapeGroup struct {
	outer ring
	holes []ring
}

// MeshBuilder builds triangle meshes for individual glyphs.
// The zero value is ready to use; Build is safe for concurrent use.
type MeshBuilder struct{}

// NewMeshBuilder creates a new mesh builder.
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{}
}

// Build triangulates the outline of one glyph.
//
// Returns (nil, nil) when the glyph has no outline (e.g., space): the
// caller still consumes the glyph's advance width. Geometry that cannot
// be triangulated yields a *DegenerateGeometryError naming the glyph;
// such failures are isolated to the glyph and must not abort the run.
func (b *MeshBuilder) Build(parsed font.ParsedFont, gid font.GlyphID) (*Mesh, error) {
	segments, err := parsed.Outline(gid)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, nil
	}

	// PostScript-style contour tables wind opposite to native ones.
	col := collector{reverseWind: !parsed.HasGlyfOutlines()}
	if err := col.collect(segments); err != nil {
		return nil, &DegenerateGeometryError{GID: gid, Err: err}
	}

	groups, err := groupRings(col.rings, col.reverseWind)
	if err != nil {
		return nil, &DegenerateGeometryError{GID: gid, Err: err}
	}

	mesh := &Mesh{
		GID:    gid,
		Bounds: parsed.GlyphBounds(gid, float64(parsed.UnitsPerEm())),
	}

	for _, g := range groups {
		if err := appendGroup(mesh, g); err != nil {
			return nil, &DegenerateGeometryError{GID: gid, Err: err}
		}
	}
	if err := appendCurves(mesh, col.curves); err != nil {
		return nil, &DegenerateGeometryError{GID: gid, Err: err}
	}

	textmesh.Logger().Debug("glyph: built mesh",
		"gid", gid,
		"rings", len(col.rings),
		"groups", len(groups),
		"curves", len(col.curves),
		"vertices", len(mesh.Vertices),
		"indices", len(mesh.Indices))

	return mesh, nil
}

// groupRings classifies rings as solid or hole by winding and groups each
// hole with the most recently started solid. Rings with fewer than three
// points carry no area and are dropped.
func groupRings(rings []ring, reverseWind bool) ([]shapeGroup, error) {
	var groups []shapeGroup
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		hole := isCCW(r) != reverseWind
		if !hole {
			groups = append(groups, shapeGroup{outer: r})
			continue
		}
		if len(groups) == 0 {
			return nil, ErrOrphanHole
		}
		g := &groups[len(groups)-1]
		g.holes = append(g.holes, r)
	}
	return groups, nil
}

// appendGroup triangulates one shape group and appends its vertices and
// re-offset indices to the mesh.
func appendGroup(mesh *Mesh, g shapeGroup) error {
	points := make([]ringPoint, 0, len(g.outer)+8)
	points = append(points, g.outer...)
	holeIndices := make([]int, 0, len(g.holes))
	for _, h := range g.holes {
		holeIndices = append(holeIndices, len(points))
		points = append(points, h...)
	}

	local, err := earcut(points, holeIndices)
	if err != nil {
		return err
	}

	base := len(mesh.Vertices)
	if base+len(points) > math.MaxUint16+1 {
		return ErrMeshTooLarge
	}
	for _, t := range local {
		mesh.Indices = append(mesh.Indices, uint16(base+t))
	}
	for _, p := range points {
		mesh.Vertices = append(mesh.Vertices, Vertex{
			Position: [3]float32{p.X, p.Y, 0},
		})
	}
	return nil
}

// appendCurves appends one triangle per curve strip, after all flat fill
// geometry.
func appendCurves(mesh *Mesh, curves []curveTriangle) error {
	if len(mesh.Vertices)+3*len(curves) > math.MaxUint16+1 {
		return ErrMeshTooLarge
	}
	for _, c := range curves {
		meta := MetaCurve
		if c.concave {
			meta |= MetaConcave
		}
		base := uint16(len(mesh.Vertices))
		mesh.Indices = append(mesh.Indices, base, base+1, base+2)
		for i, p := range [3]ringPoint{c.p0, c.p1, c.p2} {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{p.X, p.Y, 0},
				UV:       curveUVs[i],
				Meta:     meta,
			})
		}
	}
	return nil
}
