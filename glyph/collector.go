package glyph

import (
	"github.com/gogpu/textmesh/font"
)

// collector folds a glyph's outline segments into closed rings and curve
// triangles. It implements the move/line/quad/cubic contract of
// font.Segment streams: MoveTo starts a ring, LineTo extends it, QuadTo
// and CubicTo extend it while recording curve triangles for the curved
// strip between the hull points.
//
// reverseWind flips the winding classification for fonts whose contours
// come from a PostScript-style table (opposite convention to TrueType's
// native contour table).
type collector struct {
	reverseWind bool
	rings       []ring
	curves      []curveTriangle
}

// collect consumes all segments of one glyph outline.
// Returns ErrMalformedOutline if a drawing segment arrives before the
// first MoveTo.
func (c *collector) collect(segments []font.Segment) error {
	for _, seg := range segments {
		switch seg.Op {
		case font.OpMoveTo:
			c.closeRing()
			c.rings = append(c.rings, ring{seg.Points[0]})

		case font.OpLineTo:
			if len(c.rings) == 0 {
				return ErrMalformedOutline
			}
			c.push(seg.Points[0])

		case font.OpQuadTo:
			if len(c.rings) == 0 {
				return ErrMalformedOutline
			}
			c.quadTo(seg.Points[0], seg.Points[1])

		case font.OpCubicTo:
			if len(c.rings) == 0 {
				return ErrMalformedOutline
			}
			c.cubicTo(seg.Points[0], seg.Points[1], seg.Points[2])
		}
	}
	c.closeRing()
	return nil
}

// quadTo records one curve triangle for the quadratic segment ending at p,
// then extends the current ring. When the curved edge bows into the fill
// (concave), the control point joins the ring so the flat base polygon
// still covers the full glyph area; the shader carves the curve back out.
func (c *collector) quadTo(control, p ringPoint) {
	prev := c.last()
	tri := []ringPoint{prev, control, p}
	concave := isCCW(tri) != c.reverseWind
	c.curves = append(c.curves, curveTriangle{p0: prev, p1: control, p2: p, concave: concave})
	if concave {
		c.push(control)
	}
	c.push(p)
}

// cubicTo splits the cubic into two quadratics meeting at the midpoint of
// the two control points, then treats each half like quadTo.
func (c *collector) cubicTo(c1, c2, p ringPoint) {
	mid := ringPoint{
		X: c1.X + (c2.X-c1.X)/2,
		Y: c1.Y + (c2.Y-c1.Y)/2,
	}
	c.quadTo(c1, mid)
	c.quadTo(c2, p)
}

// closeRing normalizes the ring under construction: an explicit closing
// point duplicating the ring start is dropped.
func (c *collector) closeRing() {
	if len(c.rings) == 0 {
		return
	}
	r := c.rings[len(c.rings)-1]
	if len(r) > 1 && r[0] == r[len(r)-1] {
		c.rings[len(c.rings)-1] = r[:len(r)-1]
	}
}

// push appends a point to the current ring.
func (c *collector) push(p ringPoint) {
	c.rings[len(c.rings)-1] = append(c.rings[len(c.rings)-1], p)
}

// last returns the most recent point of the current ring.
func (c *collector) last() ringPoint {
	r := c.rings[len(c.rings)-1]
	return r[len(r)-1]
}
