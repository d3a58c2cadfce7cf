package glyph

import (
	"math"
	"sort"
)

// earcut triangulates a polygon with holes using ear clipping.
//
// points is the flattened vertex list: the outer ring first, then each
// hole ring. holeIndices gives the start offset of every hole within
// points. The returned triangle list indexes into points.
//
// Holes are first bridged into the outer ring (rightmost-visible-vertex
// bridges, processed left to right), reducing the problem to a single
// simple polygon, which is then clipped ear by ear. Self-intersecting or
// zero-area input makes the clipping pass stall; that is reported as
// errDegenerate rather than looping forever.
func earcut(points []ringPoint, holeIndices []int) ([]int, error) {
	outerLen := len(points)
	if len(holeIndices) > 0 {
		outerLen = holeIndices[0]
	}

	outer := linkedRing(points, 0, outerLen, true)
	if outer == nil {
		return nil, errDegenerate
	}
	if len(holeIndices) > 0 {
		outer = eliminateHoles(points, holeIndices, outer)
	}

	triangles := make([]int, 0, len(points)*3)
	return earcutLinked(outer, triangles)
}

// ecNode is a vertex in the circular doubly linked polygon list.
type ecNode struct {
	i    int // index into the flattened input
	x, y float64
	prev *ecNode
	next *ecNode
}

// linkedRing builds a circular list from points[start:end] wound
// counter-clockwise when ccw is true, clockwise otherwise.
func linkedRing(points []ringPoint, start, end int, ccw bool) *ecNode {
	if end-start < 3 {
		return nil
	}

	var area float64
	for i := start; i < end; i++ {
		j := i + 1
		if j == end {
			j = start
		}
		area += float64(points[i].X)*float64(points[j].Y) - float64(points[j].X)*float64(points[i].Y)
	}

	var last *ecNode
	if (area >= 0) == ccw {
		for i := start; i < end; i++ {
			last = insertNode(i, points[i], last)
		}
	} else {
		for i := end - 1; i >= start; i-- {
			last = insertNode(i, points[i], last)
		}
	}

	return filterPoints(last)
}

// insertNode inserts a node after last and returns it.
func insertNode(i int, p ringPoint, last *ecNode) *ecNode {
	n := &ecNode{i: i, x: float64(p.X), y: float64(p.Y)}
	if last == nil {
		n.prev = n
		n.next = n
	} else {
		n.next = last.next
		n.prev = last
		last.next.prev = n
		last.next = n
	}
	return n
}

// removeNode unlinks n from the ring.
func removeNode(n *ecNode) {
	n.next.prev = n.prev
	n.prev.next = n.next
}

// filterPoints removes duplicate and collinear vertices.
// Returns nil if fewer than 3 vertices remain.
func filterPoints(start *ecNode) *ecNode {
	if start == nil {
		return nil
	}
	p := start
	for {
		again := false
		if samePoint(p, p.next) || cross2d(p.prev, p, p.next) == 0 {
			removeNode(p)
			p = p.prev
			start = p
			if p == p.next {
				return nil
			}
			again = true
		}
		if !again {
			p = p.next
			if p == start {
				break
			}
		}
	}
	if start.next == start || start.next.next == start {
		return nil
	}
	return start
}

// earcutLinked clips ears off the polygon until only one triangle is left.
// A full pass with no clip means the polygon is degenerate
// (self-intersecting or zero-area).
func earcutLinked(ear *ecNode, triangles []int) ([]int, error) {
	if ear == nil {
		return nil, errDegenerate
	}

	filtered := false
	stop := ear
	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next

		if isEar(ear) {
			triangles = append(triangles, prev.i, ear.i, next.i)
			removeNode(ear)
			ear = next.next
			stop = ear
			filtered = false
			continue
		}

		ear = next
		if ear == stop {
			// One cleanup pass may unstick collinear leftovers.
			if filtered {
				return nil, errDegenerate
			}
			ear = filterPoints(ear)
			if ear == nil {
				// Everything removed was collinear residue; whatever
				// was clipped so far is the complete result.
				return triangles, nil
			}
			stop = ear
			filtered = true
		}
	}
	return triangles, nil
}

// isEar reports whether the triangle (ear.prev, ear, ear.next) is a valid
// ear: convex, with no other polygon vertex inside it.
func isEar(ear *ecNode) bool {
	a, b, c := ear.prev, ear, ear.next
	if cross2d(a, b, c) <= 0 {
		return false // reflex or degenerate corner
	}

	for p := c.next; p != a; p = p.next {
		if pointInTriangle(a, b, c, p) && cross2d(p.prev, p, p.next) <= 0 {
			return false
		}
	}
	return true
}

// eliminateHoles bridges every hole ring into the outer ring, producing a
// single polygon. Holes are processed left to right so bridges cannot
// cross each other.
func eliminateHoles(points []ringPoint, holeIndices []int, outer *ecNode) *ecNode {
	queue := make([]*ecNode, 0, len(holeIndices))
	for i, start := range holeIndices {
		end := len(points)
		if i+1 < len(holeIndices) {
			end = holeIndices[i+1]
		}
		list := linkedRing(points, start, end, false)
		if list != nil {
			queue = append(queue, leftmostNode(list))
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i].x < queue[j].x })

	for _, hole := range queue {
		outer = eliminateHole(hole, outer)
	}
	return outer
}

// eliminateHole connects hole to the outer ring with a two-way bridge.
func eliminateHole(hole, outer *ecNode) *ecNode {
	bridge := findHoleBridge(hole, outer)
	if bridge == nil {
		return outer
	}
	merged := splitPolygon(bridge, hole)
	filterPoints(merged)
	if out := filterPoints(bridge); out != nil {
		return out
	}
	return merged
}

// findHoleBridge locates the outer-ring vertex a bridge from hole can
// reach without crossing any edge: David Eberly's rightmost-intersection
// walk, then a refinement over reflex vertices inside the candidate
// triangle picking the one with the smallest tangent angle.
func findHoleBridge(hole, outer *ecNode) *ecNode {
	p := outer
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *ecNode

	// Find the edge whose horizontal intersection with the ray to the
	// left of the hole is closest to the hole point.
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				if x == hx {
					if hy == p.y {
						return p
					}
					if hy == p.next.y {
						return p.next
					}
				}
				if p.x < p.next.x {
					m = p
				} else {
					m = p.next
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}

	if m == nil {
		return nil
	}
	if hx == qx {
		return m // hole touches outline
	}

	// The bridge endpoint must be visible: check reflex outer vertices
	// inside the triangle (hole point, intersection, candidate) and take
	// the one minimizing the angle to the horizontal ray.
	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)

	p = m
	for {
		inTriLow := hy < my && pointInTriangleXY(hx, hy, qx, hy, mx, my, p.x, p.y)
		inTriHigh := hy >= my && pointInTriangleXY(qx, hy, hx, hy, mx, my, p.x, p.y)
		if hx >= p.x && p.x >= mx && hx != p.x && (inTriLow || inTriHigh) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if reflexCorner(p) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || sectorContains(m, p)))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return m
}

// splitPolygon joins rings a and b with a bridge edge a-b, returning one
// circular list containing both rings plus the duplicated bridge nodes.
func splitPolygon(a, b *ecNode) *ecNode {
	a2 := &ecNode{i: a.i, x: a.x, y: a.y}
	b2 := &ecNode{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

// leftmostNode returns the node with the smallest x (then y) coordinate.
func leftmostNode(start *ecNode) *ecNode {
	p, leftmost := start, start
	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}
		p = p.next
		if p == start {
			break
		}
	}
	return leftmost
}

// reflexCorner reports whether the polygon turns clockwise at p.
func reflexCorner(p *ecNode) bool {
	return cross2d(p.prev, p, p.next) <= 0
}

// sectorContains reports whether the bridge candidate q lies inside the
// interior angle sector at m. Used to break ties between equally angled
// candidates.
func sectorContains(m, q *ecNode) bool {
	return cross2d(m.prev, m, q) < 0 && cross2d(q, m, m.next) < 0
}

// cross2d returns the z component of (b-a) x (c-a): positive when a,b,c
// turn counter-clockwise.
func cross2d(a, b, c *ecNode) float64 {
	return (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
}

// samePoint reports whether two nodes share coordinates.
func samePoint(a, b *ecNode) bool {
	return a.x == b.x && a.y == b.y
}

// pointInTriangle reports whether p lies inside or on triangle (a, b, c),
// which must wind counter-clockwise.
func pointInTriangle(a, b, c, p *ecNode) bool {
	if samePoint(p, a) || samePoint(p, b) || samePoint(p, c) {
		return false
	}
	return pointInTriangleXY(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y)
}

// pointInTriangleXY is the coordinate form of the containment test.
// The triangle may wind either way.
func pointInTriangleXY(ax, ay, bx, by, cx, cy, px, py float64) bool {
	d1 := (bx-ax)*(py-ay) - (px-ax)*(by-ay)
	d2 := (cx-bx)*(py-by) - (px-bx)*(cy-by)
	d3 := (ax-cx)*(py-cy) - (px-cx)*(ay-cy)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
