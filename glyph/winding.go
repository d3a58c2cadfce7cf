package glyph

// signedArea returns twice the signed area of a closed polygon via the
// shoelace sum. Positive means counter-clockwise in y-up glyph space.
func signedArea(points []ringPoint) float64 {
	var sum float64
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		sum += float64(cur.X)*float64(next.Y) - float64(next.X)*float64(cur.Y)
	}
	return sum
}

// isCCW reports whether the closed polygon winds counter-clockwise.
// A zero-area polygon counts as counter-clockwise, matching the reference
// convention (sum >= 0).
func isCCW(points []ringPoint) bool {
	return signedArea(points) >= 0
}
