package font

// Point is a point in a glyph outline, in font design units with the
// y axis pointing up.
type Point struct {
	X, Y float32
}

// Segment represents one segment of a glyph outline.
type Segment struct {
	// Op is the segment operation type.
	Op Op

	// Points contains the control and end points for this segment.
	// - MoveTo: Points[0] is the target point
	// - LineTo: Points[0] is the target point
	// - QuadTo: Points[0] is control, Points[1] is target
	// - CubicTo: Points[0], Points[1] are controls, Points[2] is target
	Points [3]Point
}

// Op is the type of outline operation.
type Op uint8

const (
	// OpMoveTo starts a new contour at the target point.
	OpMoveTo Op = iota

	// OpLineTo draws a line to the target point.
	OpLineTo

	// OpQuadTo draws a quadratic bezier curve.
	OpQuadTo

	// OpCubicTo draws a cubic bezier curve.
	OpCubicTo
)

// String returns a string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpMoveTo:
		return "MoveTo"
	case OpLineTo:
		return "LineTo"
	case OpQuadTo:
		return "QuadTo"
	case OpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}
