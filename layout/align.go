package layout

// Align positions content along one axis of a span's bounding box.
// Horizontal and vertical alignment are independent.
type Align int

const (
	// AlignStart keeps the content at the box origin (left / bottom).
	AlignStart Align = iota

	// AlignMiddle centers the content extent within the box extent.
	AlignMiddle

	// AlignEnd pushes the content to the far edge of the box.
	AlignEnd
)

// String returns the string representation of the alignment.
func (a Align) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignMiddle:
		return "Middle"
	case AlignEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// offset returns the origin adjustment for content of the given extent
// inside a box of the given extent.
func (a Align) offset(boxExtent, contentExtent float64) float64 {
	switch a {
	case AlignMiddle:
		return boxExtent/2 - contentExtent/2
	case AlignEnd:
		return boxExtent - contentExtent
	default:
		return 0
	}
}
