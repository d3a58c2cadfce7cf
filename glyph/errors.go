package glyph

import (
	"errors"
	"fmt"

	"github.com/gogpu/textmesh/font"
)

// Sentinel errors for the glyph package.
var (
	// ErrMalformedOutline is returned when an outline emits a drawing
	// segment before any MoveTo.
	ErrMalformedOutline = errors.New("glyph: drawing segment before MoveTo")

	// ErrOrphanHole is returned when a hole-classified ring appears
	// before any solid ring. Attaching it to an implicit empty shape
	// would silently fill the hole, so the glyph is rejected instead.
	ErrOrphanHole = errors.New("glyph: hole contour before any solid contour")

	// ErrMeshTooLarge is returned when a glyph needs more vertices than
	// a 16-bit index buffer can address.
	ErrMeshTooLarge = errors.New("glyph: mesh exceeds 16-bit index range")

	// errDegenerate reports a polygon ear clipping cannot finish:
	// self-intersecting or zero-area geometry.
	errDegenerate = errors.New("glyph: degenerate geometry")
)

// DegenerateGeometryError reports that triangulation failed for one glyph.
// It is recoverable: the caller skips this glyph's mesh (the advance width
// is still consumed) and continues with the rest of the run.
type DegenerateGeometryError struct {
	// GID identifies the offending glyph.
	GID font.GlyphID

	// Err is the underlying cause.
	Err error
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("glyph: triangulation failed for glyph %d: %v", e.GID, e.Err)
}

func (e *DegenerateGeometryError) Unwrap() error {
	return e.Err
}
