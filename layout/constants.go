// Package layout positions glyph meshes into aligned, colored text spans
// and batches spans for a single GPU draw.
package layout

// EmCorrection rescales glyph geometry from em units to the pixel size a
// reader expects for a given font size. The value is an empirical match
// for the reference renderer's cap-height-vs-em convention: changing it
// changes rendered glyph size and position. Tunable, not derived.
const EmCorrection = 1.254

// PxPerPoint converts typographic points to pixels at the 150 dpi target
// this renderer was tuned for (150/72). Kept as the reference value for
// output parity rather than re-derived from display metrics.
const PxPerPoint = 150.0 / 72.0

// subpixelOffsets is the per-instance horizontal offset table, in pixels,
// for the three-sample subpixel antialiasing scheme: the batch is drawn
// once per offset and the samples blend in the target.
var subpixelOffsets = [3]float32{-1.0 / 3.0, 1.0 / 3.0, 0}

// Viewport is the target texture size in pixels. Layout math converts
// pixel positions to normalized device coordinates against these
// dimensions, so the same engine serves multiple output sizes in one
// process.
type Viewport struct {
	Width  int
	Height int
}
