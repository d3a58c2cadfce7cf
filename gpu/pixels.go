package gpu

import "image"

// bgraToRGBA converts tightly-packed BGRA pixel data to RGBA in place
// into dst. Both slices must hold the same number of pixels.
func bgraToRGBA(src, dst []byte) {
	n := len(dst) / 4
	for i := 0; i < n; i++ {
		off := i * 4
		dst[off+0] = src[off+2]
		dst[off+1] = src[off+1]
		dst[off+2] = src[off+0]
		dst[off+3] = src[off+3]
	}
}

// ToImage wraps RGBA pixel data from Render in an image.RGBA without
// copying.
func ToImage(pixels []byte, width, height int) *image.RGBA {
	return &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
}
