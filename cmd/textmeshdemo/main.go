// Command textmeshdemo renders a line of text to a PNG through the full
// pipeline: shaping, glyph triangulation, layout, and the GPU renderer.
package main

import (
	"flag"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/textmesh"
	"github.com/gogpu/textmesh/font"
	"github.com/gogpu/textmesh/gpu"
	"github.com/gogpu/textmesh/layout"
)

func main() {
	var (
		fontPath = flag.String("font", "", "path to a TTF or OTF font file")
		text     = flag.String("text", "Hello, World!", "text to render")
		size     = flag.Float64("size", 64, "font size in pixels")
		width    = flag.Int("width", 800, "image width")
		height   = flag.Int("height", 600, "image height")
		output   = flag.String("output", "text.png", "output file")
	)
	flag.Parse()

	if *fontPath == "" {
		log.Fatal("textmeshdemo: -font is required")
	}

	src, err := font.NewSourceFromFile(*fontPath)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	viewport := layout.Viewport{Width: *width, Height: *height}
	span := layout.NewSpan(src, *text,
		layout.WithFontSize(*size),
		layout.WithBox(float64(*width), float64(*height)),
		layout.WithAlign(layout.AlignMiddle, layout.AlignMiddle),
		layout.WithColor(textmesh.RGB(1, 1, 1)),
	)

	compositor := layout.NewCompositor(viewport)
	compositor.Add(span)
	batch, err := compositor.Compose()
	if err != nil {
		log.Fatalf("Failed to compose text: %v", err)
	}

	device, err := gpu.Open()
	if err != nil {
		log.Fatalf("Failed to open GPU device: %v", err)
	}
	defer device.Close()
	log.Printf("Rendering on %s", device.Name())

	renderer := gpu.NewRenderer(device.HAL())
	defer renderer.Destroy()

	pixels, err := renderer.Render(batch)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, gpu.ToImage(pixels, *width, *height)); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	log.Printf("Saved %s (%dx%d, %d vertices, %d triangles)",
		*output, *width, *height, len(batch.Vertices), len(batch.Indices)/3)
}
