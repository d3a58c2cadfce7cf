// Package textmesh converts vector font outlines into flat triangle meshes
// suitable for GPU rasterization, and lays glyph meshes out into aligned,
// multi-colored text spans that batch into a single draw call.
//
// # Overview
//
// The pipeline runs strictly downward:
//
//	font outline segments -> glyph.MeshBuilder -> glyph.Mesh
//	glyph.Mesh + shaped run -> layout.Builder -> per-span layout.TextMesh
//	spans -> layout.Compositor -> layout.Batch -> gpu.Renderer -> RGBA pixels
//
// Glyph outlines are triangulated with ear-clipping-with-holes; curved
// edges are carried as dedicated curve triangles whose UV coordinates let
// the fragment shader evaluate an implicit quadratic in/out test per pixel,
// so smooth curves render without dense tessellation.
//
// # Quick Start
//
//	src, _ := font.NewSource(ttfData)
//	span := layout.NewSpan(src, "Hello, World!",
//	    layout.WithFontSize(96),
//	    layout.WithPosition(100, 950),
//	    layout.WithColor(textmesh.RGB(0.18, 0.76, 0.93)))
//
//	comp := layout.NewCompositor(layout.Viewport{Width: 1920, Height: 1080})
//	comp.Add(span)
//	batch, _ := comp.Compose()
//
//	pixels, _ := renderer.Render(batch) // gpu.Renderer
//
// # Collaborators
//
// Font parsing lives in package font (golang.org/x/image sfnt backend
// behind a pluggable Parser interface) and text shaping in package shape
// (go-text/typesetting HarfBuzz implementation behind a Shaper interface).
// The GPU backend in package gpu runs on gogpu/wgpu.
//
// # Coordinate System
//
// Glyph geometry stays in font design units until the layout pass, which
// scales to pixels and then to normalized device coordinates for the
// target viewport.
package textmesh

// Version is the current version of the library.
const Version = "0.1.0"
