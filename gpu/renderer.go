package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/textmesh/glyph"
	"github.com/gogpu/textmesh/layout"
)

// glyphVertexStride is the byte stride per vertex in the glyph pipeline.
// Layout per vertex:
//
//	position    (vec3<f32>) = 12 bytes (location 0)
//	uv          (vec2<f32>) = 8 bytes  (location 1)
//	meta        (i32)       = 4 bytes  (location 2)
//	color_index (u32)       = 4 bytes  (location 3)
//
// Total = 28 bytes per vertex.
const glyphVertexStride = 28

// paramsUniformSize is the byte size of the Params uniform buffer:
// viewport (vec4<f32>) + offsets (vec4<f32>) = 32 bytes.
const paramsUniformSize = 32

// instanceCount is the number of subpixel-shifted instances drawn per
// frame. Each instance contributes a third of the final coverage.
const instanceCount = 3

// sampleCount is the MSAA sample count for the glyph render pass.
const sampleCount = 4

// Renderer draws composed glyph batches into an offscreen target and
// reads the pixels back. It owns the render pipeline and the MSAA and
// resolve textures, recreating them when the target size changes.
type Renderer struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	msaaTex     hal.Texture
	msaaView    hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView

	width, height uint32
}

// NewRenderer creates a renderer on the given device and queue. GPU
// objects are created lazily on the first Render call.
func NewRenderer(device hal.Device, queue hal.Queue) *Renderer {
	return &Renderer{device: device, queue: queue}
}

// NewRendererFromProvider creates a renderer from a host device provider
// exposing HalDevice() any and HalQueue() any.
func NewRendererFromProvider(provider any) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	return NewRenderer(device, queue), nil
}

// Render draws the batch and returns RGBA pixels, one row-major
// viewport worth, 4 bytes per pixel. An empty batch returns cleared
// pixels without touching the GPU pipeline state.
func (r *Renderer) Render(batch *layout.Batch) ([]byte, error) {
	w, h := uint32(batch.Viewport.Width), uint32(batch.Viewport.Height) //nolint:gosec // dimensions always fit uint32
	if len(batch.Indices) == 0 {
		return make([]byte, int(w)*int(h)*4), nil
	}

	if err := r.ensureTextures(w, h); err != nil {
		return nil, fmt.Errorf("gpu: ensure textures: %w", err)
	}
	if r.pipeline == nil {
		if err := r.createPipeline(); err != nil {
			return nil, fmt.Errorf("gpu: create pipeline: %w", err)
		}
	}

	vertBuf, err := r.createAndUploadBuffer("glyph_verts", buildVertexData(batch.Vertices),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("gpu: create vertex buffer: %w", err)
	}
	defer r.device.DestroyBuffer(vertBuf)

	idxBuf, err := r.createAndUploadBuffer("glyph_indices", buildIndexData(batch.Indices),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("gpu: create index buffer: %w", err)
	}
	defer r.device.DestroyBuffer(idxBuf)

	uniformBuf, err := r.createAndUploadBuffer("glyph_params", makeParams(w, h, batch.SubpixelOffsets()),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	defer r.device.DestroyBuffer(uniformBuf)

	paletteData := buildPaletteData(batch)
	paletteBuf, err := r.createAndUploadBuffer("glyph_palette", paletteData,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("gpu: create palette buffer: %w", err)
	}
	defer r.device.DestroyBuffer(paletteBuf)

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyph_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: paramsUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: paletteBuf.NativeHandle(), Offset: 0, Size: uint64(len(paletteData)),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer r.device.DestroyBindGroup(bindGroup)

	indexCount := uint32(len(batch.Indices)) //nolint:gosec // index count bounded by uint16 vertex space
	return r.encodeAndReadback(w, h, vertBuf, idxBuf, indexCount, bindGroup)
}

// Destroy releases all GPU resources held by the renderer. Safe to call
// multiple times.
func (r *Renderer) Destroy() {
	r.destroyPipeline()
	r.destroyTextures()
}

func (r *Renderer) ensureTextures(w, h uint32) error {
	if r.width == w && r.height == h && r.msaaTex != nil {
		return nil
	}
	r.destroyTextures()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	msaaTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_msaa",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	r.msaaTex = msaaTex

	msaaView, err := r.device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label:         "glyph_msaa_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTextures()
		return fmt.Errorf("create MSAA view: %w", err)
	}
	r.msaaView = msaaView

	resolveTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "glyph_resolve",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		r.destroyTextures()
		return fmt.Errorf("create resolve texture: %w", err)
	}
	r.resolveTex = resolveTex

	resolveView, err := r.device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
		Label:         "glyph_resolve_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTextures()
		return fmt.Errorf("create resolve view: %w", err)
	}
	r.resolveView = resolveView

	r.width = w
	r.height = h
	return nil
}

func (r *Renderer) destroyTextures() {
	if r.resolveView != nil {
		r.device.DestroyTextureView(r.resolveView)
		r.resolveView = nil
	}
	if r.resolveTex != nil {
		r.device.DestroyTexture(r.resolveTex)
		r.resolveTex = nil
	}
	if r.msaaView != nil {
		r.device.DestroyTextureView(r.msaaView)
		r.msaaView = nil
	}
	if r.msaaTex != nil {
		r.device.DestroyTexture(r.msaaTex)
		r.msaaTex = nil
	}
	r.width = 0
	r.height = 0
}

func (r *Renderer) createPipeline() error {
	if glyphShaderSource == "" {
		return fmt.Errorf("glyph shader source is empty")
	}

	shader, err := createShaderModule(r.device, "glyph_shader", glyphShaderSource)
	if err != nil {
		return fmt.Errorf("compile glyph shader: %w", err)
	}
	r.shader = shader

	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyph_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "glyph_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    glyphVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	r.pipeline = pipeline

	return nil
}

func (r *Renderer) destroyPipeline() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// encodeAndReadback encodes the glyph render pass, copies the resolve
// texture to a staging buffer, submits, waits, and reads back pixels.
func (r *Renderer) encodeAndReadback(
	w, h uint32, vertBuf, idxBuf hal.Buffer, indexCount uint32, bindGroup hal.BindGroup,
) ([]byte, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "glyph_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("glyph_frame"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rpDesc := &hal.RenderPassDescriptor{
		Label: "glyph_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:          r.msaaView,
				ResolveTarget: r.resolveView,
				LoadOp:        gputypes.LoadOpClear,
				StoreOp:       gputypes.StoreOpStore,
				ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	}
	rp := encoder.BeginRenderPass(rpDesc)
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.SetIndexBuffer(idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
	rp.End()

	// After MSAA resolve the texture is in COLOR_ATTACHMENT_OPTIMAL layout
	// on Vulkan; CopyTextureToBuffer needs TRANSFER_SRC_OPTIMAL.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// WebGPU and DX12 require BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingBufSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_staging",
		Size:  stagingBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Transition back so the next frame's resolve barrier is valid.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("gpu: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}

	pixels := make([]byte, int(w)*int(h)*4)
	if alignedBytesPerRow == bytesPerRow {
		bgraToRGBA(readback, pixels)
	} else {
		tight := make([]byte, uint64(bytesPerRow)*uint64(h))
		for row := uint32(0); row < h; row++ {
			srcOff := int(row) * int(alignedBytesPerRow)
			dstOff := int(row) * int(bytesPerRow)
			copy(tight[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
		}
		bgraToRGBA(tight, pixels)
	}
	return pixels, nil
}

func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// glyphVertexLayout returns the vertex buffer layout matching VertexInput
// in glyph.wgsl.
func glyphVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: glyphVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // uv
				{Format: gputypes.VertexFormatSint32, Offset: 20, ShaderLocation: 2},    // meta
				{Format: gputypes.VertexFormatUint32, Offset: 24, ShaderLocation: 3},    // color_index
			},
		},
	}
}

// buildVertexData serializes glyph vertices into raw bytes for upload.
func buildVertexData(verts []glyph.Vertex) []byte {
	data := make([]byte, len(verts)*glyphVertexStride)
	off := 0
	for i := range verts {
		v := &verts[i]
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(data[off+12:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(data[off+16:], math.Float32bits(v.UV[1]))
		binary.LittleEndian.PutUint32(data[off+20:], uint32(v.Meta)) //nolint:gosec // two low bits only
		binary.LittleEndian.PutUint32(data[off+24:], v.ColorIndex)
		off += glyphVertexStride
	}
	return data
}

// buildIndexData serializes uint16 indices into raw bytes for upload.
func buildIndexData(indices []uint16) []byte {
	data := make([]byte, len(indices)*2)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// makeParams creates the 32-byte Params uniform: viewport dimensions and
// the per-instance subpixel offsets.
func makeParams(w, h uint32, offsets [3]float32) []byte {
	buf := make([]byte, paramsUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(h)))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(offsets[0]))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(offsets[1]))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(offsets[2]))
	return buf
}

// buildPaletteData serializes the batch palette as vec4<f32> entries.
// An empty palette still produces one transparent entry so the storage
// binding is never zero-sized.
func buildPaletteData(batch *layout.Batch) []byte {
	n := len(batch.Palette)
	if n == 0 {
		n = 1
	}
	data := make([]byte, n*16)
	for i, c := range batch.Palette {
		f := c.Float32()
		for j, v := range f {
			binary.LittleEndian.PutUint32(data[i*16+j*4:], math.Float32bits(v))
		}
	}
	return data
}
