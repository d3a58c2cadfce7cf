package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded glyph mesh shader source.
//
//go:embed shaders/glyph.wgsl
var glyphShaderSource string

// compileToSPIRV compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createShaderModule compiles WGSL through naga and creates a SPIR-V
// shader module. Falls back to the device's own WGSL frontend when the
// naga compile fails.
func createShaderModule(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	if words, err := compileToSPIRV(wgslSource); err == nil {
		return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: words},
		})
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgslSource},
	})
}

// GlyphShaderSource returns the WGSL source for the glyph mesh shader.
func GlyphShaderSource() string {
	return glyphShaderSource
}
