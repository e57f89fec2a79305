package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/model.wgsl
var modelShaderWGSL string

//go:embed shaders/overlay.wgsl
var overlayShaderWGSL string

// ShaderSource returns the WGSL source of the named pass, "model" or
// "overlay".
func ShaderSource(pass string) (string, bool) {
	switch pass {
	case PassModel:
		return modelShaderWGSL, true
	case PassOverlay:
		return overlayShaderWGSL, true
	}
	return "", false
}

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
