// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpusurface

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/present.wgsl
var presentShaderWGSL string

// compileToSPIRV compiles WGSL source to SPIR-V words. Going through
// SPIR-V keeps the driver's WGSL frontend out of the picture; naga does
// the translation host-side.
func compileToSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpusurface: compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createPresentShader builds the pack shader module, preferring the
// SPIR-V path and falling back to handing the driver raw WGSL.
func createPresentShader(device hal.Device) (hal.ShaderModule, error) {
	if words, err := compileToSPIRV(presentShaderWGSL); err == nil {
		module, merr := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "present_pack",
			Source: hal.ShaderSource{SPIRV: words},
		})
		if merr == nil {
			return module, nil
		}
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "present_pack",
		Source: hal.ShaderSource{WGSL: presentShaderWGSL},
	})
}
