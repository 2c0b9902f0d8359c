// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpusurface

import (
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// createPresentTexture allocates the RGBA8 texture the packed frame is
// uploaded into. The host compositor consumes it from there.
func createPresentTexture(device hal.Device, width, height int) (hal.Texture, error) {
	texture, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "present_target",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpusurface: create present texture: %w", err)
	}
	return texture, nil
}

// uploadToTexture writes packed RGBA pixels into the present texture.
func uploadToTexture(queue hal.Queue, texture hal.Texture, width, height int, pixels []byte) {
	dst := &hal.ImageCopyTexture{
		Texture:  texture,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(width * 4),
		RowsPerImage: uint32(height),
	}
	size := &hal.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}
	queue.WriteTexture(dst, pixels, layout, size)
}
