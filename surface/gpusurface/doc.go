// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpusurface registers the wgpu-backed surface for GPU
// presentation.
//
// Import this package to make the gpu surface type constructible and to
// let Auto selection prefer it when an adapter is present. The surface
// uploads each finished frame to a device texture and runs the sRGB pack
// on the GPU through a wgpu/hal compute pipeline.
//
// If device bring-up fails (no Vulkan available, no adapters), the type
// stays registered but unavailable: Auto falls through to the software
// surface and explicit construction reports the unavailability.
//
// Usage:
//
//	import _ "github.com/gogpu/view3d/surface/gpusurface"
//
// Building with the nogpu tag removes the registration entirely; the gpu
// type then fails with a not-compiled-in error.
package gpusurface
