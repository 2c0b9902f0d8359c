// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface abstracts the presentation target a viewer window renders
// into.
//
// A Surface receives finished frames and owns the host-facing window state
// (size, position, title, icon). Implementations range from a discard-all
// sink for headless bounds probes, over an in-memory software target, to a
// wgpu device presenting offscreen.
//
// # Registry
//
// Backends register a factory keyed by Type with a priority and an
// availability probe:
//
//	func init() {
//	    surface.Register(surface.GPU, surface.PriorityGPU, newGPUSurface, gpuAvailable)
//	}
//
// surface.New(surface.Auto, opts) picks the highest-priority available
// backend; naming a Type constructs exactly that backend or fails with a
// typed error. Native windowed backends (GLX, WGL, EGL, OSMesa, Cocoa) have
// enum values but no built-in factory; external integrations may register
// them.
package surface
