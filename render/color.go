// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render implements the CPU renderer behind a view3d window: a
// z-buffered triangle rasterizer with a physically based shading model, an
// optional path-traced mode, post-processing passes, image-based lighting
// and 2D overlays. Output is a float framebuffer convertible to image.RGBA.
package render

import (
	"github.com/chewxy/math32"
)

// Color is a linear RGB triple. Channel values are unbounded during
// shading and clamped on output.
type Color struct {
	R, G, B float32
}

// Gray returns a color with all channels set to v.
func Gray(v float32) Color { return Color{v, v, v} }

// Add returns c + o per channel.
func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

// Mul returns c scaled by s.
func (c Color) Mul(s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }

// MulColor returns the channel-wise product of c and o.
func (c Color) MulColor(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }

// Lerp returns c blended toward o by t in [0,1].
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// Clamp returns c with each channel limited to [0,1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// Luminance returns the Rec.709 luma of c.
func (c Color) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// FromFloats builds a Color from a 3-element slice, defaulting missing
// channels to zero. Option values arrive as []float64.
func FromFloats(v []float64) Color {
	var c Color
	if len(v) > 0 {
		c.R = float32(v[0])
	}
	if len(v) > 1 {
		c.G = float32(v[1])
	}
	if len(v) > 2 {
		c.B = float32(v[2])
	}
	return c
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// srgbToLinear converts one 8-bit sRGB channel to linear light.
func srgbToLinear(v uint8) float32 {
	f := float32(v) / 255
	if f <= 0.04045 {
		return f / 12.92
	}
	return math32.Pow((f+0.055)/1.055, 2.4)
}

// linearToSRGB converts one linear channel to an 8-bit sRGB value.
func linearToSRGB(v float32) uint8 {
	v = clamp01(v)
	var f float32
	if v <= 0.0031308 {
		f = v * 12.92
	} else {
		f = 1.055*math32.Pow(v, 1/2.4) - 0.055
	}
	return uint8(f*255 + 0.5)
}
