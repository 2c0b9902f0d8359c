// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sort"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
)

// ssaoPass darkens pixels whose depth neighborhood suggests occlusion. It
// reads the depth buffer produced by the opaque pass and scales the color
// planes in place.
func ssaoPass(fb *Framebuffer) {
	// Poisson-ish sample offsets in pixels.
	offsets := [...][2]int{
		{-3, 0}, {3, 0}, {0, -3}, {0, 3},
		{-2, -2}, {2, -2}, {-2, 2}, {2, 2},
	}
	const depthThreshold = 0.002
	const strength = 0.85

	inf := math32.Inf(1)
	occ := make([]float32, fb.W*fb.H)
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			z := fb.DepthAt(x, y)
			if z == inf {
				continue
			}
			var blocked int
			var counted int
			for _, o := range offsets {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || ny < 0 || nx >= fb.W || ny >= fb.H {
					continue
				}
				nz := fb.DepthAt(nx, ny)
				if nz == inf {
					continue
				}
				counted++
				if z-nz > depthThreshold {
					blocked++
				}
			}
			if counted > 0 {
				occ[y*fb.W+x] = float32(blocked) / float32(counted)
			}
		}
	}
	for i, o := range occ {
		if o == 0 {
			continue
		}
		scale := 1 - o*strength
		fb.Pix[i*4+0] *= scale
		fb.Pix[i*4+1] *= scale
		fb.Pix[i*4+2] *= scale
	}
}

// toneMapPass applies the ACES filmic curve, compressing HDR shading output
// into displayable range.
func toneMapPass(fb *Framebuffer) {
	acesChannel := func(x float32) float32 {
		return clamp01(x * (2.51*x + 0.03) / (x*(2.43*x+0.59) + 0.14))
	}
	for i := 0; i < len(fb.Depth); i++ {
		fb.Pix[i*4+0] = acesChannel(fb.Pix[i*4+0])
		fb.Pix[i*4+1] = acesChannel(fb.Pix[i*4+1])
		fb.Pix[i*4+2] = acesChannel(fb.Pix[i*4+2])
	}
}

// fxaaPass smooths high-contrast edges by blending with the neighborhood
// average where the local luminance gradient is steep.
func fxaaPass(fb *Framebuffer) {
	const edgeThreshold = 0.12

	src := make([]float32, len(fb.Pix))
	copy(src, fb.Pix)
	luma := func(i int) float32 {
		return 0.2126*src[i*4] + 0.7152*src[i*4+1] + 0.0722*src[i*4+2]
	}
	for y := 1; y < fb.H-1; y++ {
		for x := 1; x < fb.W-1; x++ {
			i := y*fb.W + x
			l := luma(i)
			lN := luma(i - fb.W)
			lS := luma(i + fb.W)
			lW := luma(i - 1)
			lE := luma(i + 1)
			lo := min3(lN, lS, min3(lW, lE, l))
			hi := max3(lN, lS, max3(lW, lE, l))
			if hi-lo < edgeThreshold {
				continue
			}
			// Blend 50% toward the 4-neighborhood average.
			for ch := 0; ch < 3; ch++ {
				avg := (src[(i-fb.W)*4+ch] + src[(i+fb.W)*4+ch] +
					src[(i-1)*4+ch] + src[(i+1)*4+ch]) / 4
				fb.Pix[i*4+ch] = (src[i*4+ch] + avg) / 2
			}
		}
	}
}

// blurBackgroundPass gaussian-blurs pixels never touched by geometry,
// leaving foreground crisp. The circle-of-confusion radius is in pixels.
func blurBackgroundPass(fb *Framebuffer, cocRadius float32) {
	if cocRadius <= 0 {
		cocRadius = 20
	}
	blurred := blur.Gaussian(fb.ToRGBA(), float64(cocRadius)/4)
	inf := math32.Inf(1)
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			if fb.DepthAt(x, y) != inf {
				continue
			}
			i := (y*fb.W + x) * 4
			o := blurred.PixOffset(x, y)
			fb.Pix[i+0] = srgbToLinear(blurred.Pix[o+0])
			fb.Pix[i+1] = srgbToLinear(blurred.Pix[o+1])
			fb.Pix[i+2] = srgbToLinear(blurred.Pix[o+2])
		}
	}
}

// FinalShaderFunc is a per-pixel hook applied as the last image pass,
// after tone mapping and antialiasing.
type FinalShaderFunc func(x, y int, c Color) Color

var (
	finalShaderMu sync.RWMutex
	finalShaders  = map[string]FinalShaderFunc{
		"grayscale": func(_, _ int, c Color) Color {
			return Gray(c.Luminance())
		},
		"invert": func(_, _ int, c Color) Color {
			return Color{1 - clamp01(c.R), 1 - clamp01(c.G), 1 - clamp01(c.B)}
		},
		"sepia": func(_, _ int, c Color) Color {
			return Color{
				0.393*c.R + 0.769*c.G + 0.189*c.B,
				0.349*c.R + 0.686*c.G + 0.168*c.B,
				0.272*c.R + 0.534*c.G + 0.131*c.B,
			}.Clamp()
		},
	}
)

// RegisterFinalShader makes a named pixel hook available to the
// final-shader option. Registering an existing name replaces it.
func RegisterFinalShader(name string, fn FinalShaderFunc) {
	finalShaderMu.Lock()
	defer finalShaderMu.Unlock()
	finalShaders[name] = fn
}

// LookupFinalShader returns the registered hook for name.
func LookupFinalShader(name string) (FinalShaderFunc, bool) {
	finalShaderMu.RLock()
	defer finalShaderMu.RUnlock()
	fn, ok := finalShaders[name]
	return fn, ok
}

// FinalShaderNames returns the sorted registered hook names.
func FinalShaderNames() []string {
	finalShaderMu.RLock()
	defer finalShaderMu.RUnlock()
	names := make([]string, 0, len(finalShaders))
	for name := range finalShaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// finalShaderPass runs the hook over every pixel.
func finalShaderPass(fb *Framebuffer, fn FinalShaderFunc) {
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			i := (y*fb.W + x) * 4
			c := fn(x, y, Color{fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2]})
			fb.Pix[i+0] = c.R
			fb.Pix[i+1] = c.G
			fb.Pix[i+2] = c.B
		}
	}
}
