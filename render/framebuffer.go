// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/chewxy/math32"
)

// Framebuffer is a linear-light RGBA float target with a depth buffer.
// Pixel (0,0) is the top-left corner, matching image.RGBA; exports can
// flip to bottom-up ordering.
type Framebuffer struct {
	W, H  int
	Pix   []float32 // RGBA, 4 entries per pixel
	Depth []float32
}

// NewFramebuffer returns a framebuffer cleared to transparent black with
// the depth buffer at infinity.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffers when the size changes and clears them.
func (fb *Framebuffer) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w != fb.W || h != fb.H {
		fb.W, fb.H = w, h
		fb.Pix = make([]float32, w*h*4)
		fb.Depth = make([]float32, w*h)
	}
	fb.Clear(Color{}, 0)
}

// Clear fills the color planes with c at the given alpha and resets depth.
func (fb *Framebuffer) Clear(c Color, alpha float32) {
	inf := math32.Inf(1)
	for i := 0; i < len(fb.Depth); i++ {
		fb.Pix[i*4+0] = c.R
		fb.Pix[i*4+1] = c.G
		fb.Pix[i*4+2] = c.B
		fb.Pix[i*4+3] = alpha
		fb.Depth[i] = inf
	}
}

// At returns the color and alpha stored at (x, y).
func (fb *Framebuffer) At(x, y int) (Color, float32) {
	i := (y*fb.W + x) * 4
	return Color{fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2]}, fb.Pix[i+3]
}

// Set stores a color and alpha at (x, y) without blending or depth testing.
func (fb *Framebuffer) Set(x, y int, c Color, alpha float32) {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return
	}
	i := (y*fb.W + x) * 4
	fb.Pix[i+0] = c.R
	fb.Pix[i+1] = c.G
	fb.Pix[i+2] = c.B
	fb.Pix[i+3] = alpha
}

// Blend composites c over the stored pixel using standard alpha blending.
func (fb *Framebuffer) Blend(x, y int, c Color, alpha float32) {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return
	}
	i := (y*fb.W + x) * 4
	inv := 1 - alpha
	fb.Pix[i+0] = c.R*alpha + fb.Pix[i+0]*inv
	fb.Pix[i+1] = c.G*alpha + fb.Pix[i+1]*inv
	fb.Pix[i+2] = c.B*alpha + fb.Pix[i+2]*inv
	fb.Pix[i+3] = alpha + fb.Pix[i+3]*inv
}

// DepthAt returns the stored depth at (x, y), +Inf when never written.
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	return fb.Depth[y*fb.W+x]
}

// TestAndSetDepth performs a less-than depth test at (x, y). It returns
// true and stores z when the test passes.
func (fb *Framebuffer) TestAndSetDepth(x, y int, z float32) bool {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return false
	}
	i := y*fb.W + x
	if z >= fb.Depth[i] {
		return false
	}
	fb.Depth[i] = z
	return true
}

// DownsampleFrom box-filters src into fb. The source size must be an
// integer multiple of fb's size; color and alpha are averaged, depth
// keeps the per-block minimum.
func (fb *Framebuffer) DownsampleFrom(src *Framebuffer) {
	if fb.W == 0 || fb.H == 0 || src.W%fb.W != 0 || src.H%fb.H != 0 {
		return
	}
	f := src.W / fb.W
	if f < 1 || src.H/fb.H != f {
		return
	}
	inv := 1 / float32(f*f)
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			var r, g, b, a float32
			depth := math32.Inf(1)
			for sy := y * f; sy < (y+1)*f; sy++ {
				for sx := x * f; sx < (x+1)*f; sx++ {
					i := (sy*src.W + sx) * 4
					r += src.Pix[i+0]
					g += src.Pix[i+1]
					b += src.Pix[i+2]
					a += src.Pix[i+3]
					if d := src.Depth[sy*src.W+sx]; d < depth {
						depth = d
					}
				}
			}
			o := (y*fb.W + x) * 4
			fb.Pix[o+0] = r * inv
			fb.Pix[o+1] = g * inv
			fb.Pix[o+2] = b * inv
			fb.Pix[o+3] = a * inv
			fb.Depth[y*fb.W+x] = depth
		}
	}
}

// ToRGBA converts the framebuffer to an 8-bit sRGB image with opaque alpha,
// top row first. Used for on-screen presentation and PNG export.
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.W, fb.H))
	for i := 0; i < fb.W*fb.H; i++ {
		img.Pix[i*4+0] = linearToSRGB(fb.Pix[i*4+0])
		img.Pix[i*4+1] = linearToSRGB(fb.Pix[i*4+1])
		img.Pix[i*4+2] = linearToSRGB(fb.Pix[i*4+2])
		img.Pix[i*4+3] = 255
	}
	return img
}

// Pixels exports 8-bit sRGB pixel data with the requested channel count
// (3 for RGB, 4 for RGBA). When bottomUp is true the first exported row is
// the bottom scanline.
func (fb *Framebuffer) Pixels(channels int, bottomUp bool) []byte {
	if channels != 3 {
		channels = 4
	}
	out := make([]byte, fb.W*fb.H*channels)
	for y := 0; y < fb.H; y++ {
		srcRow := y
		if bottomUp {
			srcRow = fb.H - 1 - y
		}
		for x := 0; x < fb.W; x++ {
			src := (srcRow*fb.W + x) * 4
			dst := (y*fb.W + x) * channels
			out[dst+0] = linearToSRGB(fb.Pix[src+0])
			out[dst+1] = linearToSRGB(fb.Pix[src+1])
			out[dst+2] = linearToSRGB(fb.Pix[src+2])
			if channels == 4 {
				out[dst+3] = uint8(clamp01(fb.Pix[src+3])*255 + 0.5)
			}
		}
	}
	return out
}
