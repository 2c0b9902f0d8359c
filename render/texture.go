// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"os"

	// Texture decoders. BMP and TIFF come from x/image, the rest from
	// the standard library.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/chewxy/math32"
)

// Texture is a decoded image in linear light, sampled bilinearly with
// repeat wrapping.
type Texture struct {
	W, H int
	Pix  []float32 // RGBA, 4 entries per texel
}

// LoadTexture decodes the image at path into linear light. The decoder is
// chosen by content, not extension.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("render: texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: texture %s: %w", path, err)
	}
	return NewTextureFromImage(img), nil
}

// NewTextureFromImage converts an image to a linear-light texture.
func NewTextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	t := &Texture{W: b.Dx(), H: b.Dy()}
	t.Pix = make([]float32, t.W*t.H*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			t.Pix[i+0] = srgbToLinear(uint8(r >> 8))
			t.Pix[i+1] = srgbToLinear(uint8(g >> 8))
			t.Pix[i+2] = srgbToLinear(uint8(bb >> 8))
			t.Pix[i+3] = float32(a>>8) / 255
			i += 4
		}
	}
	return t
}

// texel returns the texel at integer coordinates with repeat wrapping.
func (t *Texture) texel(x, y int) (Color, float32) {
	x = ((x % t.W) + t.W) % t.W
	y = ((y % t.H) + t.H) % t.H
	i := (y*t.W + x) * 4
	return Color{t.Pix[i], t.Pix[i+1], t.Pix[i+2]}, t.Pix[i+3]
}

// Sample returns the bilinearly filtered color and alpha at (u, v), where v
// grows downward in texture space as in image files.
func (t *Texture) Sample(u, v float32) (Color, float32) {
	if t.W == 0 || t.H == 0 {
		return Color{}, 0
	}
	fx := u*float32(t.W) - 0.5
	fy := v*float32(t.H) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	c00, a00 := t.texel(x0, y0)
	c10, a10 := t.texel(x0+1, y0)
	c01, a01 := t.texel(x0, y0+1)
	c11, a11 := t.texel(x0+1, y0+1)

	top := c00.Lerp(c10, dx)
	bot := c01.Lerp(c11, dx)
	alpha := (a00*(1-dx)+a10*dx)*(1-dy) + (a01*(1-dx)+a11*dx)*dy
	return top.Lerp(bot, dy), alpha
}
