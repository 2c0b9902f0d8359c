// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"
)

func TestFramebufferClear(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.Clear(Color{0.25, 0.5, 0.75}, 0.5)

	c, a := fb.At(3, 2)
	if c != (Color{0.25, 0.5, 0.75}) || a != 0.5 {
		t.Errorf("At(3,2) = %v, %g after clear", c, a)
	}
	if !math32.IsInf(fb.DepthAt(1, 1), 1) {
		t.Errorf("depth after clear = %g, want +Inf", fb.DepthAt(1, 1))
	}
}

func TestFramebufferBlend(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(Color{}, 1)
	fb.Blend(1, 1, Color{1, 1, 1}, 0.5)

	c, a := fb.At(1, 1)
	if math32.Abs(c.R-0.5) > 1e-6 || math32.Abs(c.G-0.5) > 1e-6 {
		t.Errorf("blended color = %v, want 0.5 gray", c)
	}
	if math32.Abs(a-1) > 1e-6 {
		t.Errorf("blended alpha = %g, want 1", a)
	}

	// Out-of-bounds blends are dropped.
	fb.Blend(-1, 0, Color{1, 0, 0}, 1)
	fb.Blend(0, 5, Color{1, 0, 0}, 1)
}

func TestTestAndSetDepth(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	if !fb.TestAndSetDepth(0, 0, 0.5) {
		t.Fatal("first depth write failed")
	}
	if fb.TestAndSetDepth(0, 0, 0.7) {
		t.Error("farther fragment passed the depth test")
	}
	if !fb.TestAndSetDepth(0, 0, 0.3) {
		t.Error("nearer fragment failed the depth test")
	}
	if got := fb.DepthAt(0, 0); got != 0.3 {
		t.Errorf("depth = %g, want 0.3", got)
	}
	if fb.TestAndSetDepth(2, 0, 0.1) {
		t.Error("out-of-bounds depth write passed")
	}
}

func TestPixelsChannels(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, Color{1, 0, 0}, 1)
	fb.Set(1, 0, Color{0, 1, 0}, 1)
	fb.Set(0, 1, Color{0, 0, 1}, 1)
	fb.Set(1, 1, Color{1, 1, 1}, 0)

	rgba := fb.Pixels(4, false)
	wantRGBA := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 0,
	}
	if !bytes.Equal(rgba, wantRGBA) {
		t.Errorf("Pixels(4, false) = %v, want %v", rgba, wantRGBA)
	}

	rgb := fb.Pixels(3, false)
	wantRGB := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	if !bytes.Equal(rgb, wantRGB) {
		t.Errorf("Pixels(3, false) = %v, want %v", rgb, wantRGB)
	}

	// Any channel count other than 3 exports RGBA.
	if got := fb.Pixels(5, false); len(got) != len(wantRGBA) {
		t.Errorf("Pixels(5) returned %d bytes, want %d", len(got), len(wantRGBA))
	}
}

func TestPixelsBottomUp(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, Color{1, 0, 0}, 1) // top row
	fb.Set(1, 0, Color{1, 0, 0}, 1)
	fb.Set(0, 1, Color{0, 0, 1}, 1) // bottom row
	fb.Set(1, 1, Color{0, 0, 1}, 1)

	out := fb.Pixels(3, true)
	// Bottom scanline (blue) is exported first.
	want := []byte{
		0, 0, 255, 0, 0, 255,
		255, 0, 0, 255, 0, 0,
	}
	if !bytes.Equal(out, want) {
		t.Errorf("Pixels(3, true) = %v, want %v", out, want)
	}
}

func TestToRGBA(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Set(0, 0, Color{1, 0, 0}, 0.5)

	img := fb.ToRGBA()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds = %v, want 2x1", img.Bounds())
	}
	if img.Pix[0] != 255 || img.Pix[1] != 0 {
		t.Errorf("pixel 0 = %v, want red", img.Pix[:4])
	}
	// Presentation images are always opaque.
	if img.Pix[3] != 255 || img.Pix[7] != 255 {
		t.Errorf("alpha = %d, %d, want 255", img.Pix[3], img.Pix[7])
	}
}

func TestResize(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Resize(5, 3)
	if fb.W != 5 || fb.H != 3 {
		t.Fatalf("size = %dx%d, want 5x3", fb.W, fb.H)
	}
	if len(fb.Pix) != 5*3*4 || len(fb.Depth) != 5*3 {
		t.Fatalf("buffer lengths = %d, %d", len(fb.Pix), len(fb.Depth))
	}

	// Resizing to the same dimensions still clears.
	fb.Set(0, 0, Color{1, 1, 1}, 1)
	fb.Resize(5, 3)
	if c, _ := fb.At(0, 0); c != (Color{}) {
		t.Errorf("pixel survived same-size resize: %v", c)
	}

	// Degenerate sizes clamp to one pixel.
	fb.Resize(0, -2)
	if fb.W != 1 || fb.H != 1 {
		t.Errorf("clamped size = %dx%d, want 1x1", fb.W, fb.H)
	}
}
