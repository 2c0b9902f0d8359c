// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/draw"
)

// softwareSurface keeps the last presented frame in memory. It backs
// offscreen rendering and image export on machines without a usable GPU and
// is the Auto fallback.
type softwareSurface struct {
	width, height int
	x, y          int
	title         string
	icon          image.Image
	dark          bool
	last          *image.RGBA
	closed        bool
}

func init() {
	Register(Software, PrioritySoftware, func(opts Options) (Surface, error) {
		return newSoftwareSurface(opts), nil
	}, nil)
}

func newSoftwareSurface(opts Options) *softwareSurface {
	w, h := opts.Width, opts.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &softwareSurface{width: w, height: h}
}

func (s *softwareSurface) Type() Type   { return Software }
func (s *softwareSurface) Name() string { return "software" }

func (s *softwareSurface) Size() (int, int) { return s.width, s.height }

func (s *softwareSurface) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

func (s *softwareSurface) Position() (int, int) { return s.x, s.y }

func (s *softwareSurface) SetPosition(x, y int) { s.x, s.y = x, y }

// Present retains the frame for Snapshot. The renderer allocates a fresh
// image per readback, so holding the reference is safe.
func (s *softwareSurface) Present(img *image.RGBA) error {
	if s.closed {
		return errors.New("surface: present on closed software surface")
	}
	s.last = img
	return nil
}

// Snapshot returns a copy of the last presented frame, nil before the
// first Present.
func (s *softwareSurface) Snapshot() *image.RGBA {
	if s.last == nil {
		return nil
	}
	out := image.NewRGBA(s.last.Bounds())
	draw.Draw(out, out.Bounds(), s.last, s.last.Bounds().Min, draw.Src)
	return out
}

func (s *softwareSurface) SetTitle(title string) { s.title = title }

func (s *softwareSurface) Title() string { return s.title }

func (s *softwareSurface) SetIcon(icon image.Image) { s.icon = icon }

func (s *softwareSurface) SetDarkTheme(dark bool) { s.dark = dark }

func (s *softwareSurface) DarkTheme() bool { return s.dark }

func (s *softwareSurface) Close() error {
	s.closed = true
	s.last = nil
	return nil
}
