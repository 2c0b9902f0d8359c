// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "image"

// noneSurface discards every frame. It exists so a window can be built for
// headless bounds and metadata queries without any rendering target; the
// option synchronizer detects it and skips per-frame work.
type noneSurface struct {
	width, height int
	x, y          int
}

func init() {
	Register(None, PriorityNone, func(opts Options) (Surface, error) {
		return newNoneSurface(opts), nil
	}, nil)
}

func newNoneSurface(opts Options) *noneSurface {
	w, h := opts.Width, opts.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &noneSurface{width: w, height: h}
}

func (s *noneSurface) Type() Type   { return None }
func (s *noneSurface) Name() string { return "none" }

func (s *noneSurface) Size() (int, int) { return s.width, s.height }

func (s *noneSurface) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

func (s *noneSurface) Position() (int, int) { return s.x, s.y }

func (s *noneSurface) SetPosition(x, y int) { s.x, s.y = x, y }

func (s *noneSurface) Present(*image.RGBA) error { return nil }

func (s *noneSurface) Close() error { return nil }
