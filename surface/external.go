// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"
	"unsafe"
)

// externalSurface forwards frames to an embedding host application. The
// host owns the real window; this surface carries the viewer-side state and
// converts between the display convention (origin bottom-left) and the
// host convention (origin top-left).
//
// External surfaces are registered but never picked by Auto selection: they
// are useless without a host that installs a frame sink.
type externalSurface struct {
	width, height int
	x, y          int
	loader        func(name string) unsafe.Pointer
	sink          func(img *image.RGBA)
	closed        bool
}

func init() {
	Register(External, PriorityExternal, func(opts Options) (Surface, error) {
		return newExternalSurface(opts), nil
	}, nil)
}

func newExternalSurface(opts Options) *externalSurface {
	w, h := opts.Width, opts.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &externalSurface{width: w, height: h, loader: opts.Loader}
}

func (s *externalSurface) Type() Type   { return External }
func (s *externalSurface) Name() string { return "external" }

func (s *externalSurface) Size() (int, int) { return s.width, s.height }

func (s *externalSurface) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

func (s *externalSurface) Position() (int, int) { return s.x, s.y }

// SetPosition stores the position in host coordinates: the vertical axis is
// flipped against the host viewport height because callers pass display
// coordinates with the origin at the bottom-left.
func (s *externalSurface) SetPosition(x, y int) {
	s.x = x
	s.y = s.height - y
}

func (s *externalSurface) Present(img *image.RGBA) error {
	if s.closed {
		return errors.New("surface: present on closed external surface")
	}
	if s.sink != nil {
		s.sink(img)
	}
	return nil
}

// SetFrameSink installs the host callback receiving each presented frame.
func (s *externalSurface) SetFrameSink(sink func(img *image.RGBA)) {
	s.sink = sink
}

// SetSymbolLoader stores the host GL symbol resolver.
func (s *externalSurface) SetSymbolLoader(load func(name string) unsafe.Pointer) {
	s.loader = load
}

func (s *externalSurface) Close() error {
	s.closed = true
	s.sink = nil
	return nil
}
