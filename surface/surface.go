// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"unsafe"
)

// Type identifies a surface backend.
type Type int

// Surface backends. Auto is the zero value: pick the best available.
const (
	Auto Type = iota
	None
	Software
	External
	GPU
	GLX
	WGL
	EGL
	OSMesa
	Cocoa
)

var typeNames = map[Type]string{
	Auto:     "auto",
	None:     "none",
	Software: "software",
	External: "external",
	GPU:      "gpu",
	GLX:      "glx",
	WGL:      "wgl",
	EGL:      "egl",
	OSMesa:   "osmesa",
	Cocoa:    "cocoa",
}

// String returns the lower-case backend name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType maps a backend name to its Type. The empty string parses to
// Auto, matching an unset option.
func ParseType(s string) (Type, error) {
	if s == "" {
		return Auto, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return Auto, fmt.Errorf("surface: unknown type %q", s)
}

// Options configures surface creation.
type Options struct {
	// Width and Height are the initial size in pixels.
	Width, Height int

	// Offscreen requests a target with no host-visible window.
	Offscreen bool

	// Loader resolves host GL symbols for surfaces embedded in a foreign
	// context. May be nil; surfaces that need one and implement
	// SymbolLoaderSetter receive it after construction as well.
	Loader func(name string) unsafe.Pointer
}

// Surface is one presentation target owned by a viewer window.
//
// Surfaces are not safe for concurrent use.
type Surface interface {
	// Type identifies the backend that produced this surface.
	Type() Type

	// Name returns the concrete implementation name, logged at debug
	// level when a window is constructed.
	Name() string

	// Size returns the current target size in pixels.
	Size() (width, height int)

	// SetSize resizes the target.
	SetSize(width, height int)

	// Position returns the window position in host coordinates.
	Position() (x, y int)

	// SetPosition moves the window. Surfaces whose host uses a top-left
	// origin convert from the bottom-left display convention here.
	SetPosition(x, y int)

	// Present delivers a finished frame, top row first as produced by
	// the renderer readback.
	Present(img *image.RGBA) error

	// Close releases the surface. Idempotent.
	Close() error
}

// TitleSetter is implemented by surfaces with a host window title.
type TitleSetter interface {
	SetTitle(title string)
}

// IconSetter is implemented by surfaces that can show a window icon.
type IconSetter interface {
	SetIcon(icon image.Image)
}

// SymbolLoaderSetter is implemented by surfaces that resolve host GL
// symbols through a caller-provided loader.
type SymbolLoaderSetter interface {
	SetSymbolLoader(load func(name string) unsafe.Pointer)
}

// Snapshotter is implemented by surfaces that retain the last presented
// frame for readback.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

// LinearPresenter is implemented by surfaces that accept the renderer's
// linear float framebuffer directly and perform the sRGB conversion
// themselves, typically on the GPU. Pixels are RGBA, row-major, top row
// first. Windows prefer this path over Present when available.
type LinearPresenter interface {
	PresentLinear(width, height int, rgba []float32) error
}

// ThemeSetter is implemented by surfaces whose host window chrome can
// follow the OS dark/light theme.
type ThemeSetter interface {
	SetDarkTheme(dark bool)
}

// FrameSinkSetter is implemented by surfaces that deliver frames to an
// embedding host application.
type FrameSinkSetter interface {
	SetFrameSink(sink func(img *image.RGBA))
}
