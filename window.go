package view3d

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/gogpu/view3d/internal/theme"
	"github.com/gogpu/view3d/render"
	"github.com/gogpu/view3d/scene"
	"github.com/gogpu/view3d/surface"
)

// WindowOption configures a Window during creation.
//
// Example:
//
//	// Default: best available surface, 1000x600.
//	win, err := view3d.New(opts)
//
//	// Headless software window for image export.
//	win, err := view3d.New(opts,
//		view3d.WithType(surface.Software),
//		view3d.WithOffscreen(true))
type WindowOption func(*windowOptions)

// windowOptions holds optional configuration for Window creation.
type windowOptions struct {
	typ       surface.Type
	offscreen bool
	width     int
	height    int
	loader    func(name string) unsafe.Pointer
	cachePath string
}

// defaultWindowOptions returns the default window options.
func defaultWindowOptions() windowOptions {
	return windowOptions{
		typ:    surface.Auto,
		width:  1000,
		height: 600,
	}
}

// WithType requests a specific surface backend instead of automatic
// selection. Requesting a backend that is not compiled in makes New fail
// with an error unwrapping to surface.ErrNoSurface.
func WithType(t surface.Type) WindowOption {
	return func(o *windowOptions) {
		o.typ = t
	}
}

// WithOffscreen requests rendering with no host-visible window, used for
// headless image export.
func WithOffscreen(offscreen bool) WindowOption {
	return func(o *windowOptions) {
		o.offscreen = offscreen
	}
}

// WithSize sets the initial window size in pixels.
func WithSize(width, height int) WindowOption {
	return func(o *windowOptions) {
		o.width = width
		o.height = height
	}
}

// WithSymbolLoader supplies the host GL symbol resolver for surfaces
// embedded in a foreign context (the external surface).
func WithSymbolLoader(load func(name string) unsafe.Pointer) WindowOption {
	return func(o *windowOptions) {
		o.loader = load
	}
}

// WithCachePath overrides the directory used for cached renderer data
// (HDRI products, fonts). The default lives under the user home directory.
func WithCachePath(dir string) WindowOption {
	return func(o *windowOptions) {
		o.cachePath = dir
	}
}

// Window owns one render surface, one renderer and one camera for its whole
// lifetime. All methods execute on the calling goroutine and block until
// done; a Window is not safe for concurrent use.
type Window struct {
	surf     surface.Surface
	renderer *render.Renderer
	fb       *render.Framebuffer
	opts     *Options

	offscreen bool
	cachePath string
	cacheWarn bool
	closed    bool
}

// New constructs a window over the requested surface backend. A nil opts
// uses NewOptions. Surface construction failures pass through unchanged and
// unwrap to surface.ErrNoSurface; no partially constructed window is ever
// returned.
func New(opts *Options, wopts ...WindowOption) (*Window, error) {
	if opts == nil {
		opts = NewOptions()
	}
	wo := defaultWindowOptions()
	for _, opt := range wopts {
		opt(&wo)
	}

	surf, err := surface.New(wo.typ, surface.Options{
		Width:     wo.width,
		Height:    wo.height,
		Offscreen: wo.offscreen,
		Loader:    wo.loader,
	})
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer()
	// Hardware-style multisampling stays off; antialiasing comes from the
	// FXAA pass instead.
	r.SetMultiSamples(0)

	w := &Window{
		surf:      surf,
		renderer:  r,
		fb:        render.NewFramebuffer(wo.width, wo.height),
		opts:      opts,
		offscreen: wo.offscreen,
		cachePath: wo.cachePath,
	}
	if w.cachePath == "" {
		w.cachePath = defaultCachePath()
	}

	if wo.loader != nil {
		if ls, ok := surf.(surface.SymbolLoaderSetter); ok {
			ls.SetSymbolLoader(wo.loader)
		}
	}
	if ts, ok := surf.(surface.TitleSetter); ok {
		ts.SetTitle("view3d")
	}
	w.UpdateTheme()

	Logger().Debug("window surface created",
		"name", surf.Name(), "type", surf.Type().String())
	return w, nil
}

// defaultCachePath resolves the per-user cache directory, falling back to
// the system temp directory when the home directory cannot be determined.
func defaultCachePath() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "view3d")
	}
	return filepath.Join(home, ".cache", "view3d")
}

// Type returns the backend of the live surface.
func (w *Window) Type() surface.Type { return w.surf.Type() }

// Offscreen reports whether the window was built for offscreen rendering.
func (w *Window) Offscreen() bool { return w.offscreen }

// Width returns the current surface width in pixels.
func (w *Window) Width() int {
	width, _ := w.surf.Size()
	return width
}

// Height returns the current surface height in pixels.
func (w *Window) Height() int {
	_, height := w.surf.Size()
	return height
}

// Camera returns the window camera. Non-nil from construction on.
func (w *Window) Camera() *render.Camera { return w.renderer.Camera() }

// Options returns the live option snapshot; mutate it and call Render to
// apply changes.
func (w *Window) Options() *Options { return w.opts }

// Surface exposes the underlying render surface for host integrations
// (frame sinks, snapshots).
func (w *Window) Surface() surface.Surface { return w.surf }

// SetScene replaces the rendered scene.
func (w *Window) SetScene(s *scene.Scene) { w.renderer.SetScene(s) }

// Scene returns the current scene, nil when none is loaded.
func (w *Window) Scene() *scene.Scene { return w.renderer.Scene() }

// SetSize resizes the surface. The framebuffer follows on the next render.
func (w *Window) SetSize(width, height int) {
	w.surf.SetSize(width, height)
}

// SetPosition moves the host window. Surfaces whose host uses a top-left
// origin apply the vertical-axis flip themselves.
func (w *Window) SetPosition(x, y int) {
	w.surf.SetPosition(x, y)
}

// SetTitle renames the host window on surfaces that have one.
func (w *Window) SetTitle(title string) {
	if ts, ok := w.surf.(surface.TitleSetter); ok {
		ts.SetTitle(title)
	}
}

// SetIcon decodes an in-memory PNG and installs it as the window icon on
// surfaces that show one. The icon bytes are validated even when the
// surface has no icon to set.
func (w *Window) SetIcon(icon []byte) error {
	img, err := png.Decode(bytes.NewReader(icon))
	if err != nil {
		return fmt.Errorf("view3d: decode window icon: %w", err)
	}
	if is, ok := w.surf.(surface.IconSetter); ok {
		is.SetIcon(img)
	}
	return nil
}

// SetAnimationNameInfo updates the animation name shown by the overlay.
func (w *Window) SetAnimationNameInfo(name string) {
	w.renderer.SetAnimationNameInfo(name)
}

// SetCachePath redirects cached renderer data to dir. The directory is
// created lazily on the next option sync.
func (w *Window) SetCachePath(dir string) {
	if dir == "" {
		dir = defaultCachePath()
	}
	w.cachePath = dir
	w.cacheWarn = false
}

// cacheDir ensures the cache directory exists and returns it. Creation
// failures are logged once and the path is still handed to the renderer;
// features needing it degrade on their own.
func (w *Window) cacheDir() string {
	if err := os.MkdirAll(w.cachePath, 0o755); err != nil && !w.cacheWarn {
		w.cacheWarn = true
		Logger().Warn("cannot create cache directory",
			"path", w.cachePath, "error", err)
	}
	return w.cachePath
}

// UpdateTheme re-applies the host OS dark/light preference to surfaces
// whose window chrome can follow it. Called at construction; call it again
// when the OS setting changes.
func (w *Window) UpdateTheme() {
	if ts, ok := w.surf.(surface.ThemeSetter); ok {
		ts.SetDarkTheme(theme.IsDark())
	}
}

// ResetCamera frames the scene bounds using the configured up direction.
func (w *Window) ResetCamera() {
	up, ok := parseUpDirection(w.opts.Scene.UpDirection)
	if !ok {
		Logger().Warn("invalid up direction, using +Y",
			"value", w.opts.Scene.UpDirection)
		up = mgl32.Vec3{0, 1, 0}
	}
	cam := w.renderer.Camera()
	eye := mgl32.Vec3{0, 0, 1}
	if math32.Abs(up.Dot(eye)) > 0.999 {
		eye = mgl32.Vec3{0, 1, 0}
	}
	cam.SetState(render.CameraState{
		Position:   eye,
		FocalPoint: mgl32.Vec3{},
		ViewUp:     up,
		ViewAngle:  30,
	})
	b := scene.EmptyBox3()
	if s := w.renderer.Scene(); s != nil {
		b = s.Bounds()
	}
	cam.ResetToBounds(b, 0.9)
}

// parseUpDirection reads directions of the form "+Y", "-Z" (sign optional,
// axis case-insensitive) into a unit vector.
func parseUpDirection(s string) (mgl32.Vec3, bool) {
	sign := float32(1)
	switch {
	case s == "":
		return mgl32.Vec3{0, 1, 0}, true
	case s[0] == '+':
		s = s[1:]
	case s[0] == '-':
		sign = -1
		s = s[1:]
	}
	if len(s) != 1 {
		return mgl32.Vec3{}, false
	}
	switch s[0] {
	case 'x', 'X':
		return mgl32.Vec3{sign, 0, 0}, true
	case 'y', 'Y':
		return mgl32.Vec3{0, sign, 0}, true
	case 'z', 'Z':
		return mgl32.Vec3{0, 0, sign}, true
	}
	return mgl32.Vec3{}, false
}

// WorldFromDisplay maps a display-space point (origin bottom-left, z the
// normalized depth) into world space. When the homogeneous coordinate of
// the unprojected point collapses below 1e-7 the origin is returned.
func (w *Window) WorldFromDisplay(p [3]float64) [3]float64 {
	width, height := w.surf.Size()
	d := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	world, ok := w.renderer.Camera().DisplayToWorld(d, width, height)
	if !ok {
		return [3]float64{}
	}
	return [3]float64{
		float64(world.X()),
		float64(world.Y()),
		float64(world.Z()),
	}
}

// DisplayFromWorld projects a world-space point into display coordinates
// (origin bottom-left, z the normalized depth).
func (w *Window) DisplayFromWorld(p [3]float64) [3]float64 {
	width, height := w.surf.Size()
	wp := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	d := w.renderer.Camera().WorldToDisplay(wp, width, height)
	return [3]float64{
		float64(d.X()),
		float64(d.Y()),
		float64(d.Z()),
	}
}

// Render syncs the options onto the renderer and draws one blocking frame.
// On a none surface only the actor bounds are refreshed and the frame is
// skipped. Present failures are logged and reported as false.
func (w *Window) Render() bool {
	if w.closed {
		return false
	}
	w.syncOptions()
	if w.surf.Type() == surface.None {
		return true
	}

	width, height := w.surf.Size()
	w.fb.Resize(width, height)
	w.renderer.Render(w.fb)

	if err := w.present(); err != nil {
		Logger().Warn("frame present failed", "error", err)
		return false
	}
	return true
}

// present hands the finished framebuffer to the surface, preferring the
// linear float path when the surface converts to sRGB itself.
func (w *Window) present() error {
	if lp, ok := w.surf.(surface.LinearPresenter); ok {
		return lp.PresentLinear(w.fb.W, w.fb.H, w.fb.Pix)
	}
	return w.surf.Present(w.fb.ToRGBA())
}

// RenderToImage syncs the options, draws one frame and reads the pixels
// back, bottom row first. With noBackground the background is forced to
// solid transparent black and the result carries an alpha channel, so
// translucent geometry never blends the background color into uncovered
// pixels; otherwise the result is opaque RGB.
func (w *Window) RenderToImage(noBackground bool) (*Image, error) {
	if w.closed {
		return nil, fmt.Errorf("view3d: render to image: window is closed")
	}
	w.syncOptions()

	width, height := w.surf.Size()
	w.fb.Resize(width, height)

	channels := 3
	if noBackground {
		w.renderer.SetBackground(render.Color{})
		w.renderer.SetBackgroundAlpha(0)
		channels = 4
	}
	w.renderer.Render(w.fb)

	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     w.fb.Pixels(channels, true),
	}, nil
}

// Close releases the window. The axis overlay is disabled before the
// renderer is released, then the surface is closed. Close is idempotent.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.renderer.ShowAxis(false)
	w.renderer.SetScene(nil)
	return w.surf.Close()
}
