// Package view3d is a minimalist 3D scene viewer engine.
//
// # Overview
//
// view3d loads mesh scenes (Wavefront OBJ and procedural sources), renders
// them with a compact software pipeline and presents the frames on a
// pluggable render surface: a real GPU target, a software target, an
// external host-embedded target or a no-op "none" target for headless
// bounds and metadata queries.
//
// # Quick Start
//
//	import "github.com/gogpu/view3d"
//
//	opts := view3d.NewOptions()
//	opts.Interactor.Axis = true
//
//	win, err := view3d.New(opts, view3d.WithSize(1280, 720))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer win.Close()
//
//	scn, _ := scene.LoadFile("dragon.obj")
//	win.SetScene(scn)
//	win.ResetCamera()
//	win.Render()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Window, Options, Interactor, Image
//   - surface: render-target registry and backends (software, external,
//     none; GPU under surface/gpusurface)
//   - render: camera, rasterizer, path tracer, post passes, overlays
//   - scene: meshes, data arrays, OBJ reader, procedural shapes
//   - config: JSON configuration files and the CLI flag set
//
// # Surfaces
//
// Surface backends register themselves in a priority table; constructing a
// window with the zero-value Auto type picks the best available one.
// Requesting a backend that is not compiled in fails with an error that
// unwraps to surface.ErrNoSurface — a window is never partially built.
//
// # Concurrency
//
// The engine is synchronous. A Window, its Renderer and its Camera are
// owned by one goroutine; Render blocks until the frame is presented.
package view3d

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
