// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/view3d/scene"
)

// quadScene builds a camera-facing unit quad with a left-to-right scalar
// gradient in the point array "t".
func quadScene(t *testing.T) *scene.Scene {
	t.Helper()
	m := scene.NewMesh("quad")
	m.Positions = []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	m.Normals = []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	m.Triangles = []int{0, 1, 2, 0, 2, 3}
	if err := m.AddPointField("t", 1, []float32{0, 1, 1, 0}); err != nil {
		t.Fatal(err)
	}
	s := &scene.Scene{}
	s.AddMesh(m)
	return s
}

func frameScene(r *Renderer, s *scene.Scene) {
	r.SetScene(s)
	r.UpdateActors()
	r.Camera().ResetToBounds(s.Bounds(), 0.9)
}

func TestRenderBackgroundOnly(t *testing.T) {
	r := NewRenderer()
	r.SetBackground(Color{0.1, 0.2, 0.3})
	fb := NewFramebuffer(8, 8)
	r.Render(fb)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c, a := fb.At(x, y)
			if c != (Color{0.1, 0.2, 0.3}) || a != 1 {
				t.Fatalf("pixel (%d,%d) = %v, %g, want background", x, y, c, a)
			}
			if !math32.IsInf(fb.DepthAt(x, y), 1) {
				t.Fatalf("depth written without geometry at (%d,%d)", x, y)
			}
		}
	}
}

func TestRenderSphere(t *testing.T) {
	r := NewRenderer()
	s := &scene.Scene{}
	s.AddMesh(scene.NewSphere("ball", 1, 16, 32))
	frameScene(r, s)

	fb := NewFramebuffer(64, 64)
	r.Render(fb)

	if math32.IsInf(fb.DepthAt(32, 32), 1) {
		t.Fatal("sphere missing from the frame center")
	}
	if !math32.IsInf(fb.DepthAt(1, 1), 1) {
		t.Fatal("geometry depth in the frame corner")
	}
	bg := r.Background()
	if c, _ := fb.At(1, 1); c != bg {
		t.Errorf("corner pixel = %v, want untouched background %v", c, bg)
	}
	if c, _ := fb.At(32, 32); c == bg {
		t.Error("center pixel equals the background color")
	}
}

func TestRenderScalarColoring(t *testing.T) {
	r := NewRenderer()
	r.SetEnableColoring(true)
	r.SetArrayNameForColoring("t")
	r.SetColormap([]float64{0, 0, 0, 1, 1, 1, 0, 0}) // blue to red
	frameScene(r, quadScene(t))

	fb := NewFramebuffer(64, 64)
	r.Render(fb)

	left, _ := fb.At(16, 32)
	right, _ := fb.At(48, 32)
	if left.B <= left.R {
		t.Errorf("left pixel = %v, want blue dominant", left)
	}
	if right.R <= right.B {
		t.Errorf("right pixel = %v, want red dominant", right)
	}
}

func TestColoringResolution(t *testing.T) {
	m := scene.NewCube("box", 2)
	if err := m.AddPointField("aaa", 1, make([]float32, len(m.Positions))); err != nil {
		t.Fatal(err)
	}
	zzz := make([]float32, len(m.Positions))
	for i := range zzz {
		zzz[i] = float32(i)
	}
	if err := m.AddPointField("zzz", 1, zzz); err != nil {
		t.Fatal(err)
	}
	s := &scene.Scene{}
	s.AddMesh(m)

	r := NewRenderer()
	r.SetScene(s)

	// Coloring disabled: nothing resolves.
	r.UpdateActors()
	if _, _, active := r.ColoringInfo(); active {
		t.Error("coloring active while disabled")
	}

	// Empty array name picks the first array in sorted order.
	r.SetEnableColoring(true)
	r.UpdateActors()
	array, rng, active := r.ColoringInfo()
	if !active || array != "aaa" {
		t.Errorf("resolved array = %q (active %v), want aaa", array, active)
	}
	if rng != [2]float32{0, 0} {
		t.Errorf("range = %v, want [0 0]", rng)
	}

	// Explicit names win.
	r.SetArrayNameForColoring("zzz")
	r.UpdateActors()
	array, rng, _ = r.ColoringInfo()
	if array != "zzz" {
		t.Errorf("resolved array = %q, want zzz", array)
	}
	if rng != [2]float32{0, float32(len(zzz) - 1)} {
		t.Errorf("range = %v, want data range", rng)
	}

	// A user range overrides the data range.
	r.SetScalarBarRange([]float64{5, 10})
	r.UpdateActors()
	if _, rng, _ = r.ColoringInfo(); rng != [2]float32{5, 10} {
		t.Errorf("range = %v, want [5 10]", rng)
	}

	// Unknown arrays disable coloring rather than failing.
	r.SetArrayNameForColoring("nope")
	r.UpdateActors()
	if _, _, active = r.ColoringInfo(); active {
		t.Error("coloring active with unknown array")
	}
}

func TestUpdateActorsComputesNormals(t *testing.T) {
	m := scene.NewMesh("tri")
	m.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.Triangles = []int{0, 1, 2}
	s := &scene.Scene{}
	s.AddMesh(m)

	r := NewRenderer()
	r.SetScene(s)
	r.UpdateActors()
	if len(m.Normals) != len(m.Positions) {
		t.Fatalf("normals not computed: %d for %d positions",
			len(m.Normals), len(m.Positions))
	}
}

func TestBackfaceCulling(t *testing.T) {
	// A quad wound clockwise as seen from the camera.
	m := scene.NewMesh("back")
	m.Positions = []mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	m.Normals = []mgl32.Vec3{{0, 0, -1}, {0, 0, -1}, {0, 0, -1}, {0, 0, -1}}
	m.Triangles = []int{0, 2, 1, 0, 3, 2}
	s := &scene.Scene{}
	s.AddMesh(m)

	r := NewRenderer()
	r.SetBackfaceType(BackfaceHidden)
	frameScene(r, s)
	fb := NewFramebuffer(32, 32)
	r.Render(fb)
	if !math32.IsInf(fb.DepthAt(16, 16), 1) {
		t.Error("hidden backface was rasterized")
	}

	r.SetBackfaceType(BackfaceDefault)
	r.Render(fb)
	if math32.IsInf(fb.DepthAt(16, 16), 1) {
		t.Error("two-sided mode dropped the backface")
	}
}

func TestTranslucentGeometry(t *testing.T) {
	r := NewRenderer()
	r.SetOpacity(0.5)
	frameScene(r, quadScene(t))

	fb := NewFramebuffer(32, 32)
	r.Render(fb)

	// Blended fragments change color but never write depth.
	if !math32.IsInf(fb.DepthAt(16, 16), 1) {
		t.Error("translucent fragment wrote depth")
	}
	if c, _ := fb.At(16, 16); c == r.Background() {
		t.Error("translucent fragment left no color")
	}

	// Depth sorting keeps the same invariant.
	r.SetUseDepthPeelingPass(true)
	r.Render(fb)
	if !math32.IsInf(fb.DepthAt(16, 16), 1) {
		t.Error("sorted translucent fragment wrote depth")
	}
}

func TestRenderGridOnly(t *testing.T) {
	r := NewRenderer()
	r.ShowGrid(true)
	r.Camera().Elevation(30)

	fb := NewFramebuffer(64, 64)
	r.Render(fb)

	bg := r.Background()
	var touched int
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			if c, _ := fb.At(x, y); c != bg {
				touched++
			}
		}
	}
	if touched == 0 {
		t.Error("grid drew no pixels")
	}
}

func TestRaytraceSmoke(t *testing.T) {
	r := NewRenderer()
	r.SetUseRaytracing(true)
	r.SetRaytracingSamples(1)
	s := &scene.Scene{}
	s.AddMesh(scene.NewCube("box", 2))
	frameScene(r, s)

	fb := NewFramebuffer(32, 32)
	r.Render(fb)

	if math32.IsInf(fb.DepthAt(16, 16), 1) {
		t.Fatal("primary ray missed the cube at the frame center")
	}
	if !math32.IsInf(fb.DepthAt(0, 0), 1) {
		t.Error("corner ray hit geometry")
	}
	if c, _ := fb.At(16, 16); c == r.Background() {
		t.Error("traced pixel equals the background")
	}
}

func TestUpdateLights(t *testing.T) {
	r := NewRenderer()
	r.UpdateLights()
	if len(r.lights) != 2 {
		t.Fatalf("light count = %d, want key and fill", len(r.lights))
	}
	if r.lights[0].Intensity <= r.lights[1].Intensity {
		t.Error("key light not stronger than fill")
	}

	base := r.lights[0].Intensity
	r.SetLightIntensity(2)
	r.UpdateLights()
	if math32.Abs(r.lights[0].Intensity-2*base) > 1e-6 {
		t.Errorf("intensity = %g, want %g", r.lights[0].Intensity, 2*base)
	}

	for _, l := range r.lights {
		if math32.Abs(l.Direction.Len()-1) > 1e-5 {
			t.Errorf("light direction not normalized: %v", l.Direction)
		}
	}
}

func TestRenderOverlays(t *testing.T) {
	r := NewRenderer()
	r.ShowFilename(true)
	r.SetFilenameInfo("model.obj")
	r.ShowAxis(true)
	r.SetAnimationNameInfo("spin")

	fb := NewFramebuffer(96, 96)
	r.Render(fb)

	bg := r.Background()
	var touched int
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			if c, _ := fb.At(x, y); c != bg {
				touched++
			}
		}
	}
	if touched == 0 {
		t.Error("overlays drew no pixels")
	}
}

func TestUnknownFinalShaderIgnored(t *testing.T) {
	r := NewRenderer()
	r.SetFinalShader("no-such-shader")
	fb := NewFramebuffer(8, 8)
	r.Render(fb)
	r.Render(fb) // the warning fires once, rendering continues

	if c, _ := fb.At(4, 4); c != r.Background() {
		t.Errorf("pixel = %v, want plain background", c)
	}
}

func TestFinalShaderApplied(t *testing.T) {
	r := NewRenderer()
	r.SetBackground(Color{1, 0, 0})
	r.SetFinalShader("grayscale")
	fb := NewFramebuffer(4, 4)
	r.Render(fb)

	c, _ := fb.At(2, 2)
	if c.R != c.G || c.G != c.B {
		t.Errorf("pixel = %v, want gray", c)
	}
}

func TestOrthographicProjectionOption(t *testing.T) {
	r := NewRenderer()
	r.SetUseOrthographicProjection(true)
	if !r.Camera().Orthographic {
		t.Error("camera projection not switched")
	}
	if r.Camera().OrthoScale <= 0 {
		t.Errorf("ortho scale = %g, want positive", r.Camera().OrthoScale)
	}
	r.SetUseOrthographicProjection(false)
	if r.Camera().Orthographic {
		t.Error("camera stuck in orthographic mode")
	}
}

func TestLastFrameTime(t *testing.T) {
	r := NewRenderer()
	fb := NewFramebuffer(8, 8)
	r.Render(fb)
	if r.LastFrameTime() <= 0 {
		t.Errorf("frame time = %v, want positive", r.LastFrameTime())
	}
}

func TestVolumeRequestIsRemembered(t *testing.T) {
	r := NewRenderer()
	r.SetUseVolume(true)
	r.SetUseVolume(true) // warns once, stays settable
	r.SetUseInverseOpacityFunction(true)
	fb := NewFramebuffer(8, 8)
	r.Render(fb) // mesh scenes render normally regardless
	if c, _ := fb.At(4, 4); c != r.Background() {
		t.Errorf("pixel = %v, want background", c)
	}
}

func TestPointSpritesRender(t *testing.T) {
	m := scene.NewMesh("cloud")
	m.Positions = []mgl32.Vec3{{0, 0, 0}}
	s := &scene.Scene{}
	s.AddMesh(m)

	for _, splat := range []string{SpriteSphere, SpriteGaussian} {
		r := NewRenderer()
		r.SetUsePointSprites(true)
		r.SetPointSpritesProperties(splat, 0.5)
		// Red separates splat pixels from the gray background even
		// where shading degenerates.
		r.SetSurfaceColor(Color{1, 0, 0})
		r.SetScene(s)
		r.UpdateActors()
		// A single point has empty bounds; frame it manually.
		r.Camera().SetState(CameraState{
			Position:   mgl32.Vec3{0, 0, 3},
			FocalPoint: mgl32.Vec3{0, 0, 0},
			ViewUp:     mgl32.Vec3{0, 1, 0},
			ViewAngle:  30,
		})

		fb := NewFramebuffer(32, 32)
		r.Render(fb)

		bg := r.Background()
		var touched int
		for y := 0; y < fb.H; y++ {
			for x := 0; x < fb.W; x++ {
				if c, _ := fb.At(x, y); c != bg {
					touched++
				}
			}
		}
		if touched == 0 {
			t.Errorf("%s splat drew no pixels", splat)
		}
	}
}

func TestShowNormalGlyphs(t *testing.T) {
	s := &scene.Scene{}
	s.AddMesh(scene.NewSphere("ball", 1, 8, 12))

	plain := NewRenderer()
	frameScene(plain, s)
	fbPlain := NewFramebuffer(64, 64)
	plain.Render(fbPlain)

	glyphs := NewRenderer()
	glyphs.ShowNormal(true)
	frameScene(glyphs, s)
	fbGlyphs := NewFramebuffer(64, 64)
	glyphs.Render(fbGlyphs)

	var diff int
	for i := range fbPlain.Pix {
		if fbPlain.Pix[i] != fbGlyphs.Pix[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Error("normal glyphs changed no pixels")
	}
}

func TestSampleFactorMapping(t *testing.T) {
	tests := []struct {
		samples int
		factor  int
	}{
		{samples: 0, factor: 1},
		{samples: 1, factor: 1},
		{samples: 4, factor: 2},
		{samples: 8, factor: 2},
		{samples: 16, factor: 4},
		{samples: 64, factor: 4},
	}
	r := NewRenderer()
	for _, tt := range tests {
		r.SetMultiSamples(tt.samples)
		if got := r.sampleFactor(); got != tt.factor {
			t.Errorf("sampleFactor() with %d samples = %d, want %d", tt.samples, got, tt.factor)
		}
	}
	r.SetMultiSamples(-3)
	if r.multiSamples != 0 {
		t.Errorf("negative sample count stored as %d, want 0", r.multiSamples)
	}
}

func TestMultiSamplesSmoothEdges(t *testing.T) {
	s := &scene.Scene{}
	s.AddMesh(scene.NewSphere("ball", 1, 16, 32))

	aliased := NewRenderer()
	frameScene(aliased, s)
	fbAliased := NewFramebuffer(48, 48)
	aliased.Render(fbAliased)

	smooth := NewRenderer()
	smooth.SetMultiSamples(4)
	frameScene(smooth, s)
	fbSmooth := NewFramebuffer(48, 48)
	smooth.Render(fbSmooth)

	// Supersampling happens on an internal buffer; the output keeps its size.
	if fbSmooth.W != fbAliased.W || fbSmooth.H != fbAliased.H {
		t.Fatalf("smoothed frame is %dx%d, want %dx%d",
			fbSmooth.W, fbSmooth.H, fbAliased.W, fbAliased.H)
	}

	var diff int
	for i := range fbAliased.Pix {
		if fbAliased.Pix[i] != fbSmooth.Pix[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Error("multisampling changed no pixels")
	}

	// Filtering a uniform background must not bleed color into empty corners.
	bg := smooth.Background()
	if c, _ := fbSmooth.At(1, 1); c != bg {
		t.Errorf("corner pixel = %v, want untouched background %v", c, bg)
	}
}
