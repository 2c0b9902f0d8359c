// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/view3d/scene"
)

func vec3Near(t *testing.T, got, want mgl32.Vec3, tol float32, name string) {
	t.Helper()
	if got.Sub(want).Len() > tol {
		t.Errorf("%s = %v, want %v (tol %g)", name, got, want, tol)
	}
}

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	want := DefaultCameraState()
	if c.Position != want.Position || c.FocalPoint != want.FocalPoint {
		t.Errorf("default state = %+v, want %+v", c.CameraState, want)
	}
	if c.ViewAngle != 30 {
		t.Errorf("default view angle = %g, want 30", c.ViewAngle)
	}
	if got := c.Distance(); math32.Abs(got-1) > 1e-6 {
		t.Errorf("default distance = %g, want 1", got)
	}
}

func TestWorldToDisplayCenter(t *testing.T) {
	c := NewCamera()
	// The focal point projects to the viewport center.
	d := c.WorldToDisplay(mgl32.Vec3{0, 0, 0}, 200, 100)
	if math32.Abs(d.X()-100) > 0.5 || math32.Abs(d.Y()-50) > 0.5 {
		t.Errorf("focal point projected to (%g, %g), want viewport center (100, 50)", d.X(), d.Y())
	}
	if d.Z() <= 0 || d.Z() >= 1 {
		t.Errorf("depth = %g, want in (0,1)", d.Z())
	}
}

func TestDisplayWorldRoundTrip(t *testing.T) {
	c := NewCamera()
	b := scene.EmptyBox3()
	b.ExtendPoint(mgl32.Vec3{-1, -1, -1})
	b.ExtendPoint(mgl32.Vec3{1, 1, 1})
	c.ResetToBounds(b, 0.9)

	points := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, -0.2, 0.5},
		{-0.8, 0.9, -0.4},
	}
	for _, p := range points {
		d := c.WorldToDisplay(p, 320, 240)
		back, ok := c.DisplayToWorld(d, 320, 240)
		if !ok {
			t.Fatalf("DisplayToWorld(%v) reported degenerate", d)
		}
		vec3Near(t, back, p, 0.05, "round trip")
	}
}

func TestDisplayToWorldDegenerate(t *testing.T) {
	c := NewCamera()
	// A display depth far beyond the far plane maps behind the eye
	// singularity, where the homogeneous coordinate is unusable.
	p, ok := c.DisplayToWorld(mgl32.Vec3{50, 50, 10}, 100, 100)
	if ok {
		t.Fatal("expected degenerate unprojection to report failure")
	}
	if p != (mgl32.Vec3{}) {
		t.Errorf("degenerate unprojection = %v, want origin", p)
	}
}

func TestAzimuth(t *testing.T) {
	c := NewCamera()
	c.Azimuth(90)
	vec3Near(t, c.Position, mgl32.Vec3{1, 0, 0}, 1e-5, "position after 90deg azimuth")
	if math32.Abs(c.Distance()-1) > 1e-5 {
		t.Errorf("distance after azimuth = %g, want 1", c.Distance())
	}
}

func TestElevationKeepsDistance(t *testing.T) {
	c := NewCamera()
	c.Elevation(45)
	if math32.Abs(c.Distance()-1) > 1e-5 {
		t.Errorf("distance after elevation = %g, want 1", c.Distance())
	}
	if math32.Abs(c.ViewUp.Len()-1) > 1e-5 {
		t.Errorf("view up not unit length after elevation: %v", c.ViewUp)
	}
}

func TestRollRotatesUp(t *testing.T) {
	c := NewCamera()
	c.Roll(90)
	// Rolling about the -Z view direction by 90 degrees moves +Y up to
	// an X-aligned vector.
	if math32.Abs(c.ViewUp.Y()) > 1e-5 {
		t.Errorf("view up after roll = %v, want X-aligned", c.ViewUp)
	}
	vec3Near(t, c.Position, mgl32.Vec3{0, 0, 1}, 1e-6, "position after roll")
}

func TestDolly(t *testing.T) {
	c := NewCamera()
	c.Dolly(2)
	if math32.Abs(c.Distance()-0.5) > 1e-5 {
		t.Errorf("distance after Dolly(2) = %g, want 0.5", c.Distance())
	}
	if c.FocalPoint != (mgl32.Vec3{}) {
		t.Errorf("focal point moved by dolly: %v", c.FocalPoint)
	}
	// Non-positive factors are ignored.
	c.Dolly(0)
	if math32.Abs(c.Distance()-0.5) > 1e-5 {
		t.Errorf("Dolly(0) changed distance to %g", c.Distance())
	}
}

func TestPan(t *testing.T) {
	c := NewCamera()
	c.Pan(2, 3)
	vec3Near(t, c.Position, mgl32.Vec3{2, 3, 1}, 1e-5, "position after pan")
	vec3Near(t, c.FocalPoint, mgl32.Vec3{2, 3, 0}, 1e-5, "focal after pan")
}

func TestZoom(t *testing.T) {
	c := NewCamera()
	c.Zoom(2)
	if math32.Abs(c.ViewAngle-15) > 1e-5 {
		t.Errorf("view angle after Zoom(2) = %g, want 15", c.ViewAngle)
	}

	c.Orthographic = true
	c.OrthoScale = 4
	c.Zoom(2)
	if math32.Abs(c.OrthoScale-2) > 1e-5 {
		t.Errorf("ortho scale after Zoom(2) = %g, want 2", c.OrthoScale)
	}
}

func TestResetToBounds(t *testing.T) {
	c := NewCamera()
	b := scene.EmptyBox3()
	b.ExtendPoint(mgl32.Vec3{-1, -1, -1})
	b.ExtendPoint(mgl32.Vec3{1, 1, 1})
	c.ResetToBounds(b, 0.9)

	vec3Near(t, c.FocalPoint, mgl32.Vec3{0, 0, 0}, 1e-5, "focal after reset")

	// The bounding sphere must fit the original 30 degree cone; the zoom
	// factor then widens the angle without moving the camera.
	radius := b.Diagonal() / 2
	wantDist := radius / math32.Sin(mgl32.DegToRad(15))
	if math32.Abs(c.Distance()-wantDist) > 1e-3 {
		t.Errorf("distance after reset = %g, want %g", c.Distance(), wantDist)
	}
	if math32.Abs(c.ViewAngle-30/0.9) > 1e-3 {
		t.Errorf("view angle after reset = %g, want %g", c.ViewAngle, 30/0.9)
	}

	// The view direction is preserved: camera stays on +Z of the center.
	if c.Position.Z() <= 0 {
		t.Errorf("camera moved off its view axis: %v", c.Position)
	}
}

func TestResetToBoundsEmpty(t *testing.T) {
	c := NewCamera()
	c.Azimuth(45)
	c.Dolly(3)
	c.ResetToBounds(scene.EmptyBox3(), 0.9)
	if c.CameraState != DefaultCameraState() {
		t.Errorf("empty bounds reset = %+v, want defaults", c.CameraState)
	}
}

func TestCameraStateRoundTrip(t *testing.T) {
	c := NewCamera()
	saved := c.State()
	c.Azimuth(30)
	c.Elevation(10)
	c.Zoom(2)
	c.SetState(saved)
	if c.CameraState != saved {
		t.Errorf("restored state = %+v, want %+v", c.CameraState, saved)
	}
}

func TestOrthographicProjection(t *testing.T) {
	c := NewCamera()
	c.Orthographic = true
	c.OrthoScale = 2

	// Parallel projection: a point off the view axis at any depth keeps
	// its lateral display position.
	d1 := c.WorldToDisplay(mgl32.Vec3{1, 0, 0}, 100, 100)
	d2 := c.WorldToDisplay(mgl32.Vec3{1, 0, -5}, 100, 100)
	if math32.Abs(d1.X()-d2.X()) > 0.5 {
		t.Errorf("orthographic X drifted with depth: %g vs %g", d1.X(), d2.X())
	}
}
