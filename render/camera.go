// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/view3d/scene"
)

// homogeneousEpsilon is the smallest usable w component when mapping
// display coordinates back to world space. Smaller values mean the point
// sits on or behind the eye plane and cannot be unprojected.
const homogeneousEpsilon = 1e-7

// CameraState is a snapshot of the view parameters, used to save and
// restore camera positions.
type CameraState struct {
	Position   mgl32.Vec3
	FocalPoint mgl32.Vec3
	ViewUp     mgl32.Vec3
	ViewAngle  float32
}

// DefaultCameraState returns the state a fresh camera starts from: eye on
// +Z looking at the origin with a 30 degree vertical view angle.
func DefaultCameraState() CameraState {
	return CameraState{
		Position:   mgl32.Vec3{0, 0, 1},
		FocalPoint: mgl32.Vec3{0, 0, 0},
		ViewUp:     mgl32.Vec3{0, 1, 0},
		ViewAngle:  30,
	}
}

// Camera models the viewpoint. All angles are in degrees.
type Camera struct {
	CameraState

	// Orthographic switches from perspective to parallel projection.
	// OrthoScale is the half-height of the view volume in world units.
	Orthographic bool
	OrthoScale   float32

	near, far float32
}

// NewCamera returns a camera in the default state.
func NewCamera() *Camera {
	return &Camera{
		CameraState: DefaultCameraState(),
		OrthoScale:  1,
		near:        0.1,
		far:         100,
	}
}

// State returns a snapshot of the current view parameters.
func (c *Camera) State() CameraState { return c.CameraState }

// SetState restores a previously captured snapshot.
func (c *Camera) SetState(s CameraState) { c.CameraState = s }

// Distance returns the length of the position-to-focal-point vector.
func (c *Camera) Distance() float32 {
	return c.FocalPoint.Sub(c.Position).Len()
}

// direction returns the unit view direction, falling back to -Z when the
// position coincides with the focal point.
func (c *Camera) direction() mgl32.Vec3 {
	d := c.FocalPoint.Sub(c.Position)
	if l := d.Len(); l > 0 {
		return d.Mul(1 / l)
	}
	return mgl32.Vec3{0, 0, -1}
}

// ViewMatrix returns the world-to-eye transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.FocalPoint, c.ViewUp)
}

// ProjectionMatrix returns the eye-to-clip transform for the given aspect
// ratio (width over height).
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	if c.Orthographic {
		s := c.OrthoScale
		if s <= 0 {
			s = 1
		}
		return mgl32.Ortho(-s*aspect, s*aspect, -s, s, c.near, c.far)
	}
	angle := c.ViewAngle
	if angle <= 0 || angle >= 180 {
		angle = 30
	}
	return mgl32.Perspective(mgl32.DegToRad(angle), aspect, c.near, c.far)
}

// Azimuth rotates the camera position around the view-up axis through the
// focal point.
func (c *Camera) Azimuth(degrees float32) {
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(degrees), c.ViewUp.Normalize())
	rel := c.Position.Sub(c.FocalPoint)
	c.Position = c.FocalPoint.Add(mgl32.TransformCoordinate(rel, rot))
}

// Elevation rotates the camera position around the axis perpendicular to
// the view direction and view-up, through the focal point.
func (c *Camera) Elevation(degrees float32) {
	axis := c.direction().Cross(c.ViewUp)
	if axis.Len() == 0 {
		return
	}
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(degrees), axis.Normalize())
	rel := c.Position.Sub(c.FocalPoint)
	c.Position = c.FocalPoint.Add(mgl32.TransformCoordinate(rel, rot))
	c.ViewUp = mgl32.TransformNormal(c.ViewUp, rot).Normalize()
}

// Roll rotates the view-up vector around the view direction.
func (c *Camera) Roll(degrees float32) {
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(degrees), c.direction())
	c.ViewUp = mgl32.TransformNormal(c.ViewUp, rot).Normalize()
}

// Dolly moves the camera along the view direction, dividing the distance to
// the focal point by factor. Factors above one move closer.
func (c *Camera) Dolly(factor float32) {
	if factor <= 0 {
		return
	}
	d := c.Distance() / factor
	c.Position = c.FocalPoint.Sub(c.direction().Mul(d))
}

// Pan shifts both the position and the focal point in the view plane by
// (dx, dy) world units along the right and up axes.
func (c *Camera) Pan(dx, dy float32) {
	dir := c.direction()
	right := dir.Cross(c.ViewUp).Normalize()
	up := right.Cross(dir).Normalize()
	offset := right.Mul(dx).Add(up.Mul(dy))
	c.Position = c.Position.Add(offset)
	c.FocalPoint = c.FocalPoint.Add(offset)
}

// Zoom narrows the view angle (perspective) or shrinks the view volume
// (orthographic) by factor. Factors above one zoom in.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	if c.Orthographic {
		c.OrthoScale /= factor
		return
	}
	angle := c.ViewAngle / factor
	if angle > 0 && angle < 180 {
		c.ViewAngle = angle
	}
}

// ResetToBounds frames the given bounds: the focal point moves to the
// center and the camera backs off along its current view direction until
// the bounding sphere fits the view angle. zoomFactor scales the result,
// values below one leave a margin. Empty bounds reset to the default state.
func (c *Camera) ResetToBounds(b scene.Box3, zoomFactor float32) {
	if b.Empty() {
		c.CameraState = DefaultCameraState()
		c.updateRange(1)
		return
	}
	if zoomFactor <= 0 {
		zoomFactor = 0.9
	}
	center := b.Center()
	radius := b.Diagonal() / 2
	if radius <= 0 {
		radius = 1
	}
	dir := c.direction()
	angle := c.ViewAngle
	if angle <= 0 || angle >= 180 {
		angle = 30
		c.ViewAngle = angle
	}
	dist := radius / math32.Sin(mgl32.DegToRad(angle/2))
	c.FocalPoint = center
	c.Position = center.Sub(dir.Mul(dist))
	if c.Orthographic {
		c.OrthoScale = radius / zoomFactor
	} else {
		c.Zoom(zoomFactor)
	}
	c.updateRange(radius)
}

// updateRange derives near and far clip planes from the distance to the
// focal point and the scene radius.
func (c *Camera) updateRange(radius float32) {
	dist := c.Distance()
	if dist <= 0 {
		dist = 1
	}
	c.near = dist - 2*radius
	if min := dist * 0.01; c.near < min {
		c.near = min
	}
	c.far = dist + 2*radius
	if c.far <= c.near {
		c.far = c.near * 100
	}
}

// WorldToDisplay projects a world point into display coordinates for a
// viewport of the given size. The origin is the bottom-left corner, x grows
// right, y grows up and z is the normalized depth in [0,1].
func (c *Camera) WorldToDisplay(p mgl32.Vec3, width, height int) mgl32.Vec3 {
	pv := c.ProjectionMatrix(float32(width) / float32(height)).Mul4(c.ViewMatrix())
	clip := pv.Mul4x1(p.Vec4(1))
	w := clip.W()
	if math32.Abs(w) < homogeneousEpsilon {
		return mgl32.Vec3{}
	}
	ndc := mgl32.Vec3{clip.X() / w, clip.Y() / w, clip.Z() / w}
	return mgl32.Vec3{
		(ndc.X() + 1) / 2 * float32(width),
		(ndc.Y() + 1) / 2 * float32(height),
		(ndc.Z() + 1) / 2,
	}
}

// DisplayToWorld maps display coordinates (bottom-left origin, normalized
// depth in z) back to a world point. It reports false when the homogeneous
// coordinate collapses and no world point exists; callers fall back to the
// origin in that case.
func (c *Camera) DisplayToWorld(d mgl32.Vec3, width, height int) (mgl32.Vec3, bool) {
	pv := c.ProjectionMatrix(float32(width) / float32(height)).Mul4(c.ViewMatrix())
	inv := pv.Inv()
	ndc := mgl32.Vec4{
		d.X()/float32(width)*2 - 1,
		d.Y()/float32(height)*2 - 1,
		d.Z()*2 - 1,
		1,
	}
	world := inv.Mul4x1(ndc)
	if !(world.W() > homogeneousEpsilon) {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{
		world.X() / world.W(),
		world.Y() / world.W(),
		world.Z() / world.W(),
	}, true
}
