package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis-aligned bounding box. The zero value is not meaningful,
// use EmptyBox3.
type Box3 struct {
	Min, Max mgl32.Vec3
}

// EmptyBox3 returns an inverted box that any ExtendPoint call will fix up.
func EmptyBox3() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no points.
func (b Box3) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// ExtendPoint grows the box to include p.
func (b *Box3) ExtendPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// ExtendBox grows the box to include other.
func (b *Box3) ExtendBox(other Box3) {
	if other.Empty() {
		return
	}
	b.ExtendPoint(other.Min)
	b.ExtendPoint(other.Max)
}

// Center returns the midpoint of the box.
func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Box3) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal, 0 for an empty box.
func (b Box3) Diagonal() float32 {
	return b.Size().Len()
}

// Contains reports whether p lies inside the box, boundary included.
func (b Box3) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Transformed returns the axis-aligned box containing all eight corners of b
// after applying m.
func (b Box3) Transformed(m mgl32.Mat4) Box3 {
	if b.Empty() {
		return b
	}
	out := EmptyBox3()
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			c[0] = b.Max.X()
		}
		if i&2 != 0 {
			c[1] = b.Max.Y()
		}
		if i&4 != 0 {
			c[2] = b.Max.Z()
		}
		out.ExtendPoint(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// String implements fmt.Stringer.
func (b Box3) String() string {
	if b.Empty() {
		return "empty"
	}
	return fmt.Sprintf("[%g,%g,%g]..[%g,%g,%g]",
		b.Min.X(), b.Min.Y(), b.Min.Z(), b.Max.X(), b.Max.Y(), b.Max.Z())
}
