package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewCube returns an axis-aligned cube centered at the origin with the given
// edge length. Each face has its own vertices so normals stay flat.
func NewCube(name string, size float32) *Mesh {
	h := size / 2
	m := NewMesh(name)

	// Six faces, each defined by origin corner and two edge vectors.
	faces := []struct {
		origin, u, v, n mgl32.Vec3
	}{
		{mgl32.Vec3{-h, -h, h}, mgl32.Vec3{size, 0, 0}, mgl32.Vec3{0, size, 0}, mgl32.Vec3{0, 0, 1}},   // front
		{mgl32.Vec3{h, -h, -h}, mgl32.Vec3{-size, 0, 0}, mgl32.Vec3{0, size, 0}, mgl32.Vec3{0, 0, -1}}, // back
		{mgl32.Vec3{h, -h, h}, mgl32.Vec3{0, 0, -size}, mgl32.Vec3{0, size, 0}, mgl32.Vec3{1, 0, 0}},   // right
		{mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{0, 0, size}, mgl32.Vec3{0, size, 0}, mgl32.Vec3{-1, 0, 0}}, // left
		{mgl32.Vec3{-h, h, h}, mgl32.Vec3{size, 0, 0}, mgl32.Vec3{0, 0, -size}, mgl32.Vec3{0, 1, 0}},   // top
		{mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{size, 0, 0}, mgl32.Vec3{0, 0, size}, mgl32.Vec3{0, -1, 0}}, // bottom
	}
	for _, f := range faces {
		base := len(m.Positions)
		m.Positions = append(m.Positions,
			f.origin,
			f.origin.Add(f.u),
			f.origin.Add(f.u).Add(f.v),
			f.origin.Add(f.v),
		)
		for i := 0; i < 4; i++ {
			m.Normals = append(m.Normals, f.n)
		}
		m.TexCoords = append(m.TexCoords,
			mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 1})
		m.Triangles = append(m.Triangles,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	return m
}

// NewSphere returns a UV sphere centered at the origin. rings is the number
// of latitude bands, sectors the number of longitude bands; both are clamped
// to a minimum of 3.
func NewSphere(name string, radius float32, rings, sectors int) *Mesh {
	if rings < 3 {
		rings = 3
	}
	if sectors < 3 {
		sectors = 3
	}
	m := NewMesh(name)
	for r := 0; r <= rings; r++ {
		theta := math32.Pi * float32(r) / float32(rings)
		sinT, cosT := math32.Sincos(theta)
		for s := 0; s <= sectors; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(sectors)
			sinP, cosP := math32.Sincos(phi)
			n := mgl32.Vec3{sinT * cosP, cosT, sinT * sinP}
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
			m.TexCoords = append(m.TexCoords, mgl32.Vec2{
				float32(s) / float32(sectors),
				1 - float32(r)/float32(rings),
			})
		}
	}
	stride := sectors + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < sectors; s++ {
			a := r*stride + s
			b := a + stride
			m.Triangles = append(m.Triangles,
				a, b, a+1,
				a+1, b, b+1)
		}
	}
	return m
}

// NewCone returns a cone with its base circle of the given radius on the
// y=0 plane and apex at (0, height, 0). res is the circle resolution,
// clamped to a minimum of 3.
func NewCone(name string, radius, height float32, res int) *Mesh {
	if res < 3 {
		res = 3
	}
	m := NewMesh(name)
	apex := mgl32.Vec3{0, height, 0}
	// Side fan. Each segment gets its own apex copy so flat shading
	// stays crisp.
	for i := 0; i < res; i++ {
		a0 := 2 * math32.Pi * float32(i) / float32(res)
		a1 := 2 * math32.Pi * float32(i+1) / float32(res)
		s0, c0 := math32.Sincos(a0)
		s1, c1 := math32.Sincos(a1)
		p0 := mgl32.Vec3{radius * c0, 0, radius * s0}
		p1 := mgl32.Vec3{radius * c1, 0, radius * s1}
		base := len(m.Positions)
		m.Positions = append(m.Positions, p0, p1, apex)
		m.Triangles = append(m.Triangles, base, base+2, base+1)
	}
	// Base cap.
	center := len(m.Positions)
	m.Positions = append(m.Positions, mgl32.Vec3{})
	rim := len(m.Positions)
	for i := 0; i < res; i++ {
		a := 2 * math32.Pi * float32(i) / float32(res)
		s, c := math32.Sincos(a)
		m.Positions = append(m.Positions, mgl32.Vec3{radius * c, 0, radius * s})
	}
	for i := 0; i < res; i++ {
		m.Triangles = append(m.Triangles, center, rim+i, rim+(i+1)%res)
	}
	m.ComputeNormals()
	return m
}

// NewPlane returns a square grid on the XZ plane, centered at the origin
// with normal +Y. divs is the number of cells per side, clamped to 1.
func NewPlane(name string, size float32, divs int) *Mesh {
	if divs < 1 {
		divs = 1
	}
	m := NewMesh(name)
	h := size / 2
	for z := 0; z <= divs; z++ {
		for x := 0; x <= divs; x++ {
			fx := float32(x) / float32(divs)
			fz := float32(z) / float32(divs)
			m.Positions = append(m.Positions, mgl32.Vec3{-h + fx*size, 0, -h + fz*size})
			m.Normals = append(m.Normals, mgl32.Vec3{0, 1, 0})
			m.TexCoords = append(m.TexCoords, mgl32.Vec2{fx, 1 - fz})
		}
	}
	stride := divs + 1
	for z := 0; z < divs; z++ {
		for x := 0; x < divs; x++ {
			a := z*stride + x
			b := a + stride
			m.Triangles = append(m.Triangles,
				a, a+1, b,
				a+1, b+1, b)
		}
	}
	return m
}
