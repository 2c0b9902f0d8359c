// Package scene holds the geometry model rendered by view3d: triangle and
// line meshes with named data arrays, procedural shape sources, a Wavefront
// OBJ reader, and time-based animations.
//
// A Scene is plain data. It carries no GPU or window state and can be built
// and inspected without a renderer.
package scene

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Field is a named data array attached to mesh points or cells.
// Values holds Components entries per element, interleaved.
type Field struct {
	Components int
	Values     []float32
}

// Tuple returns the i-th tuple of the field.
func (f *Field) Tuple(i int) []float32 {
	return f.Values[i*f.Components : (i+1)*f.Components]
}

// Len returns the number of tuples in the field.
func (f *Field) Len() int {
	if f.Components == 0 {
		return 0
	}
	return len(f.Values) / f.Components
}

// Range returns the min and max of one component across all tuples.
// A negative comp returns the range of the tuple magnitudes instead.
func (f *Field) Range(comp int) (lo, hi float32) {
	n := f.Len()
	if n == 0 {
		return 0, 0
	}
	first := true
	for i := 0; i < n; i++ {
		var v float32
		if comp < 0 {
			var sq float32
			for _, c := range f.Tuple(i) {
				sq += c * c
			}
			v = math32.Sqrt(sq)
		} else if comp < f.Components {
			v = f.Values[i*f.Components+comp]
		} else {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Mesh is an indexed triangle/line/point geometry with optional per-point
// and per-cell data arrays.
type Mesh struct {
	Name string

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // per point; empty means "compute flat normals"
	TexCoords []mgl32.Vec2

	// Triangles holds 3 indices per face, Lines 2 indices per segment.
	// A mesh with neither is rendered as bare points.
	Triangles []int
	Lines     []int

	PointData map[string]*Field
	CellData  map[string]*Field // one tuple per triangle

	// Transform is the model matrix applied at render time.
	Transform mgl32.Mat4
}

// NewMesh returns an empty named mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Transform: mgl32.Ident4(),
		PointData: map[string]*Field{},
		CellData:  map[string]*Field{},
	}
}

// TriangleCount returns the number of triangle cells.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// LineCount returns the number of line cells.
func (m *Mesh) LineCount() int { return len(m.Lines) / 2 }

// AddPointField attaches a per-point data array. Values must hold components
// entries per position.
func (m *Mesh) AddPointField(name string, components int, values []float32) error {
	if components <= 0 {
		return fmt.Errorf("scene: field %q: components must be positive", name)
	}
	if len(values) != len(m.Positions)*components {
		return fmt.Errorf("scene: field %q: got %d values, want %d",
			name, len(values), len(m.Positions)*components)
	}
	if m.PointData == nil {
		m.PointData = map[string]*Field{}
	}
	m.PointData[name] = &Field{Components: components, Values: values}
	return nil
}

// AddCellField attaches a per-triangle data array.
func (m *Mesh) AddCellField(name string, components int, values []float32) error {
	if components <= 0 {
		return fmt.Errorf("scene: field %q: components must be positive", name)
	}
	if len(values) != m.TriangleCount()*components {
		return fmt.Errorf("scene: field %q: got %d values, want %d",
			name, len(values), m.TriangleCount()*components)
	}
	if m.CellData == nil {
		m.CellData = map[string]*Field{}
	}
	m.CellData[name] = &Field{Components: components, Values: values}
	return nil
}

// ComputeNormals fills Normals with area-weighted per-point normals derived
// from the triangle cells. Existing normals are replaced.
func (m *Mesh) ComputeNormals() {
	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		a, b, c := m.Triangles[i], m.Triangles[i+1], m.Triangles[i+2]
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		n := e1.Cross(e2) // length is proportional to triangle area
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}
	for i, n := range m.Normals {
		if l := n.Len(); l > 0 {
			m.Normals[i] = n.Mul(1 / l)
		}
	}
}

// Bounds returns the axis-aligned bounding box of the mesh in model space,
// before Transform is applied.
func (m *Mesh) Bounds() Box3 {
	b := EmptyBox3()
	for _, p := range m.Positions {
		b.ExtendPoint(p)
	}
	return b
}

// Scene is an ordered collection of meshes plus file-level metadata and
// animations.
type Scene struct {
	Meshes     []*Mesh
	Animations []*Animation

	// FileName is the source path of the loaded content, empty for
	// programmatic scenes.
	FileName string

	Metadata map[string]string
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Metadata: map[string]string{}}
}

// AddMesh appends a mesh to the scene.
func (s *Scene) AddMesh(m *Mesh) {
	s.Meshes = append(s.Meshes, m)
}

// Bounds returns the union of all mesh bounds with each mesh transform
// applied.
func (s *Scene) Bounds() Box3 {
	b := EmptyBox3()
	for _, m := range s.Meshes {
		mb := m.Bounds()
		if mb.Empty() {
			continue
		}
		b.ExtendBox(mb.Transformed(m.Transform))
	}
	return b
}

// PointCount returns the total number of points across all meshes.
func (s *Scene) PointCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Positions)
	}
	return n
}

// CellCount returns the total number of triangle and line cells.
func (s *Scene) CellCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += m.TriangleCount() + m.LineCount()
	}
	return n
}

// FieldNames returns the sorted union of data array names across all meshes.
// Used to pick a coloring array when none is requested explicitly.
func (s *Scene) FieldNames() []string {
	set := map[string]bool{}
	for _, m := range s.Meshes {
		for name := range m.PointData {
			set[name] = true
		}
		for name := range m.CellData {
			set[name] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldRange returns the combined range of the named array across all
// meshes, searching point data or cell data depending on cells.
func (s *Scene) FieldRange(name string, comp int, cells bool) (lo, hi float32, ok bool) {
	first := true
	for _, m := range s.Meshes {
		var f *Field
		if cells {
			f = m.CellData[name]
		} else {
			f = m.PointData[name]
		}
		if f == nil || f.Len() == 0 {
			continue
		}
		l, h := f.Range(comp)
		if first {
			lo, hi = l, h
			first = false
			continue
		}
		if l < lo {
			lo = l
		}
		if h > hi {
			hi = h
		}
	}
	return lo, hi, !first
}

// Description returns a human-readable multi-line summary of the scene
// content: mesh names, cell counts and bounds.
func (s *Scene) Description() string {
	b := s.Bounds()
	out := fmt.Sprintf("scene with %d meshes, %d points, %d cells\n",
		len(s.Meshes), s.PointCount(), s.CellCount())
	if !b.Empty() {
		out += fmt.Sprintf("bounds: %v\n", b)
	}
	for _, m := range s.Meshes {
		out += fmt.Sprintf("  %s: %d points, %d triangles, %d lines\n",
			m.Name, len(m.Positions), m.TriangleCount(), m.LineCount())
	}
	return out
}
