package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestMeshAddPointField(t *testing.T) {
	m := NewMesh("tri")
	m.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	if err := m.AddPointField("temp", 1, []float32{1, 2, 3}); err != nil {
		t.Fatalf("AddPointField failed: %v", err)
	}
	if got := m.PointData["temp"].Len(); got != 3 {
		t.Errorf("field length = %d, want 3", got)
	}

	if err := m.AddPointField("bad", 1, []float32{1, 2}); err == nil {
		t.Error("expected error for mismatched field length")
	}
	if err := m.AddPointField("bad", 0, nil); err == nil {
		t.Error("expected error for zero components")
	}
}

func TestMeshAddCellField(t *testing.T) {
	m := NewMesh("tri")
	m.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.Triangles = []int{0, 1, 2}

	if err := m.AddCellField("id", 1, []float32{7}); err != nil {
		t.Fatalf("AddCellField failed: %v", err)
	}
	if err := m.AddCellField("bad", 1, []float32{7, 8}); err == nil {
		t.Error("expected error for mismatched cell field length")
	}
}

func TestFieldRange(t *testing.T) {
	f := &Field{Components: 2, Values: []float32{3, 4, -1, 2, 0, 0}}

	lo, hi := f.Range(0)
	if lo != -1 || hi != 3 {
		t.Errorf("Range(0) = %g..%g, want -1..3", lo, hi)
	}

	// Negative component selects tuple magnitude.
	lo, hi = f.Range(-1)
	if lo != 0 || math32.Abs(hi-5) > 1e-5 {
		t.Errorf("Range(-1) = %g..%g, want 0..5", lo, hi)
	}
}

func TestComputeNormals(t *testing.T) {
	m := NewMesh("quad")
	m.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	m.Triangles = []int{0, 1, 2, 0, 2, 3}
	m.ComputeNormals()

	if len(m.Normals) != 4 {
		t.Fatalf("got %d normals, want 4", len(m.Normals))
	}
	for i, n := range m.Normals {
		want := mgl32.Vec3{0, 0, 1}
		if n.Sub(want).Len() > 1e-5 {
			t.Errorf("normal[%d] = %v, want %v", i, n, want)
		}
	}
}

func TestSceneBounds(t *testing.T) {
	s := New()
	m := NewMesh("pts")
	m.Positions = []mgl32.Vec3{{-1, -2, -3}, {4, 5, 6}}
	s.AddMesh(m)

	b := s.Bounds()
	if b.Empty() {
		t.Fatal("bounds empty for non-empty scene")
	}
	if b.Min != (mgl32.Vec3{-1, -2, -3}) || b.Max != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("bounds = %v, want [-1,-2,-3]..[4,5,6]", b)
	}
	if got, want := b.Center(), (mgl32.Vec3{1.5, 1.5, 1.5}); got != want {
		t.Errorf("center = %v, want %v", got, want)
	}
}

func TestSceneBoundsTransformed(t *testing.T) {
	s := New()
	m := NewMesh("pt")
	m.Positions = []mgl32.Vec3{{1, 0, 0}}
	m.Transform = mgl32.Translate3D(10, 0, 0)
	s.AddMesh(m)

	b := s.Bounds()
	if got := b.Min.X(); math32.Abs(got-11) > 1e-5 {
		t.Errorf("transformed min x = %g, want 11", got)
	}
}

func TestEmptyBounds(t *testing.T) {
	b := EmptyBox3()
	if !b.Empty() {
		t.Error("EmptyBox3 not empty")
	}
	if got := b.Diagonal(); got != 0 {
		t.Errorf("empty diagonal = %g, want 0", got)
	}
	b.ExtendPoint(mgl32.Vec3{1, 1, 1})
	if b.Empty() {
		t.Error("box empty after ExtendPoint")
	}
	if got := b.Diagonal(); got != 0 {
		t.Errorf("single point diagonal = %g, want 0", got)
	}
}

func TestFieldNames(t *testing.T) {
	s := New()
	a := NewMesh("a")
	a.Positions = []mgl32.Vec3{{0, 0, 0}}
	if err := a.AddPointField("zeta", 1, []float32{1}); err != nil {
		t.Fatal(err)
	}
	b := NewMesh("b")
	b.Positions = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	b.Triangles = []int{0, 1, 2}
	if err := b.AddCellField("alpha", 1, []float32{1}); err != nil {
		t.Fatal(err)
	}
	s.AddMesh(a)
	s.AddMesh(b)

	names := s.FieldNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("FieldNames = %v, want [alpha zeta]", names)
	}
}

func TestFieldRangeAcrossMeshes(t *testing.T) {
	s := New()
	a := NewMesh("a")
	a.Positions = []mgl32.Vec3{{0, 0, 0}}
	if err := a.AddPointField("v", 1, []float32{-5}); err != nil {
		t.Fatal(err)
	}
	b := NewMesh("b")
	b.Positions = []mgl32.Vec3{{0, 0, 0}}
	if err := b.AddPointField("v", 1, []float32{9}); err != nil {
		t.Fatal(err)
	}
	s.AddMesh(a)
	s.AddMesh(b)

	lo, hi, ok := s.FieldRange("v", 0, false)
	if !ok {
		t.Fatal("FieldRange reported no data")
	}
	if lo != -5 || hi != 9 {
		t.Errorf("range = %g..%g, want -5..9", lo, hi)
	}
	if _, _, ok := s.FieldRange("missing", 0, false); ok {
		t.Error("FieldRange found data for missing array")
	}
}
