package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `# simple quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJQuad(t *testing.T) {
	s, err := ReadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(s.Meshes))
	}
	m := s.Meshes[0]
	if len(m.Positions) != 4 {
		t.Errorf("got %d positions, want 4", len(m.Positions))
	}
	// A quad triangulates into two fan triangles.
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("got %d triangles, want 2", got)
	}
	if len(m.Normals) != len(m.Positions) {
		t.Errorf("got %d normals, want %d", len(m.Normals), len(m.Positions))
	}
	if len(m.TexCoords) != len(m.Positions) {
		t.Errorf("got %d texcoords, want %d", len(m.TexCoords), len(m.Positions))
	}
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	s, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	m := s.Meshes[0]
	if m.TriangleCount() != 1 {
		t.Fatalf("got %d triangles, want 1", m.TriangleCount())
	}
	if m.Positions[m.Triangles[2]] != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("last corner = %v, want (0,1,0)", m.Positions[m.Triangles[2]])
	}
}

func TestReadOBJObjects(t *testing.T) {
	src := `
o first
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o second
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`
	s, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if len(s.Meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(s.Meshes))
	}
	if s.Meshes[0].Name != "first" || s.Meshes[1].Name != "second" {
		t.Errorf("mesh names = %q, %q", s.Meshes[0].Name, s.Meshes[1].Name)
	}
	for i, m := range s.Meshes {
		if m.TriangleCount() != 1 {
			t.Errorf("mesh %d: got %d triangles, want 1", i, m.TriangleCount())
		}
	}
}

func TestReadOBJSharedCorners(t *testing.T) {
	// Two triangles sharing an edge: corners with identical v/vt/vn
	// triplets must collapse to single vertices.
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	s, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	m := s.Meshes[0]
	if len(m.Positions) != 4 {
		t.Errorf("got %d positions, want 4 (shared corners collapsed)", len(m.Positions))
	}
}

func TestReadOBJLines(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 2 0 0
l 1 2 3
`
	s, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ failed: %v", err)
	}
	if got := s.Meshes[0].LineCount(); got != 2 {
		t.Errorf("got %d line segments, want 2", got)
	}
}

func TestReadOBJErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"bad index", "v 0 0 0\nf 1 2 9"},
		{"bad float", "v a b c"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadOBJ(strings.NewReader(tc.src)); err == nil {
				t.Errorf("expected error for %q", tc.name)
			}
		})
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	_, err := LoadFile("model.step")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("error = %v, want unsupported format", err)
	}
}
