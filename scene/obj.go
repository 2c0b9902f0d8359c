package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedFormat is returned by LoadFile for file extensions the
// reader does not understand.
var ErrUnsupportedFormat = fmt.Errorf("scene: unsupported file format")

// LoadFile reads a scene from path, dispatching on the file extension.
// Only Wavefront OBJ is supported.
func LoadFile(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		defer f.Close()
		s, err := ReadOBJ(f)
		if err != nil {
			return nil, fmt.Errorf("scene: %s: %w", path, err)
		}
		s.FileName = path
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// objKey identifies a unique position/texcoord/normal triplet so shared
// corners collapse to one output vertex.
type objKey struct {
	v, vt, vn int
}

// objBuilder accumulates one output mesh while the file streams through.
type objBuilder struct {
	mesh  *Mesh
	index map[objKey]int
}

func newOBJBuilder(name string) *objBuilder {
	return &objBuilder{mesh: NewMesh(name), index: map[objKey]int{}}
}

// ReadOBJ parses a Wavefront OBJ stream. Each "o" statement starts a new
// mesh; files without one produce a single mesh named "default".
// Faces with more than three corners are triangulated as fans.
func ReadOBJ(r io.Reader) (*Scene, error) {
	var (
		positions []mgl32.Vec3
		texCoords []mgl32.Vec2
		normals   []mgl32.Vec3
	)
	s := New()
	cur := newOBJBuilder("default")
	flush := func() {
		if len(cur.mesh.Positions) > 0 {
			s.AddMesh(cur.mesh)
		}
	}

	resolve := func(idx, n int) (int, error) {
		// OBJ indices are 1-based; negative counts from the end.
		if idx > 0 && idx <= n {
			return idx - 1, nil
		}
		if idx < 0 && -idx <= n {
			return n + idx, nil
		}
		return 0, fmt.Errorf("index %d out of range (have %d)", idx, n)
	}

	// vertex maps an OBJ corner spec ("7", "7/2", "7/2/3", "7//3") to an
	// output vertex index in the current mesh.
	vertex := func(spec string) (int, error) {
		parts := strings.Split(spec, "/")
		key := objKey{vt: -1, vn: -1}
		vi, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("bad vertex index %q", parts[0])
		}
		if key.v, err = resolve(vi, len(positions)); err != nil {
			return 0, err
		}
		if len(parts) > 1 && parts[1] != "" {
			ti, err := strconv.Atoi(parts[1])
			if err != nil {
				return 0, fmt.Errorf("bad texcoord index %q", parts[1])
			}
			if key.vt, err = resolve(ti, len(texCoords)); err != nil {
				return 0, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			ni, err := strconv.Atoi(parts[2])
			if err != nil {
				return 0, fmt.Errorf("bad normal index %q", parts[2])
			}
			if key.vn, err = resolve(ni, len(normals)); err != nil {
				return 0, err
			}
		}
		if out, ok := cur.index[key]; ok {
			return out, nil
		}
		out := len(cur.mesh.Positions)
		cur.mesh.Positions = append(cur.mesh.Positions, positions[key.v])
		if key.vt >= 0 {
			cur.mesh.TexCoords = append(cur.mesh.TexCoords, texCoords[key.vt])
		}
		if key.vn >= 0 {
			cur.mesh.Normals = append(cur.mesh.Normals, normals[key.vn])
		}
		cur.index[key] = out
		return out, nil
	}

	parseFloats := func(fields []string, n int) ([]float32, error) {
		if len(fields) < n {
			return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
		}
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				return nil, fmt.Errorf("bad value %q", fields[i])
			}
			out[i] = float32(v)
		}
		return out, nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		args := fields[1:]
		var err error
		switch fields[0] {
		case "v":
			var p []float32
			if p, err = parseFloats(args, 3); err == nil {
				positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
			}
		case "vn":
			var p []float32
			if p, err = parseFloats(args, 3); err == nil {
				normals = append(normals, mgl32.Vec3{p[0], p[1], p[2]})
			}
		case "vt":
			var p []float32
			if p, err = parseFloats(args, 2); err == nil {
				texCoords = append(texCoords, mgl32.Vec2{p[0], p[1]})
			}
		case "f":
			if len(args) < 3 {
				err = fmt.Errorf("face needs at least 3 corners, got %d", len(args))
				break
			}
			idx := make([]int, len(args))
			for i, spec := range args {
				if idx[i], err = vertex(spec); err != nil {
					break
				}
			}
			if err != nil {
				break
			}
			for i := 1; i+1 < len(idx); i++ {
				cur.mesh.Triangles = append(cur.mesh.Triangles, idx[0], idx[i], idx[i+1])
			}
		case "l":
			if len(args) < 2 {
				err = fmt.Errorf("line needs at least 2 points, got %d", len(args))
				break
			}
			idx := make([]int, len(args))
			for i, spec := range args {
				if idx[i], err = vertex(spec); err != nil {
					break
				}
			}
			if err != nil {
				break
			}
			for i := 0; i+1 < len(idx); i++ {
				cur.mesh.Lines = append(cur.mesh.Lines, idx[i], idx[i+1])
			}
		case "o", "g":
			name := "default"
			if len(args) > 0 {
				name = strings.Join(args, " ")
			}
			if len(cur.mesh.Positions) > 0 {
				flush()
				cur = newOBJBuilder(name)
			} else {
				cur.mesh.Name = name
			}
		case "mtllib", "usemtl", "s":
			// Materials and smoothing groups are not interpreted.
		default:
			// Unknown statements are skipped, matching common readers.
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	flush()
	if len(s.Meshes) == 0 {
		return nil, fmt.Errorf("obj: no geometry found")
	}
	// Partially specified normals cannot be indexed per point; recompute.
	for _, m := range s.Meshes {
		if len(m.Normals) > 0 && len(m.Normals) != len(m.Positions) {
			m.ComputeNormals()
		}
		if len(m.TexCoords) > 0 && len(m.TexCoords) != len(m.Positions) {
			m.TexCoords = nil
		}
	}
	s.Metadata["points"] = strconv.Itoa(s.PointCount())
	s.Metadata["cells"] = strconv.Itoa(s.CellCount())
	return s, nil
}
