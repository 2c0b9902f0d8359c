package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/view3d"
)

func ptr[T any](v T) *T { return &v }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "view3d.json", `{
		"axis": true,
		"grid": true,
		"bg-color": [1, 0, 0],
		"line-width": 2.5,
		"samples": 16,
		"up": "+Z",
		"scalars": "Temperature",
		"range": [0, 100]
	}`)

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if f.Axis == nil || !*f.Axis {
		t.Errorf("Axis = %v, want true", f.Axis)
	}
	if f.Grid == nil || !*f.Grid {
		t.Errorf("Grid = %v, want true", f.Grid)
	}
	if f.BgColor == nil || *f.BgColor != [3]float64{1, 0, 0} {
		t.Errorf("BgColor = %v, want [1 0 0]", f.BgColor)
	}
	if f.LineWidth == nil || *f.LineWidth != 2.5 {
		t.Errorf("LineWidth = %v, want 2.5", f.LineWidth)
	}
	if f.Samples == nil || *f.Samples != 16 {
		t.Errorf("Samples = %v, want 16", f.Samples)
	}
	if f.Up == nil || *f.Up != "+Z" {
		t.Errorf("Up = %v, want +Z", f.Up)
	}
	if f.Scalars == nil || *f.Scalars != "Temperature" {
		t.Errorf("Scalars = %v, want Temperature", f.Scalars)
	}
	if f.Range == nil || *f.Range != [2]float64{0, 100} {
		t.Errorf("Range = %v, want [0 100]", f.Range)
	}
	if f.Edges != nil {
		t.Errorf("Edges = %v, want nil for an absent key", f.Edges)
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	f, err := LoadFile(path)
	if f != nil {
		t.Errorf("LoadFile() = %v, want nil", f)
	}
	if !errors.Is(err, ErrLoad) {
		t.Errorf("errors.Is(err, ErrLoad) = false, err = %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("errors.As(err, *LoadError) = false, err = %v", err)
	}
	if le.Path != path {
		t.Errorf("LoadError.Path = %q, want %q", le.Path, path)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	path := writeFile(t, "broken.json", `{"axis": tr`)

	if _, err := LoadFile(path); !errors.Is(err, ErrLoad) {
		t.Errorf("errors.Is(err, ErrLoad) = false, err = %v", err)
	}
}

func TestApply(t *testing.T) {
	o := view3d.NewOptions()
	f := &File{
		Axis:           ptr(true),
		Edges:          ptr(true),
		LineWidth:      ptr(3.0),
		BgColor:        ptr([3]float64{0, 0, 1}),
		Samples:        ptr(32),
		Up:             ptr("-Z"),
		Opacity:        ptr(0.5),
		LightIntensity: ptr(2.0),
	}

	f.Apply(o)

	if !o.Interactor.Axis {
		t.Error("Interactor.Axis = false, want true")
	}
	if !o.Render.ShowEdges {
		t.Error("Render.ShowEdges = false, want true")
	}
	if o.Render.LineWidth != 3 {
		t.Errorf("Render.LineWidth = %v, want 3", o.Render.LineWidth)
	}
	if o.Render.Background.Color != [3]float64{0, 0, 1} {
		t.Errorf("Background.Color = %v, want [0 0 1]", o.Render.Background.Color)
	}
	if o.Render.Raytracing.Samples != 32 {
		t.Errorf("Raytracing.Samples = %v, want 32", o.Render.Raytracing.Samples)
	}
	if o.Scene.UpDirection != "-Z" {
		t.Errorf("Scene.UpDirection = %q, want -Z", o.Scene.UpDirection)
	}
	if o.Model.Color.Opacity != 0.5 {
		t.Errorf("Model.Color.Opacity = %v, want 0.5", o.Model.Color.Opacity)
	}
	if o.Render.Light.Intensity != 2 {
		t.Errorf("Render.Light.Intensity = %v, want 2", o.Render.Light.Intensity)
	}

	// Absent fields keep their defaults.
	if o.Render.PointSize != 10 {
		t.Errorf("Render.PointSize = %v, want default 10", o.Render.PointSize)
	}
	if o.Model.Material.Roughness != 0.3 {
		t.Errorf("Model.Material.Roughness = %v, want default 0.3", o.Model.Material.Roughness)
	}
}

func TestApplyScalarsEnablesColoring(t *testing.T) {
	o := view3d.NewOptions()
	f := &File{Scalars: ptr("Pressure"), Comp: ptr(2), Cells: ptr(true)}

	f.Apply(o)

	if !o.Model.Scivis.Enable {
		t.Error("Scivis.Enable = false, want true")
	}
	if o.Model.Scivis.ArrayName != "Pressure" {
		t.Errorf("Scivis.ArrayName = %q, want Pressure", o.Model.Scivis.ArrayName)
	}
	if o.Model.Scivis.Component != 2 {
		t.Errorf("Scivis.Component = %v, want 2", o.Model.Scivis.Component)
	}
	if !o.Model.Scivis.Cells {
		t.Error("Scivis.Cells = false, want true")
	}
}

func TestApplyHideBar(t *testing.T) {
	o := view3d.NewOptions()
	o.UI.ScalarBar = true

	(&File{HideBar: ptr(true)}).Apply(o)

	if o.UI.ScalarBar {
		t.Error("UI.ScalarBar = true, want false after hide-bar")
	}
}

func TestApplyRangeAndColormap(t *testing.T) {
	o := view3d.NewOptions()
	f := &File{
		Range:    ptr([2]float64{-1, 1}),
		Colormap: []float64{0, 0, 0, 0, 1, 1, 1, 1},
	}

	f.Apply(o)

	want := []float64{-1, 1}
	if len(o.Model.Scivis.Range) != 2 || o.Model.Scivis.Range[0] != want[0] || o.Model.Scivis.Range[1] != want[1] {
		t.Errorf("Scivis.Range = %v, want %v", o.Model.Scivis.Range, want)
	}
	if len(o.Model.Scivis.Colormap) != 8 {
		t.Errorf("len(Scivis.Colormap) = %d, want 8", len(o.Model.Scivis.Colormap))
	}
}
