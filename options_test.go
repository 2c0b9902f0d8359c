package view3d

import (
	"bytes"
	"testing"

	"github.com/gogpu/view3d/render"
	"github.com/gogpu/view3d/scene"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()

	if o.Scene.UpDirection != "+Y" {
		t.Errorf("UpDirection = %q, want +Y", o.Scene.UpDirection)
	}
	if o.Scene.Camera.Index != nil {
		t.Error("Camera.Index non-nil by default")
	}
	if o.Render.LineWidth != 1 {
		t.Errorf("LineWidth = %g, want 1", o.Render.LineWidth)
	}
	if o.Render.PointSize != 10 {
		t.Errorf("PointSize = %g, want 10", o.Render.PointSize)
	}
	if o.Render.BackfaceType != "default" {
		t.Errorf("BackfaceType = %q, want default", o.Render.BackfaceType)
	}
	if o.Render.Grid.Subdivisions != 10 {
		t.Errorf("Grid.Subdivisions = %d, want 10", o.Render.Grid.Subdivisions)
	}
	if o.Render.Raytracing.Samples != 5 {
		t.Errorf("Raytracing.Samples = %d, want 5", o.Render.Raytracing.Samples)
	}
	if o.Render.Background.Color != ([3]float64{0.2, 0.2, 0.2}) {
		t.Errorf("Background.Color = %v, want 0.2 gray", o.Render.Background.Color)
	}
	if o.Render.Background.BlurCoC != 20 {
		t.Errorf("Background.BlurCoC = %g, want 20", o.Render.Background.BlurCoC)
	}
	if o.Render.Light.Intensity != 1 {
		t.Errorf("Light.Intensity = %g, want 1", o.Render.Light.Intensity)
	}
	if o.Model.Color.RGB != ([3]float64{1, 1, 1}) {
		t.Errorf("Color.RGB = %v, want white", o.Model.Color.RGB)
	}
	if o.Model.Color.Opacity != 1 {
		t.Errorf("Color.Opacity = %g, want 1", o.Model.Color.Opacity)
	}
	if o.Model.Material.Roughness != 0.3 {
		t.Errorf("Material.Roughness = %g, want 0.3", o.Model.Material.Roughness)
	}
	if o.Model.Emissive.Factor != ([3]float64{1, 1, 1}) {
		t.Errorf("Emissive.Factor = %v, want ones", o.Model.Emissive.Factor)
	}
	if o.Model.Normal.Scale != 1 {
		t.Errorf("Normal.Scale = %g, want 1", o.Model.Normal.Scale)
	}
	if o.Model.Scivis.Component != -1 {
		t.Errorf("Scivis.Component = %d, want -1", o.Model.Scivis.Component)
	}
	if o.Model.PointSprites.Type != "sphere" {
		t.Errorf("PointSprites.Type = %q, want sphere", o.Model.PointSprites.Type)
	}
	if o.Model.PointSprites.Size != 10 {
		t.Errorf("PointSprites.Size = %g, want 10", o.Model.PointSprites.Size)
	}
}

// TestDefaultsMatchRenderer renders the same scene once through the window
// (defaults pushed by the binding table) and once on a bare renderer. The
// frames must match: syncing default options is a no-op.
func TestDefaultsMatchRenderer(t *testing.T) {
	scn := scene.New()
	scn.AddMesh(scene.NewCube("cube", 1))

	win := newTestWindow(t, nil)
	win.SetScene(scn)
	win.ResetCamera()
	img, err := win.RenderToImage(false)
	if err != nil {
		t.Fatalf("RenderToImage failed: %v", err)
	}

	r := render.NewRenderer()
	r.SetScene(scn)
	r.UpdateActors()
	*r.Camera() = *win.Camera()
	fb := render.NewFramebuffer(64, 48)
	r.Render(fb)
	want := fb.Pixels(3, true)

	if !bytes.Equal(img.Data, want) {
		t.Error("default options synced through the window changed the frame")
	}
}
