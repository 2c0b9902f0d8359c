package view3d

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/gogpu/view3d/scene"
)

// checkerImage builds a 2x2 RGB image with a distinct bottom-left pixel.
func checkerImage() *Image {
	return &Image{
		Width:    2,
		Height:   2,
		Channels: 3,
		Data: []byte{
			255, 0, 0 /**/, 0, 255, 0, // bottom row
			0, 0, 255 /**/, 255, 255, 255, // top row
		},
	}
}

func TestImagePixel(t *testing.T) {
	img := checkerImage()
	if got := img.Pixel(0, 0); got[0] != 255 || got[1] != 0 || got[2] != 0 {
		t.Errorf("Pixel(0,0) = %v, want red", got)
	}
	if got := img.Pixel(1, 1); got[0] != 255 || got[1] != 255 || got[2] != 255 {
		t.Errorf("Pixel(1,1) = %v, want white", got)
	}
}

func TestImageToRGBAFlipsRows(t *testing.T) {
	img := checkerImage()
	rgba := img.ToRGBA()

	// The buffer's bottom row must land at the image's bottom, which is
	// the highest y in image.RGBA coordinates.
	if c := rgba.RGBAAt(0, 1); c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("RGBAAt(0,1) = %v, want opaque red", c)
	}
	if c := rgba.RGBAAt(0, 0); c.B != 255 || c.R != 0 {
		t.Errorf("RGBAAt(0,0) = %v, want blue", c)
	}
}

func TestImageToRGBAKeepsAlpha(t *testing.T) {
	img := &Image{
		Width:    1,
		Height:   1,
		Channels: 4,
		Data:     []byte{10, 20, 30, 40},
	}
	if c := img.ToRGBA().RGBAAt(0, 0); c.A != 40 {
		t.Errorf("alpha = %d, want 40", c.A)
	}
}

func TestImageSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := checkerImage().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved file: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("saved file is not a png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("decoded size = %dx%d, want 2x2", b.Dx(), b.Dy())
	}
}

func TestImageSaveBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	if err := checkerImage().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved file: %v", err)
	}
	defer f.Close()
	decoded, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("saved file is not a bmp: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("decoded size = %dx%d, want 2x2", b.Dx(), b.Dy())
	}
}

func TestImageSaveBadPath(t *testing.T) {
	err := checkerImage().Save(filepath.Join(t.TempDir(), "missing", "frame.png"))
	if err == nil {
		t.Error("Save into a missing directory succeeded, want error")
	}
}

func TestRenderToImageRGB(t *testing.T) {
	opts := NewOptions()
	opts.Render.Background.Color = [3]float64{0, 0, 0}
	win := newTestWindow(t, opts)

	img, err := win.RenderToImage(false)
	if err != nil {
		t.Fatalf("RenderToImage failed: %v", err)
	}
	if img.Channels != 3 {
		t.Fatalf("Channels = %d, want 3", img.Channels)
	}
	if img.Width != 64 || img.Height != 48 {
		t.Errorf("size = %dx%d, want 64x48", img.Width, img.Height)
	}
	if want := 64 * 48 * 3; len(img.Data) != want {
		t.Fatalf("len(Data) = %d, want %d", len(img.Data), want)
	}
	if p := img.Pixel(0, 0); p[0] != 0 || p[1] != 0 || p[2] != 0 {
		t.Errorf("corner pixel = %v, want black background", p)
	}
}

func TestRenderToImageNoBackground(t *testing.T) {
	opts := NewOptions()
	// A loud background that would show up in any blend artifact.
	opts.Render.Background.Color = [3]float64{1, 0.5, 0}
	opts.Model.Color.Opacity = 0.5

	win := newTestWindow(t, opts)
	scn := scene.New()
	scn.AddMesh(scene.NewSphere("ball", 0.5, 8, 16))
	win.SetScene(scn)
	win.ResetCamera()
	// Shrink the sphere on screen so the corners stay uncovered.
	win.Camera().Zoom(0.5)

	img, err := win.RenderToImage(true)
	if err != nil {
		t.Fatalf("RenderToImage failed: %v", err)
	}
	if img.Channels != 4 {
		t.Fatalf("Channels = %d, want 4", img.Channels)
	}

	corners := [][2]int{{0, 0}, {img.Width - 1, 0}, {0, img.Height - 1}, {img.Width - 1, img.Height - 1}}
	for _, c := range corners {
		p := img.Pixel(c[0], c[1])
		if p[0] != 0 || p[1] != 0 || p[2] != 0 || p[3] != 0 {
			t.Errorf("uncovered pixel at %v = %v, want transparent black", c, p)
		}
	}

	// The sphere itself must still be there, translucent.
	center := img.Pixel(img.Width/2, img.Height/2)
	if center[3] == 0 {
		t.Error("center pixel transparent, expected translucent geometry")
	}

	// The next opaque frame uses the configured background again.
	next, err := win.RenderToImage(false)
	if err != nil {
		t.Fatalf("follow-up RenderToImage failed: %v", err)
	}
	if p := next.Pixel(0, 0); p[0] == 0 {
		t.Error("background color not restored after noBackground export")
	}
}
