package view3d

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Image is a rendered frame read back from the framebuffer. Data holds
// 8-bit sRGB pixels with the bottom row first and Channels entries per
// pixel: 3 for opaque RGB, 4 for RGBA.
type Image struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// Pixel returns the channel values at (x, y). The origin is the
// bottom-left corner, matching the buffer layout and display coordinates.
func (img *Image) Pixel(x, y int) []byte {
	i := (y*img.Width + x) * img.Channels
	return img.Data[i : i+img.Channels]
}

// ToRGBA converts to a top-row-first image.RGBA for the stdlib encoders.
// RGB images become opaque.
func (img *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		src := img.Height - 1 - y
		for x := 0; x < img.Width; x++ {
			p := img.Pixel(x, src)
			c := color.RGBA{R: p[0], G: p[1], B: p[2], A: 255}
			if img.Channels == 4 {
				c.A = p[3]
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out
}

// Save writes the image to path in the format named by the extension:
// ".png" (also the default for unknown extensions) or ".bmp". BMP output
// drops the alpha channel.
func (img *Image) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("view3d: save image: %w", err)
	}

	encErr := img.encode(f, strings.ToLower(filepath.Ext(path)))
	if closeErr := f.Close(); encErr == nil {
		encErr = closeErr
	}
	if encErr != nil {
		return fmt.Errorf("view3d: save image %q: %w", path, encErr)
	}
	return nil
}

func (img *Image) encode(f *os.File, ext string) error {
	switch ext {
	case ".bmp":
		return bmp.Encode(f, img.ToRGBA())
	default:
		return png.Encode(f, img.ToRGBA())
	}
}
