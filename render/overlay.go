// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// overlayPainter draws 2D UI elements (text, scalar bar, axes gizmo) into a
// transparent staging image composited over the rendered frame. Overlay
// coordinates are in pixels with the origin at the top-left.
type overlayPainter struct {
	img   *image.RGBA
	face  font.Face
	lineH int
}

func newOverlayPainter(w, h int, face font.Face) *overlayPainter {
	if face == nil {
		face = basicfont.Face7x13
	}
	metrics := face.Metrics()
	lineH := (metrics.Height.Ceil())
	if lineH <= 0 {
		lineH = 13
	}
	return &overlayPainter{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		face:  face,
		lineH: lineH,
	}
}

// loadFace opens an OpenType font file at the given size, falling back to
// the built-in bitmap face on any error.
func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("render: font %s: %w", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: font %s: %w", path, err)
	}
	return face, nil
}

var (
	overlayFG     = color.RGBA{230, 230, 230, 255}
	overlayShadow = color.RGBA{0, 0, 0, 200}
)

// drawText renders one line with a drop shadow. x, y is the top-left corner
// of the line box.
func (p *overlayPainter) drawText(x, y int, s string) {
	ascent := p.face.Metrics().Ascent.Ceil()
	for _, off := range []struct {
		dx, dy int
		c      color.RGBA
	}{{1, 1, overlayShadow}, {0, 0, overlayFG}} {
		d := &font.Drawer{
			Dst:  p.img,
			Src:  image.NewUniform(off.c),
			Face: p.face,
			Dot:  fixed.P(x+off.dx, y+ascent+off.dy),
		}
		d.DrawString(s)
	}
}

// textWidth measures a string in pixels.
func (p *overlayPainter) textWidth(s string) int {
	d := &font.Drawer{Face: p.face}
	return d.MeasureString(s).Ceil()
}

// fillRect fills an axis-aligned rectangle.
func (p *overlayPainter) fillRect(r image.Rectangle, c color.RGBA) {
	draw.Draw(p.img, r.Intersect(p.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// drawLine draws a 1px line between two overlay points.
func (p *overlayPainter) drawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		p.img.SetRGBA(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := x0 + int(t*float32(x1-x0))
		y := y0 + int(t*float32(y1-y0))
		if image.Pt(x, y).In(p.img.Bounds()) {
			p.img.SetRGBA(x, y, c)
		}
	}
}

// compositeInto alpha-blends the overlay over the framebuffer.
func (p *overlayPainter) compositeInto(fb *Framebuffer) {
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			o := p.img.PixOffset(x, y)
			a := p.img.Pix[o+3]
			if a == 0 {
				continue
			}
			// The staging image is premultiplied by the draw package.
			alpha := float32(a) / 255
			i := (y*fb.W + x) * 4
			inv := 1 - alpha
			fb.Pix[i+0] = srgbToLinear(p.img.Pix[o+0]) + fb.Pix[i+0]*inv
			fb.Pix[i+1] = srgbToLinear(p.img.Pix[o+1]) + fb.Pix[i+1]*inv
			fb.Pix[i+2] = srgbToLinear(p.img.Pix[o+2]) + fb.Pix[i+2]*inv
			fb.Pix[i+3] = alpha + fb.Pix[i+3]*inv
		}
	}
}

// overlayMargin is the default padding from the viewport border.
const overlayMargin = 10

// drawScalarBar renders the vertical colormap legend on the right edge with
// the range bounds and the array title.
func (p *overlayPainter) drawScalarBar(cm *Colormap, lo, hi float32, title string) {
	b := p.img.Bounds()
	barW := 20
	barH := b.Dy() * 3 / 5
	x0 := b.Dx() - overlayMargin - barW
	y0 := (b.Dy() - barH) / 2

	for y := 0; y < barH; y++ {
		t := 1 - float32(y)/float32(barH-1)
		c := cm.At(t).Clamp()
		rgba := color.RGBA{
			uint8(c.R*255 + 0.5),
			uint8(c.G*255 + 0.5),
			uint8(c.B*255 + 0.5),
			255,
		}
		p.drawLine(x0, y0+y, x0+barW-1, y0+y, rgba)
	}
	// Frame.
	frame := color.RGBA{255, 255, 255, 255}
	p.drawLine(x0-1, y0-1, x0+barW, y0-1, frame)
	p.drawLine(x0-1, y0+barH, x0+barW, y0+barH, frame)
	p.drawLine(x0-1, y0-1, x0-1, y0+barH, frame)
	p.drawLine(x0+barW, y0-1, x0+barW, y0+barH, frame)

	hiLabel := fmt.Sprintf("%.4g", hi)
	loLabel := fmt.Sprintf("%.4g", lo)
	p.drawText(x0-p.textWidth(hiLabel)-4, y0-p.lineH/2, hiLabel)
	p.drawText(x0-p.textWidth(loLabel)-4, y0+barH-p.lineH/2, loLabel)
	if title != "" {
		p.drawText(x0-p.textWidth(title)-4, y0+barH/2-p.lineH/2, title)
	}
}

// drawMetadata renders key/value pairs top-right, keys sorted for stable
// layout.
func (p *overlayPainter) drawMetadata(meta map[string]string) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b := p.img.Bounds()
	y := overlayMargin
	for _, k := range keys {
		line := k + ": " + meta[k]
		p.drawText(b.Dx()-overlayMargin-p.textWidth(line), y, line)
		y += p.lineH
	}
}

// drawLines renders a block of text lines starting at (x, y).
func (p *overlayPainter) drawLines(x, y int, lines []string) {
	for i, line := range lines {
		p.drawText(x, y+i*p.lineH, line)
	}
}

// drawDropZone renders a dashed border with a centered hint, shown when no
// file is loaded.
func (p *overlayPainter) drawDropZone(info string) {
	b := p.img.Bounds()
	m := overlayMargin * 2
	c := color.RGBA{180, 180, 180, 255}
	const dash = 8
	for x := m; x < b.Dx()-m; x += dash * 2 {
		p.drawLine(x, m, minInt(x+dash, b.Dx()-m), m, c)
		p.drawLine(x, b.Dy()-m, minInt(x+dash, b.Dx()-m), b.Dy()-m, c)
	}
	for y := m; y < b.Dy()-m; y += dash * 2 {
		p.drawLine(m, y, m, minInt(y+dash, b.Dy()-m), c)
		p.drawLine(b.Dx()-m, y, b.Dx()-m, minInt(y+dash, b.Dy()-m), c)
	}
	if info != "" {
		p.drawText((b.Dx()-p.textWidth(info))/2, b.Dy()/2-p.lineH/2, info)
	}
}

// drawAxesGizmo renders the orientation marker: the three world axes
// projected through the camera rotation, drawn bottom-left.
func (p *overlayPainter) drawAxesGizmo(cam *Camera) {
	b := p.img.Bounds()
	size := 40
	cx := overlayMargin + size
	cy := b.Dy() - overlayMargin - size

	view := cam.ViewMatrix()
	axes := []struct {
		dir   [3]float32
		c     color.RGBA
		label string
	}{
		{[3]float32{1, 0, 0}, color.RGBA{220, 60, 60, 255}, "X"},
		{[3]float32{0, 1, 0}, color.RGBA{60, 220, 60, 255}, "Y"},
		{[3]float32{0, 0, 1}, color.RGBA{80, 80, 230, 255}, "Z"},
	}
	for _, a := range axes {
		// Rotate the axis into eye space; the translation column is
		// irrelevant for directions.
		ex := view[0]*a.dir[0] + view[4]*a.dir[1] + view[8]*a.dir[2]
		ey := view[1]*a.dir[0] + view[5]*a.dir[1] + view[9]*a.dir[2]
		tipX := cx + int(ex*float32(size))
		tipY := cy - int(ey*float32(size))
		p.drawLine(cx, cy, tipX, tipY, a.c)
		p.drawText(tipX-3, tipY-p.lineH/2, a.label)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
