// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// irradianceW and irradianceH size the baked diffuse environment map. Small
// on purpose: it holds cosine-weighted averages, not detail.
const (
	irradianceW = 32
	irradianceH = 16
)

// Environment is an equirectangular image used as skybox and light source.
// The baked irradiance map answers diffuse lighting lookups; baking it is
// slow, so the result is persisted under the window cache path.
type Environment struct {
	sky        *Texture
	irradiance *Texture
	sourcePath string
}

// LoadEnvironment reads an equirectangular image and prepares its
// irradiance map, reusing a baked copy from cacheDir when one exists.
// An empty cacheDir disables persistence.
func LoadEnvironment(path, cacheDir string) (*Environment, error) {
	sky, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}
	env := &Environment{sky: sky, sourcePath: path}

	cacheFile := ""
	if cacheDir != "" {
		cacheFile = filepath.Join(cacheDir, env.bakeKey())
		if t, err := loadBakedIrradiance(cacheFile); err == nil {
			env.irradiance = t
			return env, nil
		}
	}
	env.irradiance = bakeIrradiance(sky)
	if cacheFile != "" {
		// Persisting is best effort; lighting works without it.
		_ = saveBakedIrradiance(cacheFile, env.irradiance)
	}
	return env, nil
}

// bakeKey derives a cache file name from the source path and modification
// time, so edited files re-bake.
func (e *Environment) bakeKey() string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.sourcePath))
	if fi, err := os.Stat(e.sourcePath); err == nil {
		_, _ = fmt.Fprintf(h, "|%d|%d", fi.Size(), fi.ModTime().UnixNano())
	}
	return fmt.Sprintf("irradiance-%016x.png", h.Sum64())
}

// dirToEquirect maps a direction to equirectangular (u, v), v growing
// downward from the zenith.
func dirToEquirect(dir mgl32.Vec3) (float32, float32) {
	d := dir.Normalize()
	u := 0.5 + math32.Atan2(d.Z(), d.X())/(2*math32.Pi)
	v := math32.Acos(clamp(d.Y(), -1, 1)) / math32.Pi
	return u, v
}

// SampleSky returns the environment color seen along dir.
func (e *Environment) SampleSky(dir mgl32.Vec3) Color {
	u, v := dirToEquirect(dir)
	c, _ := e.sky.Sample(u, v)
	return c
}

// SampleIrradiance returns the diffuse (cosine-weighted) incoming light for
// a surface normal.
func (e *Environment) SampleIrradiance(normal mgl32.Vec3) Color {
	u, v := dirToEquirect(normal)
	c, _ := e.irradiance.Sample(u, v)
	return c
}

// bakeIrradiance convolves the sky with a cosine lobe on a coarse sphere
// sampling grid.
func bakeIrradiance(sky *Texture) *Texture {
	out := &Texture{W: irradianceW, H: irradianceH}
	out.Pix = make([]float32, out.W*out.H*4)

	// Pre-sample the sky on a fixed grid so the n*m inner loop stays
	// cheap even for large inputs.
	const sampleW, sampleH = 64, 32
	type sample struct {
		dir    mgl32.Vec3
		color  Color
		weight float32 // solid angle of the texel row
	}
	samples := make([]sample, 0, sampleW*sampleH)
	for y := 0; y < sampleH; y++ {
		theta := (float32(y) + 0.5) / sampleH * math32.Pi
		sinT, cosT := math32.Sincos(theta)
		for x := 0; x < sampleW; x++ {
			phi := (float32(x) + 0.5) / sampleW * 2 * math32.Pi
			sinP, cosP := math32.Sincos(phi)
			dir := mgl32.Vec3{sinT * cosP, cosT, sinT * sinP}
			c, _ := sky.Sample(float32(x)/sampleW, float32(y)/sampleH)
			samples = append(samples, sample{dir: dir, color: c, weight: sinT})
		}
	}

	i := 0
	for y := 0; y < out.H; y++ {
		theta := (float32(y) + 0.5) / float32(out.H) * math32.Pi
		sinT, cosT := math32.Sincos(theta)
		for x := 0; x < out.W; x++ {
			phi := (float32(x) + 0.5) / float32(out.W) * 2 * math32.Pi
			sinP, cosP := math32.Sincos(phi)
			normal := mgl32.Vec3{sinT * cosP, cosT, sinT * sinP}

			var acc Color
			var wsum float32
			for _, s := range samples {
				cos := normal.Dot(s.dir)
				if cos <= 0 {
					continue
				}
				w := cos * s.weight
				acc = acc.Add(s.color.Mul(w))
				wsum += w
			}
			if wsum > 0 {
				acc = acc.Mul(1 / wsum)
			}
			out.Pix[i+0] = acc.R
			out.Pix[i+1] = acc.G
			out.Pix[i+2] = acc.B
			out.Pix[i+3] = 1
			i += 4
		}
	}
	return out
}

// saveBakedIrradiance writes the map as an 8-bit sRGB PNG. Precision loss
// is acceptable for a diffuse term.
func saveBakedIrradiance(path string, t *Texture) error {
	img := image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	for i := 0; i < t.W*t.H; i++ {
		img.Pix[i*4+0] = linearToSRGB(t.Pix[i*4+0])
		img.Pix[i*4+1] = linearToSRGB(t.Pix[i*4+1])
		img.Pix[i*4+2] = linearToSRGB(t.Pix[i*4+2])
		img.Pix[i*4+3] = 255
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func loadBakedIrradiance(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return NewTextureFromImage(img), nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
