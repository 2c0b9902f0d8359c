// Package config loads viewer settings from JSON files and the command
// line and applies them onto view3d options.
//
// All File fields are pointers: a key absent from the document leaves the
// corresponding option untouched, so files can override just a few
// settings. Loading failures are distinguished from everything else by
// ErrLoad; callers treat them as non-fatal and decide whether to continue.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/view3d"
)

// ErrLoad is the distinguished configuration failure: the file could not
// be read or parsed. Load errors unwrap to it.
var ErrLoad = errors.New("config: file not loaded")

// LoadError reports why a configuration file could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: load %s: %v", e.Path, e.Err)
}

// Unwrap makes the error match ErrLoad.
func (e *LoadError) Unwrap() error { return ErrLoad }

// File is one JSON configuration document. Keys match the long command
// line flag names.
type File struct {
	// Interaction.
	Axis       *bool `json:"axis,omitempty"`
	Trackball  *bool `json:"trackball,omitempty"`
	InvertZoom *bool `json:"invert-zoom,omitempty"`

	// Window.
	Resolution *[2]int `json:"resolution,omitempty"`

	// Scene.
	Up                 *string `json:"up,omitempty"`
	CameraOrthographic *bool   `json:"camera-orthographic,omitempty"`

	// Geometry representation.
	Grid      *bool    `json:"grid,omitempty"`
	Normals   *bool    `json:"normals,omitempty"`
	Edges     *bool    `json:"edges,omitempty"`
	LineWidth *float64 `json:"line-width,omitempty"`
	PointSize *float64 `json:"point-size,omitempty"`

	// Background and lighting.
	BgColor        *[3]float64 `json:"bg-color,omitempty"`
	BlurBackground *bool       `json:"blur-background,omitempty"`
	LightIntensity *float64    `json:"light-intensity,omitempty"`
	HDRI           *string     `json:"hdri,omitempty"`
	HDRIAmbient    *bool       `json:"hdri-ambient,omitempty"`
	Skybox         *bool       `json:"skybox,omitempty"`

	// Passes.
	DepthPeeling *bool   `json:"depth-peeling,omitempty"`
	FXAA         *bool   `json:"fxaa,omitempty"`
	SSAO         *bool   `json:"ssao,omitempty"`
	ToneMapping  *bool   `json:"tone-mapping,omitempty"`
	FinalShader  *string `json:"final-shader,omitempty"`

	// Raytracing.
	Raytracing *bool `json:"raytracing,omitempty"`
	Samples    *int  `json:"samples,omitempty"`
	Denoise    *bool `json:"denoise,omitempty"`

	// Model appearance.
	Color        *[3]float64 `json:"color,omitempty"`
	Opacity      *float64    `json:"opacity,omitempty"`
	Roughness    *float64    `json:"roughness,omitempty"`
	Metallic     *float64    `json:"metallic,omitempty"`
	PointSprites *bool       `json:"point-sprites,omitempty"`
	Volume       *bool       `json:"volume,omitempty"`
	Inverse      *bool       `json:"inverse,omitempty"`

	// Scalar coloring.
	Scalars  *string     `json:"scalars,omitempty"`
	Comp     *int        `json:"comp,omitempty"`
	Cells    *bool       `json:"cells,omitempty"`
	Range    *[2]float64 `json:"range,omitempty"`
	Colormap []float64   `json:"colormap,omitempty"`
	HideBar  *bool       `json:"hide-bar,omitempty"`

	// UI.
	FPS      *bool   `json:"fps,omitempty"`
	Filename *bool   `json:"filename,omitempty"`
	Metadata *bool   `json:"metadata,omitempty"`
	FontFile *string `json:"font-file,omitempty"`
}

// LoadFile reads and parses one JSON configuration file. Unreadable or
// unparsable files yield a *LoadError unwrapping to ErrLoad; the caller
// decides whether to continue without it.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &f, nil
}

// Apply copies every present field onto the options. Absent fields leave
// the options unchanged.
func (f *File) Apply(o *view3d.Options) {
	if f.Axis != nil {
		o.Interactor.Axis = *f.Axis
	}
	if f.Trackball != nil {
		o.Interactor.Trackball = *f.Trackball
	}
	if f.InvertZoom != nil {
		o.Interactor.InvertZoom = *f.InvertZoom
	}

	if f.Up != nil {
		o.Scene.UpDirection = *f.Up
	}
	if f.CameraOrthographic != nil {
		o.Scene.Camera.Orthographic = *f.CameraOrthographic
	}

	if f.Grid != nil {
		o.Render.Grid.Enable = *f.Grid
	}
	if f.Normals != nil {
		o.Render.ShowNormals = *f.Normals
	}
	if f.Edges != nil {
		o.Render.ShowEdges = *f.Edges
	}
	if f.LineWidth != nil {
		o.Render.LineWidth = *f.LineWidth
	}
	if f.PointSize != nil {
		o.Render.PointSize = *f.PointSize
	}

	if f.BgColor != nil {
		o.Render.Background.Color = *f.BgColor
	}
	if f.BlurBackground != nil {
		o.Render.Background.Blur = *f.BlurBackground
	}
	if f.LightIntensity != nil {
		o.Render.Light.Intensity = *f.LightIntensity
	}
	if f.HDRI != nil {
		o.Render.HDRI.File = *f.HDRI
	}
	if f.HDRIAmbient != nil {
		o.Render.HDRI.Ambient = *f.HDRIAmbient
	}
	if f.Skybox != nil {
		o.Render.Background.Skybox = *f.Skybox
	}

	if f.DepthPeeling != nil {
		o.Render.Effect.TranslucencySupport = *f.DepthPeeling
	}
	if f.FXAA != nil {
		o.Render.Effect.AntiAliasing = *f.FXAA
	}
	if f.SSAO != nil {
		o.Render.Effect.AmbientOcclusion = *f.SSAO
	}
	if f.ToneMapping != nil {
		o.Render.Effect.ToneMapping = *f.ToneMapping
	}
	if f.FinalShader != nil {
		o.Render.Effect.FinalShader = *f.FinalShader
	}

	if f.Raytracing != nil {
		o.Render.Raytracing.Enable = *f.Raytracing
	}
	if f.Samples != nil {
		o.Render.Raytracing.Samples = *f.Samples
	}
	if f.Denoise != nil {
		o.Render.Raytracing.Denoise = *f.Denoise
	}

	if f.Color != nil {
		o.Model.Color.RGB = *f.Color
	}
	if f.Opacity != nil {
		o.Model.Color.Opacity = *f.Opacity
	}
	if f.Roughness != nil {
		o.Model.Material.Roughness = *f.Roughness
	}
	if f.Metallic != nil {
		o.Model.Material.Metallic = *f.Metallic
	}
	if f.PointSprites != nil {
		o.Model.PointSprites.Enable = *f.PointSprites
	}
	if f.Volume != nil {
		o.Model.Volume.Enable = *f.Volume
	}
	if f.Inverse != nil {
		o.Model.Volume.Inverse = *f.Inverse
	}

	if f.Scalars != nil {
		o.Model.Scivis.Enable = true
		o.Model.Scivis.ArrayName = *f.Scalars
	}
	if f.Comp != nil {
		o.Model.Scivis.Component = *f.Comp
	}
	if f.Cells != nil {
		o.Model.Scivis.Cells = *f.Cells
	}
	if f.Range != nil {
		o.Model.Scivis.Range = []float64{f.Range[0], f.Range[1]}
	}
	if f.Colormap != nil {
		o.Model.Scivis.Colormap = f.Colormap
	}
	if f.HideBar != nil {
		o.UI.ScalarBar = !*f.HideBar
	}

	if f.FPS != nil {
		o.UI.FPS = *f.FPS
	}
	if f.Filename != nil {
		o.UI.Filename = *f.Filename
	}
	if f.Metadata != nil {
		o.UI.Metadata = *f.Metadata
	}
	if f.FontFile != nil {
		o.UI.FontFile = *f.FontFile
	}
}
