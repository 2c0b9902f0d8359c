package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/gogpu/view3d"
)

// Flags returns the full command line flag set. Defaults shown in the
// usage text match view3d.NewOptions; ApplyFlags only copies flags that
// were explicitly set, so a configuration file loaded beforehand keeps
// its values unless the command line overrides them.
func Flags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "enable debug logging",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "load settings from a JSON configuration `FILE`",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "render to an image `FILE` (png or bmp) instead of opening a window",
		},
		cli.BoolFlag{
			Name:  "no-background",
			Usage: "export with a transparent background (with --output)",
		},
		cli.BoolFlag{
			Name:  "bounds",
			Usage: "print the scene bounds and exit without rendering",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: "auto",
			Usage: "rendering surface to use (auto, none, software, gpu)",
		},
		cli.StringFlag{
			Name:  "resolution",
			Usage: "window size as `W,H` (default \"1000,600\")",
		},

		// Interaction.
		cli.BoolFlag{
			Name:  "axis, x",
			Usage: "show the axes widget",
		},
		cli.BoolFlag{
			Name:  "trackball, k",
			Usage: "use trackball camera interaction",
		},
		cli.BoolFlag{
			Name:  "invert-zoom",
			Usage: "invert the zoom direction",
		},

		// Scene.
		cli.StringFlag{
			Name:  "up",
			Usage: "scene up `DIRECTION` (e.g. +Y, -Z) (default \"+Y\")",
		},
		cli.BoolFlag{
			Name:  "camera-orthographic",
			Usage: "use an orthographic camera",
		},

		// Geometry representation.
		cli.BoolFlag{
			Name:  "grid, g",
			Usage: "show a grid under the scene",
		},
		cli.BoolFlag{
			Name:  "edges, e",
			Usage: "show cell edges",
		},
		cli.BoolFlag{
			Name:  "normals, n",
			Usage: "show point normals as glyphs",
		},
		cli.Float64Flag{
			Name:  "line-width",
			Value: 1,
			Usage: "width of lines and edges",
		},
		cli.Float64Flag{
			Name:  "point-size",
			Value: 10,
			Usage: "size of points and sprites",
		},

		// Background and lighting.
		cli.StringFlag{
			Name:  "bg-color",
			Usage: "background color as `R,G,B` in [0,1] (default \"0.2,0.2,0.2\")",
		},
		cli.BoolFlag{
			Name:  "blur-background",
			Usage: "blur the background (with --hdri --skybox)",
		},
		cli.Float64Flag{
			Name:  "light-intensity",
			Value: 1,
			Usage: "adjust the intensity of every light",
		},
		cli.StringFlag{
			Name:  "hdri",
			Usage: "HDRI image `FILE` used for lighting and the skybox",
		},
		cli.BoolFlag{
			Name:  "hdri-ambient",
			Usage: "use the HDRI image for ambient lighting",
		},
		cli.BoolFlag{
			Name:  "skybox",
			Usage: "show the HDRI image as a skybox",
		},

		// Passes.
		cli.BoolFlag{
			Name:  "depth-peeling, d",
			Usage: "enable translucency support",
		},
		cli.BoolFlag{
			Name:  "fxaa, f",
			Usage: "enable FXAA anti-aliasing",
		},
		cli.BoolFlag{
			Name:  "ssao, u",
			Usage: "enable ambient occlusion",
		},
		cli.BoolFlag{
			Name:  "tone-mapping, t",
			Usage: "enable tone mapping",
		},
		cli.StringFlag{
			Name:  "final-shader",
			Usage: "name of a registered final shader pass",
		},

		// Raytracing.
		cli.BoolFlag{
			Name:  "raytracing, r",
			Usage: "render with the raytracer",
		},
		cli.IntFlag{
			Name:  "samples",
			Value: 5,
			Usage: "raytracing samples per pixel",
		},
		cli.BoolFlag{
			Name:  "denoise",
			Usage: "denoise the raytraced image",
		},

		// Model appearance.
		cli.StringFlag{
			Name:  "color",
			Usage: "surface color as `R,G,B` in [0,1] (default \"1,1,1\")",
		},
		cli.Float64Flag{
			Name:  "opacity",
			Value: 1,
			Usage: "surface opacity",
		},
		cli.Float64Flag{
			Name:  "roughness",
			Value: 0.3,
			Usage: "surface roughness",
		},
		cli.Float64Flag{
			Name:  "metallic",
			Usage: "surface metallic coefficient",
		},
		cli.BoolFlag{
			Name:  "point-sprites",
			Usage: "show sprites instead of the surface",
		},
		cli.BoolFlag{
			Name:  "volume",
			Usage: "show the data as a volume",
		},
		cli.BoolFlag{
			Name:  "inverse",
			Usage: "invert the volume opacity function",
		},

		// Scalar coloring.
		cli.StringFlag{
			Name:  "scalars",
			Usage: "color by the named point or cell `ARRAY`",
		},
		cli.IntFlag{
			Name:  "comp",
			Value: -1,
			Usage: "array component to color by (-1 for magnitude)",
		},
		cli.BoolFlag{
			Name:  "cells",
			Usage: "color by cell data instead of point data",
		},
		cli.StringFlag{
			Name:  "range",
			Usage: "coloring range as `MIN,MAX`",
		},
		cli.StringFlag{
			Name:  "colormap",
			Usage: "custom colormap as `VAL,R,G,B,...` quadruplets",
		},
		cli.BoolFlag{
			Name:  "hide-bar, b",
			Usage: "hide the scalar bar",
		},

		// UI.
		cli.BoolFlag{
			Name:  "fps, z",
			Usage: "show a frames per second counter",
		},
		cli.BoolFlag{
			Name:  "filename",
			Usage: "show the file name",
		},
		cli.BoolFlag{
			Name:  "metadata, m",
			Usage: "show scene metadata",
		},
		cli.StringFlag{
			Name:  "font-file",
			Usage: "opentype font `FILE` for UI text",
		},
	}
}

// ApplyFlags copies explicitly set command line flags onto the options.
// Flags left at their default are skipped so values from a configuration
// file survive.
func ApplyFlags(c *cli.Context, o *view3d.Options) error {
	if c.IsSet("axis") {
		o.Interactor.Axis = c.Bool("axis")
	}
	if c.IsSet("trackball") {
		o.Interactor.Trackball = c.Bool("trackball")
	}
	if c.IsSet("invert-zoom") {
		o.Interactor.InvertZoom = c.Bool("invert-zoom")
	}

	if c.IsSet("up") {
		o.Scene.UpDirection = c.String("up")
	}
	if c.IsSet("camera-orthographic") {
		o.Scene.Camera.Orthographic = c.Bool("camera-orthographic")
	}

	if c.IsSet("grid") {
		o.Render.Grid.Enable = c.Bool("grid")
	}
	if c.IsSet("edges") {
		o.Render.ShowEdges = c.Bool("edges")
	}
	if c.IsSet("normals") {
		o.Render.ShowNormals = c.Bool("normals")
	}
	if c.IsSet("line-width") {
		o.Render.LineWidth = c.Float64("line-width")
	}
	if c.IsSet("point-size") {
		o.Render.PointSize = c.Float64("point-size")
	}

	if c.IsSet("bg-color") {
		rgb, err := parseFloats(c.String("bg-color"), 3)
		if err != nil {
			return fmt.Errorf("config: flag bg-color: %w", err)
		}
		copy(o.Render.Background.Color[:], rgb)
	}
	if c.IsSet("blur-background") {
		o.Render.Background.Blur = c.Bool("blur-background")
	}
	if c.IsSet("light-intensity") {
		o.Render.Light.Intensity = c.Float64("light-intensity")
	}
	if c.IsSet("hdri") {
		o.Render.HDRI.File = c.String("hdri")
	}
	if c.IsSet("hdri-ambient") {
		o.Render.HDRI.Ambient = c.Bool("hdri-ambient")
	}
	if c.IsSet("skybox") {
		o.Render.Background.Skybox = c.Bool("skybox")
	}

	if c.IsSet("depth-peeling") {
		o.Render.Effect.TranslucencySupport = c.Bool("depth-peeling")
	}
	if c.IsSet("fxaa") {
		o.Render.Effect.AntiAliasing = c.Bool("fxaa")
	}
	if c.IsSet("ssao") {
		o.Render.Effect.AmbientOcclusion = c.Bool("ssao")
	}
	if c.IsSet("tone-mapping") {
		o.Render.Effect.ToneMapping = c.Bool("tone-mapping")
	}
	if c.IsSet("final-shader") {
		o.Render.Effect.FinalShader = c.String("final-shader")
	}

	if c.IsSet("raytracing") {
		o.Render.Raytracing.Enable = c.Bool("raytracing")
	}
	if c.IsSet("samples") {
		o.Render.Raytracing.Samples = c.Int("samples")
	}
	if c.IsSet("denoise") {
		o.Render.Raytracing.Denoise = c.Bool("denoise")
	}

	if c.IsSet("color") {
		rgb, err := parseFloats(c.String("color"), 3)
		if err != nil {
			return fmt.Errorf("config: flag color: %w", err)
		}
		copy(o.Model.Color.RGB[:], rgb)
	}
	if c.IsSet("opacity") {
		o.Model.Color.Opacity = c.Float64("opacity")
	}
	if c.IsSet("roughness") {
		o.Model.Material.Roughness = c.Float64("roughness")
	}
	if c.IsSet("metallic") {
		o.Model.Material.Metallic = c.Float64("metallic")
	}
	if c.IsSet("point-sprites") {
		o.Model.PointSprites.Enable = c.Bool("point-sprites")
	}
	if c.IsSet("volume") {
		o.Model.Volume.Enable = c.Bool("volume")
	}
	if c.IsSet("inverse") {
		o.Model.Volume.Inverse = c.Bool("inverse")
	}

	if c.IsSet("scalars") {
		o.Model.Scivis.Enable = true
		o.Model.Scivis.ArrayName = c.String("scalars")
	}
	if c.IsSet("comp") {
		o.Model.Scivis.Component = c.Int("comp")
	}
	if c.IsSet("cells") {
		o.Model.Scivis.Cells = c.Bool("cells")
	}
	if c.IsSet("range") {
		r, err := parseFloats(c.String("range"), 2)
		if err != nil {
			return fmt.Errorf("config: flag range: %w", err)
		}
		o.Model.Scivis.Range = r
	}
	if c.IsSet("colormap") {
		cm, err := parseFloats(c.String("colormap"), 0)
		if err != nil {
			return fmt.Errorf("config: flag colormap: %w", err)
		}
		if len(cm) == 0 || len(cm)%4 != 0 {
			return fmt.Errorf("config: flag colormap: need value,r,g,b quadruplets, got %d numbers", len(cm))
		}
		o.Model.Scivis.Colormap = cm
	}
	if c.IsSet("hide-bar") {
		o.UI.ScalarBar = !c.Bool("hide-bar")
	}

	if c.IsSet("fps") {
		o.UI.FPS = c.Bool("fps")
	}
	if c.IsSet("filename") {
		o.UI.Filename = c.Bool("filename")
	}
	if c.IsSet("metadata") {
		o.UI.Metadata = c.Bool("metadata")
	}
	if c.IsSet("font-file") {
		o.UI.FontFile = c.String("font-file")
	}
	return nil
}

// ParseResolution parses a "W,H" string into a window size.
func ParseResolution(s string) (w, h int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("config: resolution: need W,H, got %q", s)
	}
	w, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("config: resolution: %w", err)
	}
	h, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("config: resolution: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("config: resolution: need positive W,H, got %q", s)
	}
	return w, h, nil
}

// parseFloats splits a comma separated list of numbers. want restricts
// the count; zero accepts any length.
func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if want > 0 && len(parts) != want {
		return nil, fmt.Errorf("need %d comma separated numbers, got %q", want, s)
	}
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
