// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"

	"github.com/gogpu/view3d/cache"
	"github.com/gogpu/view3d/scene"
)

// Backface visibility modes accepted by SetBackfaceType.
const (
	BackfaceDefault = "default"
	BackfaceVisible = "visible"
	BackfaceHidden  = "hidden"
)

// Point sprite styles accepted by SetPointSpritesProperties.
const (
	SpriteSphere   = "sphere"
	SpriteGaussian = "gaussian"
)

// Renderer rasterizes or path-traces a scene into a framebuffer and draws
// the UI overlays. It carries every dynamic display option; the option
// synchronizer pushes values into it before each frame.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	scn *scene.Scene
	cam *Camera

	// Interaction hints, read back by the interactor.
	showAxis     bool
	useTrackball bool
	invertZoom   bool

	// Geometry representation.
	usePointSprites  bool
	pointSpritesType string
	pointSpritesSize float32
	lineWidth        float32
	pointSize        float32
	showEdges        bool
	showNormals      bool

	// Supersampling grid derived from the multisample count. Windows
	// force it to zero and rely on the FXAA pass instead.
	multiSamples int

	// Text and UI furniture.
	showTimer         bool
	showFilename      bool
	filenameInfo      string
	showMetaData      bool
	showCheatSheet    bool
	cheatSheet        []string
	showDropZone      bool
	dropZoneInfo      string
	animationNameInfo string

	// Raytracing.
	useRaytracing     bool
	raytracingSamples int
	useDenoiser       bool

	// Passes.
	useSSAO         bool
	useFXAA         bool
	useToneMapping  bool
	useDepthPeeling bool
	backfaceType    string
	finalShader     string

	// Background and lights.
	background        Color
	backgroundAlpha   float32
	useBlurBackground bool
	blurCoC           float32
	lightIntensity    float32
	lights            []Light

	// Image-based lighting.
	hdriFile   string
	useIBL     bool
	showSkybox bool
	env        *Environment
	envKey     string

	// Overlay font.
	fontFile string
	face     font.Face
	faceKey  string

	// Grid.
	showGrid         bool
	gridUnitSquare   float32
	gridSubdivisions int
	gridAbsolute     bool
	gridColor        Color

	useOrthographic bool

	// Material.
	surfaceColor     Color
	opacity          float32
	textureBaseColor string
	roughness        float32
	metallic         float32
	textureMaterial  string
	textureEmissive  string
	emissiveFactor   Color
	textureNormal    string
	normalScale      float32
	textureMatCap    string

	// Scalar coloring.
	enableColoring    bool
	useCellColoring   bool
	coloringArray     string
	coloringComponent int
	scalarBarRange    []float64
	colormapQuads     []float64
	showScalarBar     bool

	// Volume toggles are accepted but mesh scenes cannot honor them.
	useVolume          bool
	useInverseOpacity  bool
	volumeWarned       bool
	finalShaderWarned  string
	missingTexWarned   map[string]bool
	coloringWarnedName string

	cachePath string

	// Derived coloring state, rebuilt by UpdateActors.
	cmap          *Colormap
	activeArray   string
	activeRange   [2]float32
	coloringReady bool

	textures *cache.Sharded[string, *Texture]

	rt      *rtScene
	rtDirty bool

	lastFrame time.Duration
}

// NewRenderer returns a renderer with the standard defaults: light gray
// background, white surface, moderate roughness and a 10x10 grid.
func NewRenderer() *Renderer {
	return &Renderer{
		cam:               NewCamera(),
		pointSpritesType:  SpriteSphere,
		pointSpritesSize:  10,
		lineWidth:         1,
		pointSize:         10,
		raytracingSamples: 5,
		backfaceType:      BackfaceDefault,
		background:        Color{0.2, 0.2, 0.2},
		backgroundAlpha:   1,
		blurCoC:           20,
		lightIntensity:    1,
		gridSubdivisions:  10,
		gridColor:         Color{0, 0, 0},
		surfaceColor:      Color{1, 1, 1},
		opacity:           1,
		roughness:         0.3,
		emissiveFactor:    Color{1, 1, 1},
		normalScale:       1,
		coloringComponent: -1,
		textures:          cache.NewSharded[string, *Texture](0, cache.StringHasher),
		missingTexWarned:  map[string]bool{},
		rtDirty:           true,
	}
}

// SetScene replaces the rendered scene.
func (r *Renderer) SetScene(s *scene.Scene) {
	r.scn = s
	r.rtDirty = true
}

// Scene returns the rendered scene, possibly nil.
func (r *Renderer) Scene() *scene.Scene { return r.scn }

// Camera returns the renderer camera.
func (r *Renderer) Camera() *Camera { return r.cam }

// ShowAxis toggles the orientation axes gizmo.
func (r *Renderer) ShowAxis(show bool) { r.showAxis = show }

// AxisVisible reports whether the axes gizmo is shown.
func (r *Renderer) AxisVisible() bool { return r.showAxis }

// SetUseTrackball selects the trackball interaction style.
func (r *Renderer) SetUseTrackball(use bool) { r.useTrackball = use }

// UseTrackball reports the interaction style hint.
func (r *Renderer) UseTrackball() bool { return r.useTrackball }

// SetInvertZoom inverts the zoom direction for wheel and drag gestures.
func (r *Renderer) SetInvertZoom(invert bool) { r.invertZoom = invert }

// InvertZoom reports whether zoom gestures are inverted.
func (r *Renderer) InvertZoom() bool { return r.invertZoom }

// SetPointSpritesProperties selects the splat type and world-space size
// used when point sprites are enabled.
func (r *Renderer) SetPointSpritesProperties(splatType string, size float64) {
	if splatType != SpriteGaussian {
		splatType = SpriteSphere
	}
	r.pointSpritesType = splatType
	if size > 0 {
		r.pointSpritesSize = float32(size)
	}
}

// SetLineWidth sets the width for line cells and edges, in pixels.
func (r *Renderer) SetLineWidth(w float64) {
	if w > 0 {
		r.lineWidth = float32(w)
	}
}

// SetPointSize sets the pixel size of plain (non-sprite) points.
func (r *Renderer) SetPointSize(s float64) {
	if s > 0 {
		r.pointSize = float32(s)
	}
}

// ShowEdge toggles mesh edge rendering.
func (r *Renderer) ShowEdge(show bool) { r.showEdges = show }

// ShowNormal toggles per-vertex normal glyphs, drawn as short lines along
// each normal, sized relative to the scene.
func (r *Renderer) ShowNormal(show bool) { r.showNormals = show }

// SetMultiSamples sets the antialiasing sample count. Counts of 4 and
// above rasterize on a supersampled buffer that is box-filtered down;
// zero disables. Ignored by the path tracer, which antialiases through
// its per-pixel samples.
func (r *Renderer) SetMultiSamples(n int) {
	if n < 0 {
		n = 0
	}
	r.multiSamples = n
}

// sampleFactor maps the multisample count to a square supersampling grid.
func (r *Renderer) sampleFactor() int {
	switch {
	case r.multiSamples >= 16:
		return 4
	case r.multiSamples >= 4:
		return 2
	default:
		return 1
	}
}

// ShowTimer toggles the frames-per-second counter.
func (r *Renderer) ShowTimer(show bool) { r.showTimer = show }

// ShowFilename toggles the filename line in the top-left corner.
func (r *Renderer) ShowFilename(show bool) { r.showFilename = show }

// SetFilenameInfo sets the text shown by ShowFilename.
func (r *Renderer) SetFilenameInfo(info string) { r.filenameInfo = info }

// ShowMetaData toggles the scene metadata block.
func (r *Renderer) ShowMetaData(show bool) { r.showMetaData = show }

// ShowCheatSheet toggles the interaction help block.
func (r *Renderer) ShowCheatSheet(show bool) { r.showCheatSheet = show }

// SetCheatSheetInfo replaces the help lines shown by ShowCheatSheet.
func (r *Renderer) SetCheatSheetInfo(lines []string) { r.cheatSheet = lines }

// ShowDropZone toggles the drag-and-drop hint frame.
func (r *Renderer) ShowDropZone(show bool) { r.showDropZone = show }

// SetDropZoneInfo sets the hint text inside the drop zone.
func (r *Renderer) SetDropZoneInfo(info string) { r.dropZoneInfo = info }

// SetAnimationNameInfo sets the animation name shown at the top of the
// viewport during playback.
func (r *Renderer) SetAnimationNameInfo(name string) { r.animationNameInfo = name }

// SetUseRaytracing switches between the rasterizer and the path tracer.
func (r *Renderer) SetUseRaytracing(use bool) { r.useRaytracing = use }

// SetRaytracingSamples sets the per-pixel sample count of the path tracer.
func (r *Renderer) SetRaytracingSamples(n int) {
	if n > 0 {
		r.raytracingSamples = n
	}
}

// SetUseRaytracingDenoiser toggles denoising of path-traced frames.
func (r *Renderer) SetUseRaytracingDenoiser(use bool) { r.useDenoiser = use }

// SetUseSSAOPass toggles screen-space ambient occlusion.
func (r *Renderer) SetUseSSAOPass(use bool) { r.useSSAO = use }

// SetUseFXAAPass toggles the antialiasing pass.
func (r *Renderer) SetUseFXAAPass(use bool) { r.useFXAA = use }

// SetUseToneMappingPass toggles filmic tone mapping.
func (r *Renderer) SetUseToneMappingPass(use bool) { r.useToneMapping = use }

// SetUseDepthPeelingPass requests order-independent translucency: the
// translucent queue is depth-sorted back to front before compositing.
func (r *Renderer) SetUseDepthPeelingPass(use bool) { r.useDepthPeeling = use }

// SetBackfaceType selects backface handling: "default", "visible" or
// "hidden". Unknown values fall back to "default".
func (r *Renderer) SetBackfaceType(t string) {
	switch t {
	case BackfaceVisible, BackfaceHidden:
		r.backfaceType = t
	default:
		r.backfaceType = BackfaceDefault
	}
}

// SetFinalShader selects a registered final-shader hook by name, empty to
// disable.
func (r *Renderer) SetFinalShader(name string) { r.finalShader = name }

// SetBackground sets the solid background color.
func (r *Renderer) SetBackground(c Color) { r.background = c }

// Background returns the current background color.
func (r *Renderer) Background() Color { return r.background }

// SetBackgroundAlpha sets the alpha the background clears to. Image export
// without background uses zero.
func (r *Renderer) SetBackgroundAlpha(a float32) { r.backgroundAlpha = clamp01(a) }

// SetUseBlurBackground toggles blurring of background pixels.
func (r *Renderer) SetUseBlurBackground(use bool) { r.useBlurBackground = use }

// SetBlurCircleOfConfusionRadius sets the blur strength in pixels.
func (r *Renderer) SetBlurCircleOfConfusionRadius(radius float64) {
	if radius > 0 {
		r.blurCoC = float32(radius)
	}
}

// SetLightIntensity scales every scene light.
func (r *Renderer) SetLightIntensity(intensity float64) {
	if intensity >= 0 {
		r.lightIntensity = float32(intensity)
	}
}

// SetHDRIFile sets the equirectangular environment image path. The file is
// loaded lazily on the next frame.
func (r *Renderer) SetHDRIFile(path string) { r.hdriFile = path }

// SetUseImageBasedLighting lights surfaces from the environment map.
func (r *Renderer) SetUseImageBasedLighting(use bool) { r.useIBL = use }

// ShowHDRISkybox draws the environment map behind the scene.
func (r *Renderer) ShowHDRISkybox(show bool) { r.showSkybox = show }

// SetFontFile sets an OpenType font for overlays, empty for the built-in
// bitmap face.
func (r *Renderer) SetFontFile(path string) { r.fontFile = path }

// SetGridUnitSquare sets the edge length of one grid square in world units.
// Zero or negative derives it from the scene size.
func (r *Renderer) SetGridUnitSquare(unit float64) { r.gridUnitSquare = float32(unit) }

// SetGridSubdivisions sets the number of squares per grid side.
func (r *Renderer) SetGridSubdivisions(n int) {
	if n > 0 {
		r.gridSubdivisions = n
	}
}

// SetGridAbsolute anchors the grid at the world origin instead of under the
// scene bounds.
func (r *Renderer) SetGridAbsolute(absolute bool) { r.gridAbsolute = absolute }

// ShowGrid toggles the floor grid.
func (r *Renderer) ShowGrid(show bool) { r.showGrid = show }

// SetGridColor sets the grid line color.
func (r *Renderer) SetGridColor(c Color) { r.gridColor = c }

// SetUseOrthographicProjection switches the camera projection. Only applied
// when no explicit camera index pins the projection.
func (r *Renderer) SetUseOrthographicProjection(use bool) {
	r.useOrthographic = use
	r.cam.Orthographic = use
	if use && r.cam.OrthoScale <= 0 {
		r.cam.OrthoScale = 1
	}
}

// SetSurfaceColor sets the base surface color.
func (r *Renderer) SetSurfaceColor(c Color) { r.surfaceColor = c; r.rtDirty = true }

// SetOpacity sets the surface opacity in [0,1].
func (r *Renderer) SetOpacity(o float64) {
	r.opacity = clamp01(float32(o))
	r.rtDirty = true
}

// SetTextureBaseColor sets the albedo texture path, empty to disable.
func (r *Renderer) SetTextureBaseColor(path string) { r.textureBaseColor = path; r.rtDirty = true }

// SetRoughness sets the material roughness in [0,1].
func (r *Renderer) SetRoughness(v float64) { r.roughness = clamp01(float32(v)); r.rtDirty = true }

// SetMetallic sets the material metallic factor in [0,1].
func (r *Renderer) SetMetallic(v float64) { r.metallic = clamp01(float32(v)); r.rtDirty = true }

// SetTextureMaterial sets the occlusion/roughness/metallic texture path.
func (r *Renderer) SetTextureMaterial(path string) { r.textureMaterial = path; r.rtDirty = true }

// SetTextureEmissive sets the emissive texture path.
func (r *Renderer) SetTextureEmissive(path string) { r.textureEmissive = path; r.rtDirty = true }

// SetEmissiveFactor scales the emissive texture.
func (r *Renderer) SetEmissiveFactor(c Color) { r.emissiveFactor = c; r.rtDirty = true }

// SetTextureNormal sets the tangent-space normal texture path.
func (r *Renderer) SetTextureNormal(path string) { r.textureNormal = path }

// SetNormalScale scales the normal texture perturbation.
func (r *Renderer) SetNormalScale(v float64) { r.normalScale = float32(v) }

// SetTextureMatCap sets a material capture texture; when set it replaces
// lighting entirely.
func (r *Renderer) SetTextureMatCap(path string) { r.textureMatCap = path }

// SetEnableColoring toggles scalar coloring.
func (r *Renderer) SetEnableColoring(enable bool) { r.enableColoring = enable; r.rtDirty = true }

// SetUseCellColoring colors by cell data instead of point data.
func (r *Renderer) SetUseCellColoring(use bool) { r.useCellColoring = use; r.rtDirty = true }

// SetArrayNameForColoring selects the data array used for coloring. An
// empty name picks the first available array.
func (r *Renderer) SetArrayNameForColoring(name string) { r.coloringArray = name; r.rtDirty = true }

// ArrayNameForColoring returns the resolved coloring array name.
func (r *Renderer) ArrayNameForColoring() string { return r.activeArray }

// ColoringInfo reports the resolved coloring state: the active array name,
// the color range in use and whether coloring is live for this scene.
func (r *Renderer) ColoringInfo() (array string, rng [2]float32, active bool) {
	return r.activeArray, r.activeRange, r.coloringReady
}

// SetComponentForColoring selects the array component, -1 for magnitude.
func (r *Renderer) SetComponentForColoring(comp int) { r.coloringComponent = comp; r.rtDirty = true }

// SetScalarBarRange overrides the color range with [min, max]. Any other
// length restores the automatic data range.
func (r *Renderer) SetScalarBarRange(rng []float64) { r.scalarBarRange = rng; r.rtDirty = true }

// SetColormap replaces the colormap from flat (value, r, g, b) quads.
func (r *Renderer) SetColormap(quads []float64) { r.colormapQuads = quads; r.rtDirty = true }

// ShowScalarBar toggles the colormap legend.
func (r *Renderer) ShowScalarBar(show bool) { r.showScalarBar = show }

// SetUsePointSprites renders geometry points as splats instead of surfaces.
func (r *Renderer) SetUsePointSprites(use bool) { r.usePointSprites = use; r.rtDirty = true }

// SetUseVolume requests volume rendering. Mesh scenes cannot be volume
// rendered; the request is remembered and a warning logged once.
func (r *Renderer) SetUseVolume(use bool) {
	r.useVolume = use
	if use && !r.volumeWarned {
		logger().Warn("volume rendering requires image data, option ignored for mesh scenes")
		r.volumeWarned = true
	}
}

// SetUseInverseOpacityFunction inverts the volume opacity transfer
// function. Stored for parity with SetUseVolume.
func (r *Renderer) SetUseInverseOpacityFunction(use bool) { r.useInverseOpacity = use }

// SetCachePath sets the directory for baked environment data.
func (r *Renderer) SetCachePath(dir string) { r.cachePath = dir }

// LastFrameTime returns the duration of the most recent Render call.
func (r *Renderer) LastFrameTime() time.Duration { return r.lastFrame }

// UpdateActors rebuilds derived per-geometry state: normals, the resolved
// coloring array, its range and the colormap. Called by the option
// synchronizer after every mutation batch.
func (r *Renderer) UpdateActors() {
	r.rtDirty = true
	r.coloringReady = false
	r.activeArray = ""
	if r.scn == nil {
		return
	}
	for _, m := range r.scn.Meshes {
		if len(m.Normals) == 0 && m.TriangleCount() > 0 {
			m.ComputeNormals()
		}
	}
	if !r.enableColoring {
		return
	}

	name := r.coloringArray
	if name == "" {
		if names := r.scn.FieldNames(); len(names) > 0 {
			name = names[0]
		}
	}
	if name == "" {
		return
	}
	lo, hi, ok := r.scn.FieldRange(name, r.coloringComponent, r.useCellColoring)
	if !ok {
		if r.coloringWarnedName != name {
			logger().Warn("coloring array not found", "array", name)
			r.coloringWarnedName = name
		}
		return
	}
	if len(r.scalarBarRange) == 2 {
		lo, hi = float32(r.scalarBarRange[0]), float32(r.scalarBarRange[1])
	}
	r.activeArray = name
	r.activeRange = [2]float32{lo, hi}
	r.cmap = NewColormap(r.colormapQuads)
	r.coloringReady = true
}

// UpdateLights rebuilds the light kit from the current camera: a key light
// behind the viewer above-right and a weaker fill from the opposite side.
func (r *Renderer) UpdateLights() {
	dir := r.cam.direction()
	up := r.cam.ViewUp
	right := dir.Cross(up)
	if right.Len() == 0 {
		right = mgl32.Vec3{1, 0, 0}
	} else {
		right = right.Normalize()
	}
	key := dir.Add(right.Mul(-0.4)).Add(up.Mul(-0.6)).Normalize()
	fill := dir.Add(right.Mul(0.5)).Add(up.Mul(0.3)).Normalize()
	r.lights = []Light{
		{Direction: key, Color: Color{1, 1, 1}, Intensity: 0.9 * r.lightIntensity},
		{Direction: fill, Color: Color{1, 1, 1}, Intensity: 0.35 * r.lightIntensity},
	}
}

// texture returns the cached decoded texture for path, nil when the path is
// empty or loading failed (failures are logged once).
func (r *Renderer) texture(path string) *Texture {
	if path == "" {
		return nil
	}
	return r.textures.GetOrCreate(path, func() *Texture {
		t, err := LoadTexture(path)
		if err != nil {
			if !r.missingTexWarned[path] {
				logger().Warn("cannot load texture", "path", path, "error", err)
				r.missingTexWarned[path] = true
			}
			return nil
		}
		return t
	})
}

// ensureEnvironment loads the HDRI lazily, keyed by path and cache dir.
func (r *Renderer) ensureEnvironment() {
	key := r.hdriFile + "\x00" + r.cachePath
	if key == r.envKey {
		return
	}
	r.envKey = key
	r.env = nil
	if r.hdriFile == "" {
		return
	}
	env, err := LoadEnvironment(r.hdriFile, r.cachePath)
	if err != nil {
		logger().Warn("cannot load environment", "path", r.hdriFile, "error", err)
		return
	}
	r.env = env
	r.rtDirty = true
}

// ensureFace loads the overlay font lazily.
func (r *Renderer) ensureFace() {
	if r.fontFile == r.faceKey {
		return
	}
	r.faceKey = r.fontFile
	r.face = nil
	if r.fontFile == "" {
		return
	}
	face, err := loadFace(r.fontFile, 13)
	if err != nil {
		logger().Warn("cannot load font", "path", r.fontFile, "error", err)
		return
	}
	r.face = face
}

// Render draws one frame into fb: background, geometry, passes, overlays.
func (r *Renderer) Render(fb *Framebuffer) {
	start := time.Now()

	r.ensureEnvironment()
	r.ensureFace()
	r.UpdateLights()

	// Geometry may rasterize on a supersampled buffer; post passes and
	// overlays always run at the target size.
	target := fb
	if f := r.sampleFactor(); f > 1 && !r.useRaytracing {
		target = NewFramebuffer(fb.W*f, fb.H*f)
	}

	target.Clear(r.background, r.backgroundAlpha)
	if r.env != nil && r.showSkybox && !r.useRaytracing {
		r.drawSkybox(target)
	}

	hasGeometry := r.scn != nil && len(r.scn.Meshes) > 0
	if hasGeometry && r.useRaytracing {
		r.ensureRTScene()
		renderRaytraced(fb, raytraceParams{
			scene:      r.rt,
			cam:        r.cam,
			lights:     r.lights,
			env:        r.env,
			background: r.background,
			showSkybox: r.showSkybox,
			samples:    r.raytracingSamples,
			denoise:    r.useDenoiser,
		})
	} else if hasGeometry {
		r.rasterScene(target)
	} else if r.showGrid {
		ras := newRasterizer(target, r.cam)
		r.drawGrid(ras)
	}

	if r.useSSAO && !r.useRaytracing {
		ssaoPass(target)
	}
	if target != fb {
		fb.DownsampleFrom(target)
	}
	if r.useBlurBackground {
		blurBackgroundPass(fb, r.blurCoC)
	}
	if r.useToneMapping {
		toneMapPass(fb)
	}
	if r.useFXAA {
		fxaaPass(fb)
	}
	if r.finalShader != "" {
		if fn, ok := LookupFinalShader(r.finalShader); ok {
			finalShaderPass(fb, fn)
		} else if r.finalShaderWarned != r.finalShader {
			logger().Warn("unknown final shader", "name", r.finalShader,
				"available", FinalShaderNames())
			r.finalShaderWarned = r.finalShader
		}
	}

	r.drawOverlays(fb)
	r.lastFrame = time.Since(start)
}

// drawSkybox fills every pixel with the environment color along its view
// ray. Geometry rendered afterwards overwrites it.
func (r *Renderer) drawSkybox(fb *Framebuffer) {
	viewInv := r.cam.ViewMatrix().Inv()
	projInv := r.cam.ProjectionMatrix(float32(fb.W) / float32(fb.H)).Inv()
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			ndc := mgl32.Vec4{
				(float32(x)+0.5)/float32(fb.W)*2 - 1,
				1 - (float32(y)+0.5)/float32(fb.H)*2,
				-1,
				1,
			}
			eye := projInv.Mul4x1(ndc)
			eye = mgl32.Vec4{eye.X() / eye.W(), eye.Y() / eye.W(), -1, 0}
			world := viewInv.Mul4x1(eye)
			dir := mgl32.Vec3{world.X(), world.Y(), world.Z()}.Normalize()
			c := r.env.SampleSky(dir)
			i := (y*fb.W + x) * 4
			fb.Pix[i+0] = c.R
			fb.Pix[i+1] = c.G
			fb.Pix[i+2] = c.B
			fb.Pix[i+3] = r.backgroundAlpha
		}
	}
}

// coloringField returns the mesh array selected for coloring, nil when
// coloring is off or the mesh lacks the array.
func (r *Renderer) coloringField(m *scene.Mesh) *scene.Field {
	if !r.coloringReady {
		return nil
	}
	if r.useCellColoring {
		return m.CellData[r.activeArray]
	}
	return m.PointData[r.activeArray]
}

// fieldScalar extracts the active component (or magnitude) of tuple i.
func (r *Renderer) fieldScalar(f *scene.Field, i int) float32 {
	if r.coloringComponent >= 0 && r.coloringComponent < f.Components {
		return f.Values[i*f.Components+r.coloringComponent]
	}
	var sq float32
	for _, c := range f.Tuple(i) {
		sq += c * c
	}
	return math32.Sqrt(sq)
}

func (r *Renderer) cullMode() cullMode {
	switch r.backfaceType {
	case BackfaceHidden:
		return cullBack
	default:
		return cullNone
	}
}

// rasterScene draws all meshes through the z-buffer pipeline.
func (r *Renderer) rasterScene(fb *Framebuffer) {
	ras := newRasterizer(fb, r.cam)
	ras.sortTranslucent = r.useDepthPeeling
	pv := ras.proj.Mul4(ras.view)
	translucent := r.opacity < 1

	for _, m := range r.scn.Meshes {
		field := r.coloringField(m)
		ras.hasScalar = field != nil
		shade := r.shadeFuncFor(m)
		model := m.Transform
		normalMat := model.Inv().Transpose()

		// Transformed positions and normals, shared by all cell kinds.
		verts := make([]vsOut, len(m.Positions))
		for i, p := range m.Positions {
			world := mgl32.TransformCoordinate(p, model)
			v := vsOut{
				clip:  pv.Mul4x1(world.Vec4(1)),
				world: world,
			}
			if i < len(m.Normals) {
				v.normal = mgl32.TransformNormal(m.Normals[i], normalMat)
			}
			if i < len(m.TexCoords) {
				v.uv = m.TexCoords[i]
			}
			if field != nil && !r.useCellColoring && i < field.Len() {
				v.scalar = r.fieldScalar(field, i)
			}
			verts[i] = v
		}

		pointsOnly := m.TriangleCount() == 0 && m.LineCount() == 0
		if r.usePointSprites || pointsOnly {
			r.drawPoints(ras, m, verts, shade)
		} else {
			cull := r.cullMode()
			for t := 0; t < m.TriangleCount(); t++ {
				v0 := verts[m.Triangles[t*3]]
				v1 := verts[m.Triangles[t*3+1]]
				v2 := verts[m.Triangles[t*3+2]]
				if field != nil && r.useCellColoring && t < field.Len() {
					s := r.fieldScalar(field, t)
					v0.scalar, v1.scalar, v2.scalar = s, s, s
				}
				ras.Triangle(v0, v1, v2, shade, translucent, cull)
			}
			if r.showEdges {
				edgeColor := Color{0, 0, 0}
				for t := 0; t < m.TriangleCount(); t++ {
					a := verts[m.Triangles[t*3]]
					b := verts[m.Triangles[t*3+1]]
					c := verts[m.Triangles[t*3+2]]
					ras.Line(a, b, edgeColor, r.lineWidth)
					ras.Line(b, c, edgeColor, r.lineWidth)
					ras.Line(c, a, edgeColor, r.lineWidth)
				}
			}
		}
		for l := 0; l < m.LineCount(); l++ {
			a := verts[m.Lines[l*2]]
			b := verts[m.Lines[l*2+1]]
			ras.Line(a, b, r.surfaceColor, r.lineWidth)
		}
		if r.showNormals {
			r.drawNormals(ras, m, verts, pv)
		}
	}

	if r.showGrid {
		r.drawGrid(ras)
	}
	ras.Flush()
}

// drawPoints renders mesh positions as sprites. The splat radius is the
// world sprite size projected to pixels, clamped for usability.
func (r *Renderer) drawPoints(ras *rasterizer, m *scene.Mesh, verts []vsOut, shade shadeFunc) {
	gaussian := r.pointSpritesType == SpriteGaussian
	size := r.pointSpritesSize
	if !r.usePointSprites {
		// Plain points use the fixed pixel size.
		for _, v := range verts {
			ras.PointSprite(v, r.pointSize/2, false, shade)
		}
		return
	}
	for _, v := range verts {
		w := v.clip.W()
		if w <= nearEpsilon {
			continue
		}
		// Project the world-space size at the point's depth.
		radius := size * float32(ras.fb.H) / (2 * w)
		if radius > 64 {
			radius = 64
		}
		ras.PointSprite(v, radius, gaussian, shade)
	}
}

// drawNormals renders one glyph line per vertex along its normal, scaled
// to a twentieth of the scene diagonal.
func (r *Renderer) drawNormals(ras *rasterizer, m *scene.Mesh, verts []vsOut, pv mgl32.Mat4) {
	glyphColor := Color{1, 1, 0}
	length := r.normalGlyphLength()
	for i := range verts {
		if i >= len(m.Normals) {
			break
		}
		n := verts[i].normal
		l := n.Len()
		if l == 0 {
			continue
		}
		tipWorld := verts[i].world.Add(n.Mul(length / l))
		tip := vsOut{clip: pv.Mul4x1(tipWorld.Vec4(1)), world: tipWorld}
		ras.Line(verts[i], tip, glyphColor, r.lineWidth)
	}
}

// normalGlyphLength derives the glyph size from the scene bounds.
func (r *Renderer) normalGlyphLength() float32 {
	diag := float32(2)
	if r.scn != nil {
		if b := r.scn.Bounds(); !b.Empty() && b.Diagonal() > 0 {
			diag = b.Diagonal()
		}
	}
	return diag * 0.05
}

// shadeFuncFor builds the per-fragment shading closure for a mesh with the
// current material options.
func (r *Renderer) shadeFuncFor(_ *scene.Mesh) shadeFunc {
	baseTex := r.texture(r.textureBaseColor)
	ormTex := r.texture(r.textureMaterial)
	emissiveTex := r.texture(r.textureEmissive)
	normalTex := r.texture(r.textureNormal)
	matcapTex := r.texture(r.textureMatCap)
	view := r.cam.ViewMatrix()

	return func(frag fragment) (Color, float32) {
		alpha := r.opacity
		albedo := r.surfaceColor
		if baseTex != nil {
			c, a := baseTex.Sample(frag.uv.X(), 1-frag.uv.Y())
			albedo = albedo.MulColor(c)
			alpha *= a
		}
		if frag.hasScalar && r.coloringReady {
			albedo = r.cmap.Lookup(frag.scalar, r.activeRange[0], r.activeRange[1])
		}

		// Material capture replaces lighting entirely.
		if matcapTex != nil {
			n := mgl32.TransformNormal(frag.normal, view)
			c, _ := matcapTex.Sample(n.X()*0.5+0.5, 0.5-n.Y()*0.5)
			return c, alpha
		}

		normal := frag.normal
		if normalTex != nil {
			c, _ := normalTex.Sample(frag.uv.X(), 1-frag.uv.Y())
			perturb := mgl32.Vec3{c.R*2 - 1, c.G*2 - 1, c.B*2 - 1}.
				Mul(r.normalScale)
			normal = normal.Add(perturb)
			if l := normal.Len(); l > 0 {
				normal = normal.Mul(1 / l)
			}
		}

		rough := r.roughness
		metal := r.metallic
		occlusion := float32(1)
		if ormTex != nil {
			c, _ := ormTex.Sample(frag.uv.X(), 1-frag.uv.Y())
			occlusion = c.R
			rough = clamp01(rough * c.G)
			metal = clamp01(metal * c.B)
		}

		var out Color
		// Ambient: environment irradiance under IBL, a flat term
		// otherwise.
		if r.useIBL && r.env != nil {
			out = r.env.SampleIrradiance(normal).MulColor(albedo).Mul(occlusion)
		} else {
			out = albedo.Mul(0.2 * occlusion)
		}

		eye := r.cam.Position.Sub(frag.world)
		if l := eye.Len(); l > 0 {
			eye = eye.Mul(1 / l)
		}
		shininess := clamp(2/(rough*rough*rough*rough+1e-3)-2, 1, 1024)
		specStrength := 0.04 + 0.96*metal

		for _, light := range r.lights {
			toLight := light.Direction.Mul(-1)
			ndl := normal.Dot(toLight)
			if ndl <= 0 {
				continue
			}
			diffuse := albedo.MulColor(light.Color).
				Mul(ndl * light.Intensity * (1 - metal))
			out = out.Add(diffuse)

			half := toLight.Add(eye)
			if l := half.Len(); l > 0 {
				half = half.Mul(1 / l)
				ndh := normal.Dot(half)
				if ndh > 0 {
					spec := math32.Pow(ndh, shininess) * specStrength * light.Intensity
					specColor := light.Color.Lerp(albedo, metal)
					out = out.Add(specColor.Mul(spec))
				}
			}
		}

		if emissiveTex != nil {
			c, _ := emissiveTex.Sample(frag.uv.X(), 1-frag.uv.Y())
			out = out.Add(c.MulColor(r.emissiveFactor))
		}
		return out, alpha
	}
}

// gridUnit resolves the grid square size: explicit value, or the nearest
// power of ten to a twentieth of the scene diagonal.
func (r *Renderer) gridUnit() float32 {
	if r.gridUnitSquare > 0 {
		return r.gridUnitSquare
	}
	diag := float32(2)
	if r.scn != nil {
		if b := r.scn.Bounds(); !b.Empty() && b.Diagonal() > 0 {
			diag = b.Diagonal()
		}
	}
	return math32.Pow(10, math32.Round(math32.Log10(diag/20)))
}

// drawGrid renders the floor grid as world-space lines.
func (r *Renderer) drawGrid(ras *rasterizer) {
	unit := r.gridUnit()
	n := r.gridSubdivisions
	half := unit * float32(n) / 2

	center := mgl32.Vec3{}
	if !r.gridAbsolute && r.scn != nil {
		if b := r.scn.Bounds(); !b.Empty() {
			c := b.Center()
			center = mgl32.Vec3{c.X(), b.Min.Y(), c.Z()}
		}
	}

	pv := ras.proj.Mul4(ras.view)
	line := func(a, b mgl32.Vec3) {
		va := vsOut{clip: pv.Mul4x1(a.Vec4(1)), world: a}
		vb := vsOut{clip: pv.Mul4x1(b.Vec4(1)), world: b}
		ras.Line(va, vb, r.gridColor, 1)
	}
	for i := 0; i <= n; i++ {
		d := -half + float32(i)*unit
		line(center.Add(mgl32.Vec3{d, 0, -half}), center.Add(mgl32.Vec3{d, 0, half}))
		line(center.Add(mgl32.Vec3{-half, 0, d}), center.Add(mgl32.Vec3{half, 0, d}))
	}
}

// ensureRTScene rebuilds the path tracer geometry when materials, coloring
// or the scene changed.
func (r *Renderer) ensureRTScene() {
	if r.rt != nil && !r.rtDirty {
		return
	}
	r.rtDirty = false

	var tris []rtTriangle
	if r.scn == nil {
		r.rt = buildRTScene(tris)
		return
	}
	mat := rtMaterial{
		roughness: r.roughness,
		metallic:  r.metallic,
		opacity:   r.opacity,
	}
	baseTex := r.texture(r.textureBaseColor)
	for _, m := range r.scn.Meshes {
		if len(m.Normals) == 0 && m.TriangleCount() > 0 {
			m.ComputeNormals()
		}
		field := r.coloringField(m)
		model := m.Transform
		normalMat := model.Inv().Transpose()

		vertexColor := func(i int) Color {
			c := r.surfaceColor
			if baseTex != nil && i < len(m.TexCoords) {
				tc, _ := baseTex.Sample(m.TexCoords[i].X(), 1-m.TexCoords[i].Y())
				c = c.MulColor(tc)
			}
			if field != nil && !r.useCellColoring && i < field.Len() && r.coloringReady {
				c = r.cmap.Lookup(r.fieldScalar(field, i), r.activeRange[0], r.activeRange[1])
			}
			return c
		}

		for t := 0; t < m.TriangleCount(); t++ {
			i0, i1, i2 := m.Triangles[t*3], m.Triangles[t*3+1], m.Triangles[t*3+2]
			p0 := mgl32.TransformCoordinate(m.Positions[i0], model)
			p1 := mgl32.TransformCoordinate(m.Positions[i1], model)
			p2 := mgl32.TransformCoordinate(m.Positions[i2], model)
			tri := rtTriangle{
				p0:  p0,
				e1:  p1.Sub(p0),
				e2:  p2.Sub(p0),
				mat: mat,
			}
			if i0 < len(m.Normals) {
				tri.n0 = mgl32.TransformNormal(m.Normals[i0], normalMat)
				tri.n1 = mgl32.TransformNormal(m.Normals[i1], normalMat)
				tri.n2 = mgl32.TransformNormal(m.Normals[i2], normalMat)
			} else {
				n := tri.e1.Cross(tri.e2).Normalize()
				tri.n0, tri.n1, tri.n2 = n, n, n
			}
			tri.c0 = vertexColor(i0)
			tri.c1 = vertexColor(i1)
			tri.c2 = vertexColor(i2)
			if field != nil && r.useCellColoring && t < field.Len() && r.coloringReady {
				c := r.cmap.Lookup(r.fieldScalar(field, t), r.activeRange[0], r.activeRange[1])
				tri.c0, tri.c1, tri.c2 = c, c, c
			}
			tris = append(tris, tri)
		}
	}
	r.rt = buildRTScene(tris)
	logger().Debug("rebuilt raytracing scene", "triangles", len(tris))
}

// drawOverlays composites the 2D UI over the frame.
func (r *Renderer) drawOverlays(fb *Framebuffer) {
	needed := r.showTimer || r.showFilename || r.showMetaData || r.showCheatSheet ||
		r.showDropZone || r.showScalarBar || r.showAxis || r.animationNameInfo != ""
	if !needed {
		return
	}
	p := newOverlayPainter(fb.W, fb.H, r.face)

	y := overlayMargin
	if r.showFilename && r.filenameInfo != "" {
		p.drawText(overlayMargin, y, r.filenameInfo)
		y += p.lineH
	}
	if r.showCheatSheet && len(r.cheatSheet) > 0 {
		p.drawLines(overlayMargin, y+p.lineH, r.cheatSheet)
	}
	if r.showTimer {
		fps := 0.0
		if r.lastFrame > 0 {
			fps = 1 / r.lastFrame.Seconds()
		}
		label := fmt.Sprintf("%.0f fps", fps)
		p.drawText(fb.W-overlayMargin-p.textWidth(label), fb.H-overlayMargin-p.lineH, label)
	}
	if r.showMetaData && r.scn != nil && len(r.scn.Metadata) > 0 {
		p.drawMetadata(r.scn.Metadata)
	}
	if r.animationNameInfo != "" {
		p.drawText((fb.W-p.textWidth(r.animationNameInfo))/2, overlayMargin, r.animationNameInfo)
	}
	if r.showDropZone {
		p.drawDropZone(r.dropZoneInfo)
	}
	if r.showScalarBar && r.coloringReady {
		p.drawScalarBar(r.cmap, r.activeRange[0], r.activeRange[1], r.activeArray)
	}
	if r.showAxis {
		p.drawAxesGizmo(r.cam)
	}
	p.compositeInto(fb)
}
