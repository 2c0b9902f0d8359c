package view3d

import (
	"github.com/gogpu/view3d/render"
	"github.com/gogpu/view3d/surface"
)

// binding maps one option field onto one renderer setter call. The name is
// the dotted option path, kept so tests can exercise the table field by
// field.
type binding struct {
	name  string
	apply func(r *render.Renderer, o *Options)
}

// colorOf converts an option color triple to the renderer color type.
func colorOf(v [3]float64) render.Color {
	return render.Color{R: float32(v[0]), G: float32(v[1]), B: float32(v[2])}
}

// bindings is the full option-to-setter table, one entry per dynamic
// option field. It runs in order on every Render and RenderToImage call:
// a full resync is cheap, needs no dirty tracking, and stays idempotent
// because every setter overwrites state instead of accumulating it.
var bindings = []binding{
	{"interactor.axis", func(r *render.Renderer, o *Options) {
		r.ShowAxis(o.Interactor.Axis)
	}},
	{"interactor.trackball", func(r *render.Renderer, o *Options) {
		r.SetUseTrackball(o.Interactor.Trackball)
	}},
	{"interactor.invert_zoom", func(r *render.Renderer, o *Options) {
		r.SetInvertZoom(o.Interactor.InvertZoom)
	}},

	// Sprite type only matters for geometry scenes but is pushed
	// unconditionally, together with the size, as one property call.
	{"model.point_sprites.properties", func(r *render.Renderer, o *Options) {
		typ := render.SpriteSphere
		if o.Model.PointSprites.Type == render.SpriteGaussian {
			typ = render.SpriteGaussian
		}
		r.SetPointSpritesProperties(typ, o.Model.PointSprites.Size)
	}},

	{"render.line_width", func(r *render.Renderer, o *Options) {
		r.SetLineWidth(o.Render.LineWidth)
	}},
	{"render.point_size", func(r *render.Renderer, o *Options) {
		r.SetPointSize(o.Render.PointSize)
	}},
	{"render.show_edges", func(r *render.Renderer, o *Options) {
		r.ShowEdge(o.Render.ShowEdges)
	}},
	{"render.show_normals", func(r *render.Renderer, o *Options) {
		r.ShowNormal(o.Render.ShowNormals)
	}},

	{"ui.fps", func(r *render.Renderer, o *Options) {
		r.ShowTimer(o.UI.FPS)
	}},
	{"ui.filename", func(r *render.Renderer, o *Options) {
		r.ShowFilename(o.UI.Filename)
	}},
	{"ui.filename_info", func(r *render.Renderer, o *Options) {
		r.SetFilenameInfo(o.UI.FilenameInfo)
	}},
	{"ui.metadata", func(r *render.Renderer, o *Options) {
		r.ShowMetaData(o.UI.Metadata)
	}},
	{"ui.cheatsheet", func(r *render.Renderer, o *Options) {
		r.ShowCheatSheet(o.UI.CheatSheet)
	}},
	{"ui.dropzone", func(r *render.Renderer, o *Options) {
		r.ShowDropZone(o.UI.DropZone)
	}},
	{"ui.dropzone_info", func(r *render.Renderer, o *Options) {
		r.SetDropZoneInfo(o.UI.DropZoneInfo)
	}},

	{"render.raytracing.enable", func(r *render.Renderer, o *Options) {
		r.SetUseRaytracing(o.Render.Raytracing.Enable)
	}},
	{"render.raytracing.samples", func(r *render.Renderer, o *Options) {
		r.SetRaytracingSamples(o.Render.Raytracing.Samples)
	}},
	{"render.raytracing.denoise", func(r *render.Renderer, o *Options) {
		r.SetUseRaytracingDenoiser(o.Render.Raytracing.Denoise)
	}},

	{"render.effect.ambient_occlusion", func(r *render.Renderer, o *Options) {
		r.SetUseSSAOPass(o.Render.Effect.AmbientOcclusion)
	}},
	{"render.effect.anti_aliasing", func(r *render.Renderer, o *Options) {
		r.SetUseFXAAPass(o.Render.Effect.AntiAliasing)
	}},
	{"render.effect.tone_mapping", func(r *render.Renderer, o *Options) {
		r.SetUseToneMappingPass(o.Render.Effect.ToneMapping)
	}},
	{"render.effect.translucency_support", func(r *render.Renderer, o *Options) {
		r.SetUseDepthPeelingPass(o.Render.Effect.TranslucencySupport)
	}},
	{"render.backface_type", func(r *render.Renderer, o *Options) {
		r.SetBackfaceType(o.Render.BackfaceType)
	}},
	{"render.effect.final_shader", func(r *render.Renderer, o *Options) {
		r.SetFinalShader(o.Render.Effect.FinalShader)
	}},

	{"render.background.color", func(r *render.Renderer, o *Options) {
		r.SetBackground(colorOf(o.Render.Background.Color))
		// Also clears the transparent override a noBackground export
		// leaves behind.
		r.SetBackgroundAlpha(1)
	}},
	{"render.background.blur", func(r *render.Renderer, o *Options) {
		r.SetUseBlurBackground(o.Render.Background.Blur)
	}},
	{"render.background.blur_coc", func(r *render.Renderer, o *Options) {
		r.SetBlurCircleOfConfusionRadius(o.Render.Background.BlurCoC)
	}},
	{"render.light.intensity", func(r *render.Renderer, o *Options) {
		r.SetLightIntensity(o.Render.Light.Intensity)
	}},

	{"render.hdri.file", func(r *render.Renderer, o *Options) {
		r.SetHDRIFile(o.Render.HDRI.File)
	}},
	{"render.hdri.ambient", func(r *render.Renderer, o *Options) {
		r.SetUseImageBasedLighting(o.Render.HDRI.Ambient)
	}},
	{"render.background.skybox", func(r *render.Renderer, o *Options) {
		r.ShowHDRISkybox(o.Render.Background.Skybox)
	}},

	{"ui.font_file", func(r *render.Renderer, o *Options) {
		r.SetFontFile(o.UI.FontFile)
	}},

	{"render.grid.unit", func(r *render.Renderer, o *Options) {
		r.SetGridUnitSquare(o.Render.Grid.Unit)
	}},
	{"render.grid.subdivisions", func(r *render.Renderer, o *Options) {
		r.SetGridSubdivisions(o.Render.Grid.Subdivisions)
	}},
	{"render.grid.absolute", func(r *render.Renderer, o *Options) {
		r.SetGridAbsolute(o.Render.Grid.Absolute)
	}},
	{"render.grid.enable", func(r *render.Renderer, o *Options) {
		r.ShowGrid(o.Render.Grid.Enable)
	}},
	{"render.grid.color", func(r *render.Renderer, o *Options) {
		r.SetGridColor(colorOf(o.Render.Grid.Color))
	}},

	// Scene cameras carry their own projection; the orthographic toggle
	// only applies to the free camera.
	{"scene.camera.orthographic", func(r *render.Renderer, o *Options) {
		if o.Scene.Camera.Index == nil {
			r.SetUseOrthographicProjection(o.Scene.Camera.Orthographic)
		}
	}},

	{"model.color.rgb", func(r *render.Renderer, o *Options) {
		r.SetSurfaceColor(colorOf(o.Model.Color.RGB))
	}},
	{"model.color.opacity", func(r *render.Renderer, o *Options) {
		r.SetOpacity(o.Model.Color.Opacity)
	}},
	{"model.color.texture", func(r *render.Renderer, o *Options) {
		r.SetTextureBaseColor(o.Model.Color.Texture)
	}},
	{"model.material.roughness", func(r *render.Renderer, o *Options) {
		r.SetRoughness(o.Model.Material.Roughness)
	}},
	{"model.material.metallic", func(r *render.Renderer, o *Options) {
		r.SetMetallic(o.Model.Material.Metallic)
	}},
	{"model.material.texture", func(r *render.Renderer, o *Options) {
		r.SetTextureMaterial(o.Model.Material.Texture)
	}},
	{"model.emissive.texture", func(r *render.Renderer, o *Options) {
		r.SetTextureEmissive(o.Model.Emissive.Texture)
	}},
	{"model.emissive.factor", func(r *render.Renderer, o *Options) {
		r.SetEmissiveFactor(colorOf(o.Model.Emissive.Factor))
	}},
	{"model.normal.texture", func(r *render.Renderer, o *Options) {
		r.SetTextureNormal(o.Model.Normal.Texture)
	}},
	{"model.normal.scale", func(r *render.Renderer, o *Options) {
		r.SetNormalScale(o.Model.Normal.Scale)
	}},
	{"model.matcap.texture", func(r *render.Renderer, o *Options) {
		r.SetTextureMatCap(o.Model.Matcap.Texture)
	}},

	{"model.scivis.enable", func(r *render.Renderer, o *Options) {
		r.SetEnableColoring(o.Model.Scivis.Enable)
	}},
	{"model.scivis.cells", func(r *render.Renderer, o *Options) {
		r.SetUseCellColoring(o.Model.Scivis.Cells)
	}},
	{"model.scivis.array_name", func(r *render.Renderer, o *Options) {
		r.SetArrayNameForColoring(o.Model.Scivis.ArrayName)
	}},
	{"model.scivis.component", func(r *render.Renderer, o *Options) {
		r.SetComponentForColoring(o.Model.Scivis.Component)
	}},
	{"model.scivis.range", func(r *render.Renderer, o *Options) {
		r.SetScalarBarRange(o.Model.Scivis.Range)
	}},
	{"model.scivis.colormap", func(r *render.Renderer, o *Options) {
		r.SetColormap(o.Model.Scivis.Colormap)
	}},
	{"ui.scalar_bar", func(r *render.Renderer, o *Options) {
		r.ShowScalarBar(o.UI.ScalarBar)
	}},

	{"model.point_sprites.enable", func(r *render.Renderer, o *Options) {
		r.SetUsePointSprites(o.Model.PointSprites.Enable)
	}},
	{"model.volume.enable", func(r *render.Renderer, o *Options) {
		r.SetUseVolume(o.Model.Volume.Enable)
	}},
	{"model.volume.inverse", func(r *render.Renderer, o *Options) {
		r.SetUseInverseOpacityFunction(o.Model.Volume.Inverse)
	}},
}

// syncOptions pushes the whole option snapshot onto the renderer. On a
// none surface only the actor bounds are refreshed: headless bounds
// queries need accurate boxes but no renderer configuration.
func (w *Window) syncOptions() {
	if w.surf.Type() == surface.None {
		w.renderer.UpdateActors()
		return
	}

	w.renderer.SetCachePath(w.cacheDir())

	// Lights must exist before the intensity binding scales them.
	w.renderer.UpdateLights()

	for _, b := range bindings {
		b.apply(w.renderer, w.opts)
	}

	w.renderer.UpdateActors()
}
