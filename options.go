package view3d

// Options is the per-frame snapshot of every dynamic display setting. The
// window reads it on each Render and RenderToImage call and pushes every
// field onto the renderer through the binding table in sync.go; there is no
// dirty tracking, a full resync is cheap and keeps the mapping declarative.
//
// Groups mirror how the settings are exposed on the command line: scene
// loading hints, renderer passes, model appearance, UI furniture and
// interaction behavior.
type Options struct {
	Scene      SceneOptions
	Render     RenderOptions
	Model      ModelOptions
	UI         UIOptions
	Interactor InteractorOptions
}

// SceneOptions controls scene setup rather than per-frame rendering.
type SceneOptions struct {
	// UpDirection orients the scene, e.g. "+Y", "-Z". Read by ResetCamera.
	UpDirection string

	Camera CameraOptions
}

// CameraOptions selects and configures the viewpoint.
type CameraOptions struct {
	// Index selects a scene-provided camera. Nil means the free camera;
	// when set, the orthographic toggle is ignored because the scene
	// camera carries its own projection.
	Index *int

	// Orthographic switches the free camera to parallel projection.
	Orthographic bool
}

// RenderOptions groups renderer pass and background settings.
type RenderOptions struct {
	LineWidth float64
	PointSize float64

	// ShowEdges overlays the triangle edges on shaded geometry.
	ShowEdges bool

	// ShowNormals draws a normal glyph at every vertex.
	ShowNormals bool

	Grid       GridOptions
	Raytracing RaytracingOptions
	Effect     EffectOptions

	// BackfaceType is one of "default", "visible", "hidden".
	BackfaceType string

	Background BackgroundOptions
	Light      LightOptions
	HDRI       HDRIOptions
}

// GridOptions configures the ground grid under the scene.
type GridOptions struct {
	Enable bool

	// Unit is the square size in world units; zero picks one from the
	// scene bounds.
	Unit float64

	Subdivisions int

	// Absolute anchors the grid on the world origin instead of under the
	// scene bounding box.
	Absolute bool

	Color [3]float64
}

// RaytracingOptions switches frames to the path tracer.
type RaytracingOptions struct {
	Enable  bool
	Samples int
	Denoise bool
}

// EffectOptions toggles the post-processing passes.
type EffectOptions struct {
	// AmbientOcclusion enables the depth-based SSAO pass.
	AmbientOcclusion bool

	// AntiAliasing enables the FXAA pass.
	AntiAliasing bool

	// ToneMapping enables the filmic tone mapping pass.
	ToneMapping bool

	// TranslucencySupport depth-sorts translucent geometry before
	// blending instead of drawing it in mesh order.
	TranslucencySupport bool

	// FinalShader names a registered full-frame hook applied last.
	FinalShader string
}

// BackgroundOptions configures what shows behind the scene.
type BackgroundOptions struct {
	Color [3]float64

	// Skybox projects the HDRI behind the scene when one is set.
	Skybox bool

	// Blur applies a Gaussian blur to the background layer.
	Blur bool

	// BlurCoC is the blur circle of confusion radius in pixels.
	BlurCoC float64
}

// LightOptions scales the scene lights.
type LightOptions struct {
	Intensity float64
}

// HDRIOptions configures image-based lighting.
type HDRIOptions struct {
	// File is an equirectangular environment image path.
	File string

	// Ambient uses the HDRI as the ambient light source.
	Ambient bool
}

// ModelOptions groups the appearance of the loaded geometry.
type ModelOptions struct {
	Color        ColorOptions
	Material     MaterialOptions
	Emissive     EmissiveOptions
	Normal       NormalOptions
	Matcap       MatcapOptions
	Scivis       ScivisOptions
	PointSprites PointSpritesOptions
	Volume       VolumeOptions
}

// ColorOptions sets the base surface color.
type ColorOptions struct {
	RGB     [3]float64
	Opacity float64
	Texture string
}

// MaterialOptions sets the PBR scalar inputs.
type MaterialOptions struct {
	Roughness float64
	Metallic  float64
	Texture   string
}

// EmissiveOptions sets self-illumination.
type EmissiveOptions struct {
	Texture string
	Factor  [3]float64
}

// NormalOptions sets normal mapping.
type NormalOptions struct {
	Texture string
	Scale   float64
}

// MatcapOptions sets a material capture texture, replacing lighting.
type MatcapOptions struct {
	Texture string
}

// ScivisOptions configures scalar coloring of data arrays.
type ScivisOptions struct {
	Enable bool

	// Cells colors by cell data instead of point data.
	Cells bool

	// ArrayName selects the data array; empty picks the first one.
	ArrayName string

	// Component selects the array component, -1 for magnitude.
	Component int

	// Range overrides the color range, [min, max]. Empty means the
	// array's own range.
	Range []float64

	// Colormap is a flat list of value,r,g,b quadruplets in [0,1].
	// Empty means the built-in default map.
	Colormap []float64
}

// PointSpritesOptions draws points as shaded sprites.
type PointSpritesOptions struct {
	Enable bool

	// Type is "sphere" or "gaussian".
	Type string

	Size float64
}

// VolumeOptions requests volume rendering. Mesh scenes cannot honor the
// request; the renderer warns once and falls back to geometry.
type VolumeOptions struct {
	Enable  bool
	Inverse bool
}

// UIOptions toggles the overlays composited onto the frame.
type UIOptions struct {
	ScalarBar    bool
	Filename     bool
	FilenameInfo string
	Metadata     bool
	FPS          bool
	CheatSheet   bool
	DropZone     bool
	DropZoneInfo string

	// FontFile is an OpenType font for the overlays; empty uses the
	// built-in bitmap face.
	FontFile string
}

// InteractorOptions tunes interaction behavior.
type InteractorOptions struct {
	// Axis shows the orientation gizmo.
	Axis bool

	// Trackball uses trackball-style camera rotation.
	Trackball bool

	// InvertZoom flips the zoom direction.
	InvertZoom bool
}

// NewOptions returns the default option set. The defaults match a freshly
// constructed renderer, so syncing them onto a new window changes nothing.
func NewOptions() *Options {
	return &Options{
		Scene: SceneOptions{
			UpDirection: "+Y",
		},
		Render: RenderOptions{
			LineWidth:    1,
			PointSize:    10,
			BackfaceType: "default",
			Grid: GridOptions{
				Subdivisions: 10,
				Color:        [3]float64{0, 0, 0},
			},
			Raytracing: RaytracingOptions{
				Samples: 5,
			},
			Background: BackgroundOptions{
				Color:   [3]float64{0.2, 0.2, 0.2},
				BlurCoC: 20,
			},
			Light: LightOptions{
				Intensity: 1,
			},
		},
		Model: ModelOptions{
			Color: ColorOptions{
				RGB:     [3]float64{1, 1, 1},
				Opacity: 1,
			},
			Material: MaterialOptions{
				Roughness: 0.3,
			},
			Emissive: EmissiveOptions{
				Factor: [3]float64{1, 1, 1},
			},
			Normal: NormalOptions{
				Scale: 1,
			},
			Scivis: ScivisOptions{
				Component: -1,
			},
			PointSprites: PointSpritesOptions{
				Type: "sphere",
				Size: 10,
			},
		},
	}
}
