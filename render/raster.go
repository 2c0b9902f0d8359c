// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// vsOut is one vertex after the model and view transforms, in clip space
// with the attributes the fragment stage interpolates.
type vsOut struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
	scalar float32
}

// fragment is an interpolated surface sample handed to the shading
// callback.
type fragment struct {
	world     mgl32.Vec3
	normal    mgl32.Vec3
	uv        mgl32.Vec2
	scalar    float32
	backface  bool
	hasScalar bool
}

// shadeFunc turns a fragment into a color and opacity.
type shadeFunc func(frag fragment) (Color, float32)

// rasterizer owns one frame's transform state and draw queues. Translucent
// geometry is queued and composited back to front after the opaque pass.
type rasterizer struct {
	fb      *Framebuffer
	view    mgl32.Mat4
	viewInv mgl32.Mat4
	proj    mgl32.Mat4

	// hasScalar marks submissions of the mesh currently being drawn;
	// meshes without the active coloring array shade with material color.
	hasScalar bool

	// sortTranslucent orders the deferred queue back to front before
	// compositing. Off, triangles blend in submission order, which is
	// cheaper but order-dependent.
	sortTranslucent bool

	translucent []queuedTriangle
}

type queuedTriangle struct {
	v         [3]vsOut
	depth     float32 // eye-space distance used for back-to-front ordering
	shade     shadeFunc
	hasScalar bool
}

func newRasterizer(fb *Framebuffer, cam *Camera) *rasterizer {
	view := cam.ViewMatrix()
	return &rasterizer{
		fb:      fb,
		view:    view,
		viewInv: view.Inv(),
		proj:    cam.ProjectionMatrix(float32(fb.W) / float32(fb.H)),
	}
}

// toScreen converts a clip-space position to display coordinates: x and y
// in pixels with the origin at the bottom-left, z normalized to [0,1].
func (r *rasterizer) toScreen(clip mgl32.Vec4) mgl32.Vec3 {
	w := clip.W()
	return mgl32.Vec3{
		(clip.X()/w + 1) / 2 * float32(r.fb.W),
		(clip.Y()/w + 1) / 2 * float32(r.fb.H),
		(clip.Z()/w + 1) / 2,
	}
}

// nearEpsilon keeps clip-space w strictly positive when clipping against
// the near plane.
const nearEpsilon = 1e-5

// clipNear clips a polygon against w > nearEpsilon, interpolating all
// attributes. Returns at most len(in)+1 vertices.
func clipNear(in []vsOut) []vsOut {
	var out []vsOut
	for i := range in {
		cur := in[i]
		prev := in[(i+len(in)-1)%len(in)]
		curIn := cur.clip.W() > nearEpsilon
		prevIn := prev.clip.W() > nearEpsilon
		if curIn != prevIn {
			t := (nearEpsilon - prev.clip.W()) / (cur.clip.W() - prev.clip.W())
			out = append(out, lerpVS(prev, cur, t))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}

func lerpVS(a, b vsOut, t float32) vsOut {
	return vsOut{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
		scalar: a.scalar + (b.scalar-a.scalar)*t,
	}
}

// cullMode controls triangle facing behavior.
type cullMode int

const (
	cullNone   cullMode = iota // shade both sides, flip backface normals
	cullBack                   // drop backfaces
	cullFront                  // drop frontfaces, shade backs
)

// Triangle submits one clip-space triangle. Translucent triangles
// (opacity < 1 as reported by probing the shade function is not possible,
// so the caller passes translucent explicitly) are queued for the deferred
// blend pass.
func (r *rasterizer) Triangle(v0, v1, v2 vsOut, shade shadeFunc, translucent bool, cull cullMode) {
	poly := clipNear([]vsOut{v0, v1, v2})
	if len(poly) < 3 {
		return
	}
	for i := 1; i+1 < len(poly); i++ {
		tri := [3]vsOut{poly[0], poly[i], poly[i+1]}
		if translucent {
			eye := mgl32.TransformCoordinate(
				tri[0].world.Add(tri[1].world).Add(tri[2].world).Mul(1.0/3.0), r.view)
			r.translucent = append(r.translucent, queuedTriangle{
				v:         tri,
				depth:     -eye.Z(), // eye looks down -Z
				shade:     shade,
				hasScalar: r.hasScalar,
			})
			continue
		}
		r.fillTriangle(tri, shade, true, cull, r.hasScalar)
	}
}

// Flush composites queued translucent triangles. Depth stays read-only so
// opaque geometry keeps occluding.
func (r *rasterizer) Flush() {
	if r.sortTranslucent {
		sort.SliceStable(r.translucent, func(i, j int) bool {
			return r.translucent[i].depth > r.translucent[j].depth
		})
	}
	for i := range r.translucent {
		q := &r.translucent[i]
		r.fillTriangle(q.v, q.shade, false, cullNone, q.hasScalar)
	}
	r.translucent = r.translucent[:0]
}

// fillTriangle rasterizes one near-clipped triangle. writeDepth selects the
// opaque path (depth test and write, overwrite color) versus the blend path
// (depth test only, alpha composite).
func (r *rasterizer) fillTriangle(v [3]vsOut, shade shadeFunc, writeDepth bool, cull cullMode, hasScalar bool) {
	s0 := r.toScreen(v[0].clip)
	s1 := r.toScreen(v[1].clip)
	s2 := r.toScreen(v[2].clip)

	// Signed area in display coordinates; positive means counter-clockwise
	// which is the front-facing winding.
	area := (s1.X()-s0.X())*(s2.Y()-s0.Y()) - (s1.Y()-s0.Y())*(s2.X()-s0.X())
	if area == 0 {
		return
	}
	back := area < 0
	if back && cull == cullBack {
		return
	}
	if !back && cull == cullFront {
		return
	}

	minX := int(math32.Floor(min3(s0.X(), s1.X(), s2.X())))
	maxX := int(math32.Ceil(max3(s0.X(), s1.X(), s2.X())))
	minY := int(math32.Floor(min3(s0.Y(), s1.Y(), s2.Y())))
	maxY := int(math32.Ceil(max3(s0.Y(), s1.Y(), s2.Y())))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > r.fb.W-1 {
		maxX = r.fb.W - 1
	}
	if maxY > r.fb.H-1 {
		maxY = r.fb.H - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1 / area
	// Perspective-correct interpolation weights: attributes are scaled by
	// 1/w and rescaled per fragment.
	iw0 := 1 / v[0].clip.W()
	iw1 := 1 / v[1].clip.W()
	iw2 := 1 / v[2].clip.W()

	for py := minY; py <= maxY; py++ {
		fy := float32(py) + 0.5
		row := r.fb.H - 1 - py // display y grows up, buffer rows grow down
		for px := minX; px <= maxX; px++ {
			fx := float32(px) + 0.5
			b0 := ((s1.X()-fx)*(s2.Y()-fy) - (s1.Y()-fy)*(s2.X()-fx)) * invArea
			b1 := ((s2.X()-fx)*(s0.Y()-fy) - (s2.Y()-fy)*(s0.X()-fx)) * invArea
			b2 := 1 - b0 - b1
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			z := b0*s0.Z() + b1*s1.Z() + b2*s2.Z()
			if z < 0 || z > 1 {
				continue
			}

			w0 := b0 * iw0
			w1 := b1 * iw1
			w2 := b2 * iw2
			wsum := w0 + w1 + w2
			if wsum == 0 {
				continue
			}
			w0 /= wsum
			w1 /= wsum
			w2 /= wsum

			frag := fragment{
				world: v[0].world.Mul(w0).Add(v[1].world.Mul(w1)).Add(v[2].world.Mul(w2)),
				normal: v[0].normal.Mul(w0).Add(v[1].normal.Mul(w1)).
					Add(v[2].normal.Mul(w2)),
				uv: v[0].uv.Mul(w0).Add(v[1].uv.Mul(w1)).Add(v[2].uv.Mul(w2)),
				scalar: v[0].scalar*w0 + v[1].scalar*w1 +
					v[2].scalar*w2,
				backface:  back,
				hasScalar: hasScalar,
			}
			if l := frag.normal.Len(); l > 0 {
				frag.normal = frag.normal.Mul(1 / l)
			}
			if back {
				frag.normal = frag.normal.Mul(-1)
			}

			if writeDepth {
				if !r.fb.TestAndSetDepth(px, row, z) {
					continue
				}
				c, alpha := shade(frag)
				r.fb.Set(px, row, c, alpha)
			} else {
				if z >= r.fb.DepthAt(px, row) {
					continue
				}
				c, alpha := shade(frag)
				r.fb.Blend(px, row, c, alpha)
			}
		}
	}
}

// edgeDepthBias pulls lines slightly toward the viewer so mesh edges win
// the depth test against their own faces.
const edgeDepthBias = 2e-4

// Line draws a clip-space segment with depth testing.
func (r *rasterizer) Line(a, b vsOut, c Color, width float32) {
	// Near-plane clip for a segment.
	aw, bw := a.clip.W(), b.clip.W()
	if aw <= nearEpsilon && bw <= nearEpsilon {
		return
	}
	if aw <= nearEpsilon || bw <= nearEpsilon {
		t := (nearEpsilon - aw) / (bw - aw)
		mid := lerpVS(a, b, t)
		if aw <= nearEpsilon {
			a = mid
		} else {
			b = mid
		}
	}
	s0 := r.toScreen(a.clip)
	s1 := r.toScreen(b.clip)

	dx := s1.X() - s0.X()
	dy := s1.Y() - s0.Y()
	steps := int(math32.Ceil(max3(math32.Abs(dx), math32.Abs(dy), 1)))
	hw := width / 2
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := s0.X() + dx*t
		y := s0.Y() + dy*t
		z := s0.Z() + (s1.Z()-s0.Z())*t - edgeDepthBias
		px := int(x)
		py := r.fb.H - 1 - int(y)
		if hw <= 0.5 {
			if r.fb.TestAndSetDepth(px, py, z) {
				r.fb.Set(px, py, c, 1)
			}
			continue
		}
		for ox := -int(hw); ox <= int(hw); ox++ {
			for oy := -int(hw); oy <= int(hw); oy++ {
				if r.fb.TestAndSetDepth(px+ox, py+oy, z) {
					r.fb.Set(px+ox, py+oy, c, 1)
				}
			}
		}
	}
}

// PointSprite draws a screen-aligned splat for a point. In sphere mode the
// splat is a shaded disc with a spherical normal; in gaussian mode it is an
// additive-free alpha splat with exponential falloff.
func (r *rasterizer) PointSprite(v vsOut, radiusPx float32, gaussian bool, shade shadeFunc) {
	if v.clip.W() <= nearEpsilon {
		return
	}
	s := r.toScreen(v.clip)
	if radiusPx < 0.5 {
		radiusPx = 0.5
	}
	ir := int(math32.Ceil(radiusPx))
	cx, cy := s.X(), s.Y()
	for oy := -ir; oy <= ir; oy++ {
		for ox := -ir; ox <= ir; ox++ {
			fx := cx + float32(ox)
			fy := cy + float32(oy)
			dx := (fx - cx) / radiusPx
			dy := (fy - cy) / radiusPx
			d2 := dx*dx + dy*dy
			if d2 > 1 {
				continue
			}
			px := int(fx)
			py := r.fb.H - 1 - int(fy)
			if px < 0 || py < 0 || px >= r.fb.W || py >= r.fb.H {
				continue
			}
			frag := fragment{
				world:     v.world,
				uv:        v.uv,
				scalar:    v.scalar,
				hasScalar: r.hasScalar,
			}
			if gaussian {
				c, alpha := shade(frag)
				falloff := math32.Exp(-4 * d2)
				if s.Z() < r.fb.DepthAt(px, py) {
					r.fb.Blend(px, py, c, alpha*falloff)
				}
				continue
			}
			// Sphere mode: fake a spherical surface normal facing the
			// viewer and bump the depth so splats intersect properly.
			nz := math32.Sqrt(1 - d2)
			frag.normal = mgl32.TransformNormal(mgl32.Vec3{dx, dy, nz}, r.viewInv)
			z := s.Z() - nz*0.001
			if r.fb.TestAndSetDepth(px, py, z) {
				c, alpha := shade(frag)
				r.fb.Set(px, py, c, alpha)
			}
		}
	}
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
