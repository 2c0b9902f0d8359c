// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/anthonynsimon/bild/effect"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// rtMaterial is the per-triangle shading state used by the path tracer.
// Vertex colors already include scalar coloring lookups.
type rtMaterial struct {
	roughness float32
	metallic  float32
	opacity   float32
	emissive  Color
}

// rtTriangle is one world-space triangle prepared for intersection.
type rtTriangle struct {
	p0, e1, e2 mgl32.Vec3 // origin and edge vectors for Moller-Trumbore
	n0, n1, n2 mgl32.Vec3
	c0, c1, c2 Color
	mat        rtMaterial
}

func (t *rtTriangle) centroid() mgl32.Vec3 {
	return t.p0.Add(t.p0.Add(t.e1)).Add(t.p0.Add(t.e2)).Mul(1.0 / 3.0)
}

func (t *rtTriangle) bounds() (lo, hi mgl32.Vec3) {
	p1 := t.p0.Add(t.e1)
	p2 := t.p0.Add(t.e2)
	for i := 0; i < 3; i++ {
		lo[i] = min3(t.p0[i], p1[i], p2[i])
		hi[i] = max3(t.p0[i], p1[i], p2[i])
	}
	return lo, hi
}

// intersect runs Moller-Trumbore, returning the hit distance and
// barycentric (u, v), or false.
func (t *rtTriangle) intersect(orig, dir mgl32.Vec3) (float32, float32, float32, bool) {
	p := dir.Cross(t.e2)
	det := t.e1.Dot(p)
	if math32.Abs(det) < 1e-9 {
		return 0, 0, 0, false
	}
	invDet := 1 / det
	s := orig.Sub(t.p0)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(t.e1)
	v := dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	dist := t.e2.Dot(q) * invDet
	if dist <= 1e-5 {
		return 0, 0, 0, false
	}
	return dist, u, v, true
}

// bvhNode is a node in a median-split bounding volume hierarchy over the
// triangle list. Leaves reference a contiguous index range.
type bvhNode struct {
	lo, hi      mgl32.Vec3
	left, right int // child node indices, -1 for leaves
	start, end  int // triangle index range for leaves
}

// rtScene holds the traced geometry and its acceleration structure.
type rtScene struct {
	tris  []rtTriangle
	index []int
	nodes []bvhNode
}

const bvhLeafSize = 4

func buildRTScene(tris []rtTriangle) *rtScene {
	s := &rtScene{tris: tris, index: make([]int, len(tris))}
	for i := range s.index {
		s.index[i] = i
	}
	if len(tris) > 0 {
		s.buildNode(0, len(tris))
	}
	return s
}

// buildNode appends a node covering index[start:end] and returns its index.
func (s *rtScene) buildNode(start, end int) int {
	nodeIdx := len(s.nodes)
	s.nodes = append(s.nodes, bvhNode{left: -1, right: -1, start: start, end: end})

	lo := mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi := mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, ti := range s.index[start:end] {
		tlo, thi := s.tris[ti].bounds()
		for a := 0; a < 3; a++ {
			if tlo[a] < lo[a] {
				lo[a] = tlo[a]
			}
			if thi[a] > hi[a] {
				hi[a] = thi[a]
			}
		}
	}
	s.nodes[nodeIdx].lo = lo
	s.nodes[nodeIdx].hi = hi

	if end-start <= bvhLeafSize {
		return nodeIdx
	}

	// Split on the longest axis at the centroid median.
	size := hi.Sub(lo)
	axis := 0
	if size.Y() > size[axis] {
		axis = 1
	}
	if size.Z() > size[axis] {
		axis = 2
	}
	sub := s.index[start:end]
	mid := len(sub) / 2
	nthElement(sub, mid, func(a, b int) bool {
		return s.tris[a].centroid()[axis] < s.tris[b].centroid()[axis]
	})

	left := s.buildNode(start, start+mid)
	right := s.buildNode(start+mid, end)
	s.nodes[nodeIdx].left = left
	s.nodes[nodeIdx].right = right
	return nodeIdx
}

// nthElement partially sorts sub so sub[n] is in its sorted position, a
// quickselect over triangle indices.
func nthElement(sub []int, n int, less func(a, b int) bool) {
	lo, hi := 0, len(sub)-1
	for lo < hi {
		pivot := sub[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(sub[i], pivot) {
				i++
			}
			for less(pivot, sub[j]) {
				j--
			}
			if i <= j {
				sub[i], sub[j] = sub[j], sub[i]
				i++
				j--
			}
		}
		if n <= j {
			hi = j
		} else if n >= i {
			lo = i
		} else {
			return
		}
	}
}

func rayBoxHit(orig, invDir mgl32.Vec3, lo, hi mgl32.Vec3, tMax float32) bool {
	tmin := float32(0)
	for a := 0; a < 3; a++ {
		t0 := (lo[a] - orig[a]) * invDir[a]
		t1 := (hi[a] - orig[a]) * invDir[a]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tmin {
			return false
		}
	}
	return true
}

type rtHit struct {
	dist float32
	u, v float32
	tri  int
}

// trace finds the closest hit along the ray, or false.
func (s *rtScene) trace(orig, dir mgl32.Vec3) (rtHit, bool) {
	if len(s.nodes) == 0 {
		return rtHit{}, false
	}
	invDir := mgl32.Vec3{safeInv(dir.X()), safeInv(dir.Y()), safeInv(dir.Z())}
	best := rtHit{dist: math32.Inf(1), tri: -1}

	stack := [64]int{}
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		node := &s.nodes[stack[sp]]
		if !rayBoxHit(orig, invDir, node.lo, node.hi, best.dist) {
			continue
		}
		if node.left < 0 {
			for _, ti := range s.index[node.start:node.end] {
				if d, u, v, ok := s.tris[ti].intersect(orig, dir); ok && d < best.dist {
					best = rtHit{dist: d, u: u, v: v, tri: ti}
				}
			}
			continue
		}
		if sp+2 <= len(stack) {
			stack[sp] = node.left
			sp++
			stack[sp] = node.right
			sp++
		}
	}
	return best, best.tri >= 0
}

// occluded reports whether anything opaque blocks the ray before maxDist.
func (s *rtScene) occluded(orig, dir mgl32.Vec3, maxDist float32) bool {
	hit, ok := s.trace(orig, dir)
	return ok && hit.dist < maxDist && s.tris[hit.tri].mat.opacity > 0.5
}

func safeInv(v float32) float32 {
	if math32.Abs(v) < 1e-12 {
		return math32.Inf(1)
	}
	return 1 / v
}

// raytraceParams collects the inputs of one path-traced frame.
type raytraceParams struct {
	scene      *rtScene
	cam        *Camera
	lights     []Light
	env        *Environment
	background Color
	showSkybox bool
	samples    int
	denoise    bool
}

const rtMaxDepth = 4

// renderRaytraced replaces the rasterized color planes with a path-traced
// frame. The depth buffer is filled from primary hits so later passes and
// overlays keep working.
func renderRaytraced(fb *Framebuffer, p raytraceParams) {
	if p.samples < 1 {
		p.samples = 1
	}
	view := p.cam.ViewMatrix().Inv()
	proj := p.cam.ProjectionMatrix(float32(fb.W) / float32(fb.H)).Inv()

	// primaryRay builds a world-space ray through pixel (x, y) with a
	// subpixel jitter.
	primaryRay := func(x, y, jx, jy float32) (mgl32.Vec3, mgl32.Vec3) {
		ndc := mgl32.Vec4{
			(x+jx)/float32(fb.W)*2 - 1,
			1 - (y+jy)/float32(fb.H)*2, // buffer rows grow down
			-1,
			1,
		}
		eye := proj.Mul4x1(ndc)
		eye = mgl32.Vec4{eye.X() / eye.W(), eye.Y() / eye.W(), eye.Z() / eye.W(), 1}
		world := view.Mul4x1(eye)
		orig := p.cam.Position
		dir := mgl32.Vec3{world.X(), world.Y(), world.Z()}.Sub(orig).Normalize()
		if p.cam.Orthographic {
			// Parallel rays: offset the origin instead.
			orig = mgl32.Vec3{world.X(), world.Y(), world.Z()}
			dir = p.cam.direction()
		}
		return orig, dir
	}

	rows := make(chan int)
	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers > fb.H {
		workers = fb.H
	}
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for y := range rows {
				for x := 0; x < fb.W; x++ {
					var acc Color
					for s := 0; s < p.samples; s++ {
						jx, jy := rng.Float32(), rng.Float32()
						if p.samples == 1 {
							jx, jy = 0.5, 0.5
						}
						orig, dir := primaryRay(float32(x), float32(y), jx, jy)
						acc = acc.Add(p.pathTrace(orig, dir, 0, rng))
					}
					acc = acc.Mul(1 / float32(p.samples))
					i := (y*fb.W + x) * 4
					fb.Pix[i+0] = acc.R
					fb.Pix[i+1] = acc.G
					fb.Pix[i+2] = acc.B
					fb.Pix[i+3] = 1

					// Depth from the center ray keeps overlays and the
					// background passes consistent with the raster path.
					orig, dir := primaryRay(float32(x), float32(y), 0.5, 0.5)
					if hit, ok := p.scene.trace(orig, dir); ok {
						fb.Depth[y*fb.W+x] = hit.dist /
							(hit.dist + 1) // monotone mapping to (0,1)
					}
				}
			}
		}(int64(w) + 1)
	}
	for y := 0; y < fb.H; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	if p.denoise {
		denoisePass(fb)
	}
}

// missColor is the radiance for rays leaving the scene.
func (p *raytraceParams) missColor(dir mgl32.Vec3, depth int) Color {
	if p.env != nil && (p.showSkybox || depth > 0) {
		return p.env.SampleSky(dir)
	}
	return p.background
}

// pathTrace evaluates one light path with direct light sampling at each
// bounce.
func (p *raytraceParams) pathTrace(orig, dir mgl32.Vec3, depth int, rng *rand.Rand) Color {
	if depth >= rtMaxDepth {
		return Color{}
	}
	hit, ok := p.scene.trace(orig, dir)
	if !ok {
		return p.missColor(dir, depth)
	}
	tri := &p.scene.tris[hit.tri]
	w := 1 - hit.u - hit.v
	pos := orig.Add(dir.Mul(hit.dist))
	normal := tri.n0.Mul(w).Add(tri.n1.Mul(hit.u)).Add(tri.n2.Mul(hit.v))
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	}
	if normal.Dot(dir) > 0 {
		normal = normal.Mul(-1)
	}
	albedo := tri.c0.Mul(w).Add(tri.c1.Mul(hit.u)).Add(tri.c2.Mul(hit.v))

	// Pass through translucent surfaces stochastically.
	if tri.mat.opacity < 1 && rng.Float32() > tri.mat.opacity {
		return p.pathTrace(pos.Add(dir.Mul(1e-4)), dir, depth, rng)
	}

	out := tri.mat.emissive

	// Direct lighting with shadow rays.
	for _, l := range p.lights {
		toLight := l.Direction.Mul(-1).Normalize()
		ndl := normal.Dot(toLight)
		if ndl <= 0 {
			continue
		}
		if p.scene.occluded(pos.Add(normal.Mul(1e-4)), toLight, math32.Inf(1)) {
			continue
		}
		out = out.Add(albedo.MulColor(l.Color).Mul(ndl * l.Intensity * (1 - tri.mat.metallic)))
	}

	// One indirect bounce sample: metals reflect, dielectrics scatter.
	var bounce mgl32.Vec3
	var tint Color
	if rng.Float32() < tri.mat.metallic {
		refl := dir.Sub(normal.Mul(2 * dir.Dot(normal)))
		bounce = refl.Add(randomInSphere(rng).Mul(tri.mat.roughness)).Normalize()
		tint = albedo
	} else {
		bounce = normal.Add(randomInSphere(rng)).Normalize()
		if bounce.Dot(normal) <= 0 {
			bounce = normal
		}
		tint = albedo.Mul(0.8)
	}
	indirect := p.pathTrace(pos.Add(normal.Mul(1e-4)), bounce, depth+1, rng)
	return out.Add(indirect.MulColor(tint))
}

func randomInSphere(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		if v.Dot(v) < 1 {
			return v
		}
	}
}

// denoisePass runs an edge-preserving median filter over the color planes.
func denoisePass(fb *Framebuffer) {
	img := fb.ToRGBA()
	out := effect.Median(img, 3)
	b := out.Bounds()
	for y := 0; y < fb.H && y < b.Dy(); y++ {
		for x := 0; x < fb.W && x < b.Dx(); x++ {
			o := out.PixOffset(x, y)
			i := (y*fb.W + x) * 4
			fb.Pix[i+0] = srgbToLinear(out.Pix[o+0])
			fb.Pix[i+1] = srgbToLinear(out.Pix[o+1])
			fb.Pix[i+2] = srgbToLinear(out.Pix[o+2])
		}
	}
}

// Light is a directional light. Direction points from the light toward the
// scene.
type Light struct {
	Direction mgl32.Vec3
	Color     Color
	Intensity float32
}
