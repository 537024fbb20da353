package quarkgl

import "sort"

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it; the depth buffer and draw list are kept
// between frames.
type Renderer struct {
	Mode       RenderMode
	Depth      bool
	ClearColor Color

	depthBuf []float32
	items    []drawItem
	stats    Stats
}

// Stats describes the last Render call.
type Stats struct {
	Meshes      int
	Transparent int
	Triangles   int
}

type drawItem struct {
	node  *Node
	world Mat4
	depth Scalar
}

// NewRenderer creates a renderer for a given maximum target size.
//
// If enableDepth is true, a depth buffer of size w*h is allocated.
func NewRenderer(w, h int, enableDepth bool) *Renderer {
	r := &Renderer{
		Mode:       RenderSolidFlat,
		Depth:      enableDepth,
		ClearColor: RGB(0, 0, 0),
	}
	if enableDepth && w > 0 && h > 0 {
		r.depthBuf = make([]float32, w*h)
	}
	return r
}

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

// Stats returns counters from the last Render.
func (r *Renderer) Stats() Stats { return r.stats }

// Resize adjusts the depth buffer to a new target size.
func (r *Renderer) Resize(w, h int) {
	r.EnableDepth(r.Depth, w, h)
}

func (r *Renderer) EnableDepth(on bool, w, h int) {
	r.Depth = on
	if !on {
		r.depthBuf = nil
		return
	}
	if w <= 0 || h <= 0 {
		r.depthBuf = nil
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
}

func (r *Renderer) clearDepth() {
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// Render renders a scene into the target.
func (r *Renderer) Render(t Target, s *Scene) {
	if r == nil || t == nil || s == nil || s.Root == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(r.ClearColor)
	r.stats = Stats{}

	if r.Depth {
		r.EnableDepth(true, w, h)
		r.clearDepth()
	}

	aspect := Scalar(w) / Scalar(h)
	view := s.Camera.View()
	viewProj := Mat4Mul(s.Camera.Projection(aspect), view)
	reader, _ := t.(PixelReader)
	pass := meshPass{
		t: t, reader: reader, w: w, h: h,
		viewProj: viewProj,
		light:    s.Light,
		eye:      s.Camera.Position,
	}

	r.items = r.items[:0]
	s.Root.Walk(func(n *Node, world Mat4) {
		if n.Geometry == nil || n.Material == nil {
			return
		}
		if n.Material.Transparent {
			if n.Material.Opacity == 0 {
				return
			}
			c := Mat4MulPoint(view, V3(world[12], world[13], world[14]))
			r.items = append(r.items, drawItem{node: n, world: world, depth: c.Z})
			return
		}
		r.renderMesh(pass, world, n.Geometry, n.Material, false)
	})

	// View space looks down -Z: most negative depth is farthest.
	sort.SliceStable(r.items, func(i, j int) bool { return r.items[i].depth < r.items[j].depth })
	for i := range r.items {
		it := &r.items[i]
		r.renderMesh(pass, it.world, it.node.Geometry, it.node.Material, true)
		it.node = nil
	}
}

type meshPass struct {
	t        Target
	reader   PixelReader
	w, h     int
	viewProj Mat4
	light    Light
	eye      Vec3
}

func (r *Renderer) renderMesh(p meshPass, world Mat4, g *Geometry, mat *Material, blend bool) {
	if len(g.Vertices) == 0 || len(g.Indices) < 3 {
		return
	}
	r.stats.Meshes++
	if blend {
		r.stats.Transparent++
	}
	mvp := Mat4Mul(p.viewProj, world)

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0 := int(g.Indices[i+0])
		i1 := int(g.Indices[i+1])
		i2 := int(g.Indices[i+2])
		if i0 >= len(g.Vertices) || i1 >= len(g.Vertices) || i2 >= len(g.Vertices) {
			continue
		}

		v0 := g.Vertices[i0]
		v1 := g.Vertices[i1]
		v2 := g.Vertices[i2]

		p0 := Mat4MulV4(mvp, Vec4{X: v0.Pos.X, Y: v0.Pos.Y, Z: v0.Pos.Z, W: 1})
		p1 := Mat4MulV4(mvp, Vec4{X: v1.Pos.X, Y: v1.Pos.Y, Z: v1.Pos.Z, W: 1})
		p2 := Mat4MulV4(mvp, Vec4{X: v2.Pos.X, Y: v2.Pos.Y, Z: v2.Pos.Z, W: 1})

		// Trivial clip: a vertex on or behind the eye plane drops the triangle.
		if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 {
			continue
		}

		ndc0 := clipToNDC(p0)
		ndc1 := clipToNDC(p1)
		ndc2 := clipToNDC(p2)

		x0, y0 := ndcToScreen(ndc0, p.w, p.h)
		x1, y1 := ndcToScreen(ndc1, p.w, p.h)
		x2, y2 := ndcToScreen(ndc2, p.w, p.h)

		c := r.shade(p, world, mat, v0.Pos, v1.Pos, v2.Pos)
		if blend {
			c.A = mat.Opacity
		}
		r.stats.Triangles++

		switch r.Mode {
		case RenderWireframe:
			r.drawLine(p, x0, y0, x1, y1, c)
			r.drawLine(p, x1, y1, x2, y2, c)
			r.drawLine(p, x2, y2, x0, y0, c)
		case RenderSolidVertexColor:
			r.fillTriangle(p, !blend, x0, y0, ndc0.Z, v0.Color, x1, y1, ndc1.Z, v1.Color, x2, y2, ndc2.Z, v2.Color, c.A)
		default:
			r.fillTriangleFlat(p, !blend, x0, y0, ndc0.Z, x1, y1, ndc1.Z, x2, y2, ndc2.Z, c)
		}
	}
}

func (r *Renderer) shade(p meshPass, world Mat4, mat *Material, a, b, c Vec3) Color {
	base := mat.BaseColor
	base.A = 0xFF
	if mat.Shading == ShadeUnlit {
		return base
	}
	wa := Mat4MulPoint(world, a)
	n := triangleNormal(wa, Mat4MulPoint(world, b), Mat4MulPoint(world, c))
	// Faces are double sided: light the side facing the eye.
	if Dot(n, p.eye.Sub(wa)) < 0 {
		n = n.Mul(-1)
	}
	switch mat.Shading {
	case ShadeNormal:
		return RGB(
			uint8(Clamp01(n.X*0.5+0.5)*255),
			uint8(Clamp01(n.Y*0.5+0.5)*255),
			uint8(Clamp01(n.Z*0.5+0.5)*255),
		)
	default:
		if p.light.Mode == LightAmbientDirectional {
			base = base.MulScalar(lightIntensity(p.light, n))
		}
		return base
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

func clipToNDC(p Vec4) ndcPoint {
	invW := 1.0 / p.W
	return ndcPoint{X: p.X * invW, Y: p.Y * invW, Z: p.Z * invW}
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func triangleNormal(a, b, c Vec3) Vec3 {
	return Normalize(Cross(b.Sub(a), c.Sub(a)))
}

func lightIntensity(l Light, n Vec3) Scalar {
	amb := Clamp01(l.Ambient)
	dir := Clamp01(l.DirAmount)
	ld := Normalize(l.Dir)
	if ld == (Vec3{}) {
		return amb
	}
	d := Dot(n, ld.Mul(-1))
	if d < 0 {
		d = 0
	}
	return Clamp01(amb + d*dir)
}

func (r *Renderer) depthTest(w int, x, y int, z float32, write bool) bool {
	if !r.Depth || r.depthBuf == nil {
		return true
	}
	if x < 0 || y < 0 || x >= w {
		return false
	}
	idx := y*w + x
	if idx < 0 || idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]. Map to [0,1].
	d := z*0.5 + 0.5
	if d < 0 || d > 1 {
		return false
	}
	if d >= r.depthBuf[idx] {
		return false
	}
	if write {
		r.depthBuf[idx] = d
	}
	return true
}

// plot writes c, blending it over the target when c is translucent.
func plot(p meshPass, x, y int, c Color) {
	switch {
	case c.A == 0xFF:
		p.t.SetPixel(x, y, c)
	case p.reader != nil:
		p.t.SetPixel(x, y, c.Over(p.reader.Pixel(x, y)))
	case c.A >= 0x80:
		p.t.SetPixel(x, y, c.WithAlpha(0xFF))
	}
}

func (r *Renderer) drawLine(p meshPass, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < p.w && y0 < p.h {
			plot(p, x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

type screenBox struct {
	minX, minY, maxX, maxY int
}

func clipBox(w, h int, x0, y0, x1, y1, x2, y2 int) (screenBox, bool) {
	b := screenBox{
		minX: max(min3(x0, x1, x2), 0),
		minY: max(min3(y0, y1, y2), 0),
		maxX: min(max3(x0, x1, x2), w-1),
		maxY: min(max3(y0, y1, y2), h-1),
	}
	return b, b.minX <= b.maxX && b.minY <= b.maxY
}

func (r *Renderer) fillTriangleFlat(p meshPass, writeDepth bool, x0, y0 int, z0 float32, x1, y1 int, z1 float32, x2, y2 int, z2 float32, c Color) {
	box, ok := clipBox(p.w, p.h, x0, y0, x1, y1, x2, y2)
	if !ok {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	if area < 0 {
		// Double sided: rewind back faces.
		x1, y1, z1, x2, y2, z2 = x2, y2, z2, x1, y1, z1
		area = -area
	}
	invArea := 1.0 / float32(area)

	for y := box.minY; y <= box.maxY; y++ {
		for x := box.minX; x <= box.maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			z := a0*z0 + a1*z1 + a2*z2
			if !r.depthTest(p.w, x, y, z, writeDepth) {
				continue
			}
			plot(p, x, y, c)
		}
	}
}

func (r *Renderer) fillTriangle(p meshPass, writeDepth bool, x0, y0 int, z0 float32, c0 Color, x1, y1 int, z1 float32, c1 Color, x2, y2 int, z2 float32, c2 Color, alpha uint8) {
	box, ok := clipBox(p.w, p.h, x0, y0, x1, y1, x2, y2)
	if !ok {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	if area < 0 {
		x1, y1, z1, c1, x2, y2, z2, c2 = x2, y2, z2, c2, x1, y1, z1, c1
		area = -area
	}
	invArea := 1.0 / float32(area)

	r0, g0, b0 := float32(c0.R), float32(c0.G), float32(c0.B)
	r1, g1, b1 := float32(c1.R), float32(c1.G), float32(c1.B)
	r2, g2, b2 := float32(c2.R), float32(c2.G), float32(c2.B)

	for y := box.minY; y <= box.maxY; y++ {
		for x := box.minX; x <= box.maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			z := a0*z0 + a1*z1 + a2*z2
			if !r.depthTest(p.w, x, y, z, writeDepth) {
				continue
			}
			rr := uint8(clampF32(a0*r0+a1*r1+a2*r2, 0, 255))
			gg := uint8(clampF32(a0*g0+a1*g1+a2*g2, 0, 255))
			bb := uint8(clampF32(a0*b0+a1*b1+a2*b2, 0, 255))
			plot(p, x, y, Color{R: rr, G: gg, B: bb, A: alpha})
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min3(a, b, c int) int {
	return min(a, b, c)
}

func max3(a, b, c int) int {
	return max(a, b, c)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
