package quarkgl

import "math"

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	Color  Color
}

// Geometry is an indexed triangle list. Geometries are immutable once built
// and may be shared by several nodes.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16
}

// Triangles returns the number of triangles in g.
func (g *Geometry) Triangles() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of g.
func (g *Geometry) Bounds() (lo, hi Vec3) {
	if g == nil || len(g.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	lo, hi = g.Vertices[0].Pos, g.Vertices[0].Pos
	for _, v := range g.Vertices[1:] {
		p := v.Pos
		lo = V3(minS(lo.X, p.X), minS(lo.Y, p.Y), minS(lo.Z, p.Z))
		hi = V3(maxS(hi.X, p.X), maxS(hi.Y, p.Y), maxS(hi.Z, p.Z))
	}
	return lo, hi
}

// appendQuad adds a quad a-b-c-d, counter-clockwise seen from the side n
// points to. It reports false if the 16-bit index space is exhausted.
func (g *Geometry) appendQuad(a, b, c, d, n Vec3) bool {
	base := len(g.Vertices)
	if base+4 > math.MaxUint16 {
		return false
	}
	white := RGB(0xFF, 0xFF, 0xFF)
	g.Vertices = append(g.Vertices,
		Vertex{Pos: a, Normal: n, Color: white},
		Vertex{Pos: b, Normal: n, Color: white},
		Vertex{Pos: c, Normal: n, Color: white},
		Vertex{Pos: d, Normal: n, Color: white},
	)
	i := uint16(base)
	g.Indices = append(g.Indices, i, i+1, i+2, i, i+2, i+3)
	return true
}

// appendCuboid adds the faces of the box [lo, hi]; faces whose bit is set in
// skip are left out (see the face* constants).
func (g *Geometry) appendCuboid(lo, hi Vec3, skip uint8) bool {
	x0, y0, z0 := lo.X, lo.Y, lo.Z
	x1, y1, z1 := hi.X, hi.Y, hi.Z
	faces := [...]struct {
		bit        uint8
		a, b, c, d Vec3
		n          Vec3
	}{
		{faceFront, V3(x0, y0, z1), V3(x1, y0, z1), V3(x1, y1, z1), V3(x0, y1, z1), V3(0, 0, 1)},
		{faceBack, V3(x1, y0, z0), V3(x0, y0, z0), V3(x0, y1, z0), V3(x1, y1, z0), V3(0, 0, -1)},
		{faceRight, V3(x1, y0, z1), V3(x1, y0, z0), V3(x1, y1, z0), V3(x1, y1, z1), V3(1, 0, 0)},
		{faceLeft, V3(x0, y0, z0), V3(x0, y0, z1), V3(x0, y1, z1), V3(x0, y1, z0), V3(-1, 0, 0)},
		{faceTop, V3(x0, y1, z1), V3(x1, y1, z1), V3(x1, y1, z0), V3(x0, y1, z0), V3(0, 1, 0)},
		{faceBottom, V3(x0, y0, z0), V3(x1, y0, z0), V3(x1, y0, z1), V3(x0, y0, z1), V3(0, -1, 0)},
	}
	for _, f := range faces {
		if skip&f.bit != 0 {
			continue
		}
		if !g.appendQuad(f.a, f.b, f.c, f.d, f.n) {
			return false
		}
	}
	return true
}

const (
	faceFront uint8 = 1 << iota
	faceBack
	faceRight
	faceLeft
	faceTop
	faceBottom
)

// NewBoxGeometry returns a width x height x depth box centred on the origin.
func NewBoxGeometry(width, height, depth Scalar) *Geometry {
	g := &Geometry{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint16, 0, 36),
	}
	h := V3(width/2, height/2, depth/2)
	g.appendCuboid(h.Mul(-1), h, 0)
	return g
}

// NewCircleGeometry returns a disc of the given radius in the XY plane
// facing +Z. segments is clamped to [3, 256].
func NewCircleGeometry(radius Scalar, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	if segments > 256 {
		segments = 256
	}
	g := &Geometry{
		Vertices: make([]Vertex, 0, segments+1),
		Indices:  make([]uint16, 0, segments*3),
	}
	n := V3(0, 0, 1)
	white := RGB(0xFF, 0xFF, 0xFF)
	g.Vertices = append(g.Vertices, Vertex{Pos: Vec3{}, Normal: n, Color: white})
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		p := V3(radius*Scalar(math.Cos(a)), radius*Scalar(math.Sin(a)), 0)
		g.Vertices = append(g.Vertices, Vertex{Pos: p, Normal: n, Color: white})
	}
	for i := 0; i < segments; i++ {
		next := (i+1)%segments + 1
		g.Indices = append(g.Indices, 0, uint16(i+1), uint16(next))
	}
	return g
}

func minS(a, b Scalar) Scalar {
	if a < b {
		return a
	}
	return b
}

func maxS(a, b Scalar) Scalar {
	if a > b {
		return a
	}
	return b
}
