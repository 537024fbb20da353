package quarkgl

// Shading selects how a material responds to light.
type Shading uint8

const (
	// ShadeLit applies the scene light (ambient + directional).
	ShadeLit Shading = iota
	// ShadeUnlit draws the base color as is.
	ShadeUnlit
	// ShadeNormal colors each face by its world-space normal.
	ShadeNormal
)

// Material is a minimal surface description.
//
// Materials are shared by pointer: mutating BaseColor or Opacity is picked up
// by the next Render.
type Material struct {
	BaseColor Color
	Shading   Shading

	// Transparent materials are blended using Opacity (0..255) and drawn after
	// every opaque mesh. Opaque materials ignore Opacity.
	Transparent bool
	Opacity     uint8
}

// LightMode defines minimal lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is a minimal light setup.
type Light struct {
	Mode      LightMode
	Ambient   Scalar // 0..1
	Dir       Vec3   // direction *towards* the scene
	DirAmount Scalar // 0..1
}

// SpotAt returns a directional light aimed from pos at the origin, which is
// how a distant spot light shading a small scene reads on flat faces.
func SpotAt(pos Vec3, ambient, amount Scalar) Light {
	return Light{
		Mode:      LightAmbientDirectional,
		Ambient:   ambient,
		Dir:       Normalize(pos.Mul(-1)),
		DirAmount: amount,
	}
}

// CameraType selects camera projection.
type CameraType uint8

const (
	CameraPerspective CameraType = iota
	CameraOrtho
)

// Camera describes the viewing transform.
type Camera struct {
	Type CameraType

	Position Vec3
	Target   Vec3
	Up       Vec3

	// Perspective.
	FOVYRad Scalar

	// Orthographic (half-height).
	OrthoSize Scalar

	// Aspect overrides the target aspect ratio when non-zero.
	Aspect Scalar

	Near Scalar
	Far  Scalar
}

func (c Camera) up() Vec3 {
	if c.Up == (Vec3{}) {
		return V3(0, 1, 0)
	}
	return c.Up
}

// View returns the camera view matrix.
func (c Camera) View() Mat4 {
	return Mat4LookAt(c.Position, c.Target, c.up())
}

// Orientation returns the camera's world rotation: the rotation that maps
// the -Z axis onto the viewing direction. Nodes given this rotation face
// the camera.
func (c Camera) Orientation() Quat {
	f := Normalize(c.Target.Sub(c.Position))
	if f == (Vec3{}) {
		return QuatIdentity()
	}
	s := Normalize(Cross(f, c.up()))
	if s == (Vec3{}) {
		return QuatIdentity()
	}
	u := Cross(s, f)
	return QuatFromMat4(Mat4{
		s.X, s.Y, s.Z, 0,
		u.X, u.Y, u.Z, 0,
		-f.X, -f.Y, -f.Z, 0,
		0, 0, 0, 1,
	})
}

// Projection returns the projection matrix for a target aspect.
func (c Camera) Projection(aspect Scalar) Mat4 {
	if c.Aspect != 0 {
		aspect = c.Aspect
	}
	switch c.Type {
	case CameraOrtho:
		size := c.OrthoSize
		if size == 0 {
			size = 1
		}
		top := size
		bottom := -size
		right := size * aspect
		left := -right
		return Mat4Ortho(left, right, bottom, top, c.Near, c.Far)
	default:
		fov := c.FOVYRad
		if fov == 0 {
			fov = Scalar(1.0)
		}
		return Mat4Perspective(fov, aspect, c.Near, c.Far)
	}
}

// Scene is a node graph plus the camera and light used to render it.
type Scene struct {
	Camera Camera
	Light  Light
	Root   *Node
}

// NewScene returns an empty scene with a default camera and light.
func NewScene() *Scene {
	return &Scene{
		Camera: Camera{
			Type:      CameraPerspective,
			Position:  V3(0, 0, 3),
			Target:    V3(0, 0, 0),
			Up:        V3(0, 1, 0),
			FOVYRad:   Scalar(1.0),
			Near:      Scalar(0.05),
			Far:       Scalar(100),
			OrthoSize: Scalar(1),
		},
		Light: Light{
			Mode:      LightAmbientDirectional,
			Ambient:   Scalar(0.25),
			Dir:       Normalize(V3(1, 1, 1)),
			DirAmount: Scalar(0.75),
		},
		Root: NewGroup("scene"),
	}
}

// Add attaches nodes to the scene root.
func (s *Scene) Add(nodes ...*Node) {
	if s == nil {
		return
	}
	s.Root.Add(nodes...)
}

// Remove detaches n from wherever it is in the scene.
func (s *Scene) Remove(n *Node) bool {
	if s == nil || !s.Contains(n) {
		return false
	}
	return n.RemoveFromParent()
}

// Contains reports whether n is attached under the scene root.
func (s *Scene) Contains(n *Node) bool {
	if s == nil || n == nil {
		return false
	}
	for p := n; p != nil; p = p.parent {
		if p == s.Root {
			return true
		}
	}
	return false
}
