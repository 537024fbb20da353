package quarkgl

// OrbitController orbits a camera around a target point.
//
// It does not depend on any input system; callers feed it deltas.
type OrbitController struct {
	Target Vec3
	Yaw    Scalar
	Pitch  Scalar
	Radius Scalar

	MinRadius Scalar
	MaxRadius Scalar

	// MaxPitch bounds |Pitch| when non-zero so the camera never flips over
	// the poles.
	MaxPitch Scalar
}

func (c *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := c.Radius
	if r == 0 {
		r = Scalar(3)
	}
	if c.MinRadius != 0 && r < c.MinRadius {
		r = c.MinRadius
	}
	if c.MaxRadius != 0 && r > c.MaxRadius {
		r = c.MaxRadius
	}

	m := Mat4Mul(Mat4RotateY(c.Yaw), Mat4RotateX(c.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = c.Target.Add(V3(p.X, p.Y, p.Z))
	cam.Target = c.Target
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch Scalar) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	if c.MaxPitch != 0 {
		if c.Pitch > c.MaxPitch {
			c.Pitch = c.MaxPitch
		}
		if c.Pitch < -c.MaxPitch {
			c.Pitch = -c.MaxPitch
		}
	}
}

func (c *OrbitController) Zoom(delta Scalar) {
	c.Radius += delta
	if c.MinRadius != 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}
}

// Reset returns the controller to yaw 0, pitch 0 at the given radius.
func (c *OrbitController) Reset(radius Scalar) {
	c.Yaw, c.Pitch = 0, 0
	c.Radius = radius
}
