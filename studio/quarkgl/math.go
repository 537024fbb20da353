package quarkgl

import "math"

// Scalar is the numeric type used by quarkgl math.
type Scalar = float32

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z Scalar
}

// Vec4 is a 4D vector.
type Vec4 struct {
	X, Y, Z, W Scalar
}

// Mat4 is a column-major 4x4 matrix: m[col*4+row].
type Mat4 [16]Scalar

func V3(x, y, z Scalar) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3   { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3   { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(s Scalar) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func Dot(a, b Vec3) Scalar { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func Cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func Len(v Vec3) Scalar {
	return Scalar(math.Sqrt(float64(Dot(v, v))))
}

func Normalize(v Vec3) Vec3 {
	l := Len(v)
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

func Clamp01(v Scalar) Scalar {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func Mat4Mul(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col*4+row] =
				a[0*4+row]*b[col*4+0] +
					a[1*4+row]*b[col*4+1] +
					a[2*4+row]*b[col*4+2] +
					a[3*4+row]*b[col*4+3]
		}
	}
	return out
}

func Mat4MulV4(m Mat4, v Vec4) Vec4 {
	return Vec4{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		W: m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Mat4MulPoint transforms a point (w = 1) and drops the w component.
func Mat4MulPoint(m Mat4, p Vec3) Vec3 {
	r := Mat4MulV4(m, Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1})
	return Vec3{X: r.X, Y: r.Y, Z: r.Z}
}

func Mat4Translate(v Vec3) Mat4 {
	m := Mat4Identity()
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
	return m
}

func Mat4Scale(v Vec3) Mat4 {
	m := Mat4Identity()
	m[0] = v.X
	m[5] = v.Y
	m[10] = v.Z
	return m
}

func Mat4RotateX(rad Scalar) Mat4 {
	c := Scalar(math.Cos(float64(rad)))
	s := Scalar(math.Sin(float64(rad)))
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

func Mat4RotateY(rad Scalar) Mat4 {
	c := Scalar(math.Cos(float64(rad)))
	s := Scalar(math.Sin(float64(rad)))
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

func Mat4RotateZ(rad Scalar) Mat4 {
	c := Scalar(math.Cos(float64(rad)))
	s := Scalar(math.Sin(float64(rad)))
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	f := Normalize(target.Sub(eye))
	s := Normalize(Cross(f, up))
	u := Cross(s, f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-Dot(s, eye), -Dot(u, eye), Dot(f, eye), 1,
	}
}

func Mat4Perspective(fovYRad Scalar, aspect Scalar, zNear, zFar Scalar) Mat4 {
	if aspect == 0 {
		aspect = 1
	}
	f := Scalar(1) / Scalar(math.Tan(float64(fovYRad)/2))
	nf := Scalar(1) / (zNear - zFar)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (zFar + zNear) * nf, -1,
		0, 0, (2 * zFar * zNear) * nf, 0,
	}
}

func Mat4Ortho(left, right, bottom, top, zNear, zFar Scalar) Mat4 {
	rl := right - left
	tb := top - bottom
	fn := zFar - zNear
	if rl == 0 {
		rl = 1
	}
	if tb == 0 {
		tb = 1
	}
	if fn == 0 {
		fn = 1
	}
	return Mat4{
		2 / rl, 0, 0, 0,
		0, 2 / tb, 0, 0,
		0, 0, -2 / fn, 0,
		-(right + left) / rl, -(top + bottom) / tb, -(zFar + zNear) / fn, 1,
	}
}

// Quat is a rotation quaternion (X, Y, Z vector part; W scalar part).
type Quat struct {
	X, Y, Z, W Scalar
}

func QuatIdentity() Quat { return Quat{W: 1} }

// QuatFromAxisAngle returns the rotation of rad radians around axis.
// A zero axis yields the identity.
func QuatFromAxisAngle(axis Vec3, rad Scalar) Quat {
	a := Normalize(axis)
	if a == (Vec3{}) {
		return QuatIdentity()
	}
	half := float64(rad) / 2
	s := Scalar(math.Sin(half))
	return Quat{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: Scalar(math.Cos(half))}
}

// Mul returns q*p: the rotation p followed by q.
func (q Quat) Mul(p Quat) Quat {
	return Quat{
		X: q.W*p.X + q.X*p.W + q.Y*p.Z - q.Z*p.Y,
		Y: q.W*p.Y - q.X*p.Z + q.Y*p.W + q.Z*p.X,
		Z: q.W*p.Z + q.X*p.Y - q.Y*p.X + q.Z*p.W,
		W: q.W*p.W - q.X*p.X - q.Y*p.Y - q.Z*p.Z,
	}
}

func (q Quat) Normalize() Quat {
	l := Scalar(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return Mat4MulPoint(Mat4FromQuat(q), v)
}

// Mat4FromQuat builds the rotation matrix of a unit quaternion.
func Mat4FromQuat(q Quat) Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// QuatFromMat4 extracts the rotation of the upper 3x3 block of m, which must
// be a pure rotation.
func QuatFromMat4(m Mat4) Quat {
	m00, m01, m02 := float64(m[0]), float64(m[4]), float64(m[8])
	m10, m11, m12 := float64(m[1]), float64(m[5]), float64(m[9])
	m20, m21, m22 := float64(m[2]), float64(m[6]), float64(m[10])

	var x, y, z, w float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return Quat{X: Scalar(x), Y: Scalar(y), Z: Scalar(z), W: Scalar(w)}.Normalize()
}
