package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math32.Sincos(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// QuatFromRotationX returns a rotation of angle radians about the X axis.
func QuatFromRotationX(angle float32) Quat {
	return QuatFromAxisAngle(Vec3X, angle)
}

// QuatFromRotationY returns a rotation of angle radians about the Y axis.
func QuatFromRotationY(angle float32) Quat {
	return QuatFromAxisAngle(Vec3Y, angle)
}

// QuatFromRotationZ returns a rotation of angle radians about the Z axis.
func QuatFromRotationZ(angle float32) Quat {
	return QuatFromAxisAngle(Vec3Z, angle)
}

// QuatFromBasis builds a rotation from orthonormal right, up and back vectors.
func QuatFromBasis(right, up, back Vec3) Quat {
	trace := right.X + up.Y + back.Z
	switch {
	case trace > 0:
		s := 0.5 / math32.Sqrt(trace+1)
		return Quat{
			X: (up.Z - back.Y) * s,
			Y: (back.X - right.Z) * s,
			Z: (right.Y - up.X) * s,
			W: 0.25 / s,
		}
	case right.X > up.Y && right.X > back.Z:
		s := 2 * math32.Sqrt(1+right.X-up.Y-back.Z)
		return Quat{
			X: 0.25 * s,
			Y: (up.X + right.Y) / s,
			Z: (back.X + right.Z) / s,
			W: (up.Z - back.Y) / s,
		}
	case up.Y > back.Z:
		s := 2 * math32.Sqrt(1+up.Y-right.X-back.Z)
		return Quat{
			X: (up.X + right.Y) / s,
			Y: 0.25 * s,
			Z: (back.Y + up.Z) / s,
			W: (back.X - right.Z) / s,
		}
	default:
		s := 2 * math32.Sqrt(1+back.Z-right.X-up.Y)
		return Quat{
			X: (back.X + right.Z) / s,
			Y: (back.Y + up.Z) / s,
			Z: 0.25 * s,
			W: (right.Y - up.X) / s,
		}
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{X: q.X * invLen, Y: q.Y * invLen, Z: q.Z * invLen, W: q.W * invLen}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul multiplies two quaternions. q.Mul(other) applies other first, then q.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// AngleTo returns the angle in radians of the rotation taking q to other.
func (q Quat) AngleTo(other Quat) float32 {
	r := q.Normalize().Conjugate().Mul(other.Normalize())
	v := math32.Sqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
	return 2 * math32.Atan2(v, math32.Abs(r.W))
}

// ApproxEqual reports whether q and other describe the same rotation within eps radians.
func (q Quat) ApproxEqual(other Quat, eps float32) bool {
	return q.AngleTo(other) <= eps
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
