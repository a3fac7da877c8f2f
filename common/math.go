package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// AxisX is the world right axis.
	AxisX = mgl32.Vec3{1, 0, 0}
	// AxisY is the world up axis.
	AxisY = mgl32.Vec3{0, 1, 0}
	// AxisZ is the world forward axis.
	AxisZ = mgl32.Vec3{0, 0, 1}
)

// gimbalThreshold is the |sin(pitch)| above which EulerAngles treats the rotation as gimbal locked.
const gimbalThreshold = 0.99999

// Euler builds a rotation from angles in degrees. Roll (z) is applied first, then pitch (x), then yaw (y),
// which makes the result equal to Ry * Rx * Rz.
//
// Parameters:
//   - x: pitch in degrees
//   - y: yaw in degrees
//   - z: roll in degrees
//
// Returns:
//   - mgl32.Quat: the composed rotation
func Euler(x, y, z float32) mgl32.Quat {
	qy := mgl32.QuatRotate(mgl32.DegToRad(y), AxisY)
	qx := mgl32.QuatRotate(mgl32.DegToRad(x), AxisX)
	qz := mgl32.QuatRotate(mgl32.DegToRad(z), AxisZ)
	return qy.Mul(qx).Mul(qz)
}

// EulerAngles decomposes a rotation into the angles Euler would need to rebuild it.
// Each angle is returned in degrees within [0, 360). The pitch is always in [-90, 90] before wrapping.
// Near the poles the roll is folded into the yaw and returned as 0.
//
// Parameters:
//   - q: the rotation to decompose
//
// Returns:
//   - x, y, z: pitch, yaw and roll in degrees within [0, 360)
func EulerAngles(q mgl32.Quat) (x, y, z float32) {
	m := q.Normalize().Mat4()
	sx := mgl32.Clamp(-m.At(1, 2), -1, 1)
	x = math32.Asin(sx)
	if math32.Abs(sx) < gimbalThreshold {
		y = math32.Atan2(m.At(0, 2), m.At(2, 2))
		z = math32.Atan2(m.At(1, 0), m.At(1, 1))
	} else {
		y = math32.Atan2(-m.At(2, 0), m.At(0, 0))
		z = 0
	}
	return UnsignedAngle(mgl32.RadToDeg(x)), UnsignedAngle(mgl32.RadToDeg(y)), UnsignedAngle(mgl32.RadToDeg(z))
}

// SignedAngle wraps an angle in degrees into (-180, 180].
//
// Parameters:
//   - deg: angle in degrees
//
// Returns:
//   - float32: the equivalent angle within (-180, 180]
func SignedAngle(deg float32) float32 {
	deg = math32.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// UnsignedAngle wraps an angle in degrees into [0, 360).
//
// Parameters:
//   - deg: angle in degrees
//
// Returns:
//   - float32: the equivalent angle within [0, 360)
func UnsignedAngle(deg float32) float32 {
	deg = math32.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	if deg == 0 {
		return 0
	}
	return deg
}

// ClampPitch limits the pitch of a rotation to [minDeg, maxDeg] and leaves yaw and roll as decomposed.
// The pitch is moved to the signed range before clamping and back to [0, 360) afterwards.
//
// Parameters:
//   - q: the rotation to limit
//   - minDeg: lowest allowed pitch in degrees
//   - maxDeg: highest allowed pitch in degrees
//
// Returns:
//   - mgl32.Quat: the limited rotation
func ClampPitch(q mgl32.Quat, minDeg, maxDeg float32) mgl32.Quat {
	x, y, z := EulerAngles(q)
	pitch := mgl32.Clamp(SignedAngle(x), minDeg, maxDeg)
	return Euler(UnsignedAngle(pitch), y, z)
}

// Slerp spherically interpolates between two rotations along the shorter arc.
//
// Parameters:
//   - from: rotation at t = 0
//   - to: rotation at t = 1
//   - t: blend factor, clamped to [0, 1]
//
// Returns:
//   - mgl32.Quat: the interpolated rotation
func Slerp(from, to mgl32.Quat, t float32) mgl32.Quat {
	t = mgl32.Clamp(t, 0, 1)
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	if t == 1 {
		return to.Normalize()
	}
	return mgl32.QuatSlerp(from, to, t)
}

// LookRotation returns the rotation that turns +Z onto forward while keeping +Y as close to up as possible.
// A forward parallel to up falls back to +X as the right axis.
//
// Parameters:
//   - forward: the direction to face (need not be normalized)
//   - up: the reference up direction
//
// Returns:
//   - mgl32.Quat: the look rotation, or identity when forward has no length
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	if forward.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Len() < 1e-6 {
		r = AxisX
	}
	r = r.Normalize()
	u := f.Cross(r)

	m := mgl32.Mat4{
		r[0], r[1], r[2], 0,
		u[0], u[1], u[2], 0,
		f[0], f[1], f[2], 0,
		0, 0, 0, 1,
	}
	return mgl32.Mat4ToQuat(m).Normalize()
}

// SameRotation reports whether two quaternions describe the same rotation within epsilon.
// q and -q are treated as equal.
//
// Parameters:
//   - a, b: rotations to compare
//   - epsilon: tolerance on 1 - |a·b|
//
// Returns:
//   - bool: true if the rotations match
func SameRotation(a, b mgl32.Quat, epsilon float32) bool {
	return 1-math32.Abs(a.Normalize().Dot(b.Normalize())) <= epsilon
}

// IsDegenerate reports whether a quaternion cannot be inverted or normalized safely.
//
// Parameters:
//   - q: the quaternion to check
//
// Returns:
//   - bool: true for zero-length or non-finite quaternions
func IsDegenerate(q mgl32.Quat) bool {
	for _, c := range [4]float32{q.W, q.V[0], q.V[1], q.V[2]} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return true
		}
	}
	return q.Len() < 1e-6
}

// Lerp linearly interpolates between two scalars.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: blend factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 linearly interpolates between two vectors.
//
// Parameters:
//   - a: vector at t = 0
//   - b: vector at t = 1
//   - t: blend factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
