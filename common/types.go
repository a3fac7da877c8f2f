// package common contains plain math helpers and value types shared across the viewer. They are not
// interface-wrapped structs, just plain data and pure functions.
package common

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a full camera transform: world position, rotation and orthographic size.
type Pose struct {
	// Position is the world-space camera position.
	Position mgl32.Vec3
	// Rotation is the world-space camera rotation.
	Rotation mgl32.Quat
	// Size is the orthographic half-height of the view volume.
	Size float32
}

// ApproxEqual reports whether two poses match within epsilon on every component.
// Rotations are compared with SameRotation so q and -q are equal.
//
// Parameters:
//   - other: the pose to compare against
//   - epsilon: tolerance for position, size and rotation
//
// Returns:
//   - bool: true if the poses match
func (p Pose) ApproxEqual(other Pose, epsilon float32) bool {
	return p.Position.ApproxEqualThreshold(other.Position, epsilon) &&
		mgl32.FloatEqualThreshold(p.Size, other.Size, epsilon) &&
		SameRotation(p.Rotation, other.Rotation, epsilon)
}

// String formats the pose with its rotation as Euler angles.
func (p Pose) String() string {
	x, y, z := EulerAngles(p.Rotation)
	return fmt.Sprintf("pos=(%.2f, %.2f, %.2f) rot=(%.1f, %.1f, %.1f) size=%.2f",
		p.Position[0], p.Position[1], p.Position[2], x, y, z, p.Size)
}

// RemapGyro converts a device attitude quaternion into the viewer's coordinate convention.
// The fixed (x, y, -z, -w) remap flips handedness between the sensor frame and the world frame.
//
// Parameters:
//   - attitude: raw attitude as reported by the gyroscope
//
// Returns:
//   - mgl32.Quat: the attitude in world convention
func RemapGyro(attitude mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{
		W: -attitude.W,
		V: mgl32.Vec3{attitude.V[0], attitude.V[1], -attitude.V[2]},
	}
}

// AccelerometerEuler derives pitch and yaw in degrees from a gravity vector.
// Roll cannot be observed from gravity alone and is always 0; yaw is unstable when the device lies flat.
//
// Parameters:
//   - g: the accelerometer reading
//
// Returns:
//   - pitch, yaw, roll: angles in degrees
func AccelerometerEuler(g mgl32.Vec3) (pitch, yaw, roll float32) {
	if g.Len() > 0 {
		g = g.Normalize()
	}
	pitch = mgl32.RadToDeg(math32.Atan2(-g[1], -g[2]))
	yaw = mgl32.RadToDeg(math32.Atan2(-g[0], -g[2]))
	return pitch, yaw, 0
}
