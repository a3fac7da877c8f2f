package camera

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithPose sets the camera's starting transform.
//
// Parameters:
//   - pose: position, rotation and orthographic size
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's pose
func WithPose(pose common.Pose) CameraBuilderOption {
	return func(c *cameraImpl) {
		pose.Rotation = pose.Rotation.Normalize()
		c.pose = pose
	}
}

// WithPosition sets the camera's starting position.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose.Position = p
	}
}

// WithRotation sets the camera's starting rotation.
//
// Parameters:
//   - q: world-space rotation
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's rotation
func WithRotation(q mgl32.Quat) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose.Rotation = q.Normalize()
	}
}

// WithOrthographicSize sets the camera's starting orthographic half-height.
//
// Parameters:
//   - size: orthographic size
//
// Returns:
//   - CameraBuilderOption: a function that sets the orthographic size
func WithOrthographicSize(size float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose.Size = size
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithWriteObserver registers a callback invoked on every camera write with the frame number and writer.
// Intended for instrumentation; the callback runs with the camera lock held and must not call back into the camera.
//
// Parameters:
//   - fn: the observer callback
//
// Returns:
//   - CameraBuilderOption: a function that sets the observer
func WithWriteObserver(fn func(frame uint64, w Writer)) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.observer = fn
	}
}

// WithLogger sets the logger used to report writer conflicts.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - CameraBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) CameraBuilderOption {
	return func(c *cameraImpl) {
		if l != nil {
			c.logger = l
		}
	}
}
