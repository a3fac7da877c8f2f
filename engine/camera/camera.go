package camera

import (
	"log"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

// Writer identifies the component that mutates the camera transform in a frame.
type Writer string

// Writers used by the viewer's components.
const (
	WriterGyro      Writer = "gyro"
	WriterSwipe     Writer = "swipe"
	WriterNavigator Writer = "navigator"
)

type cameraImpl struct {
	mu *sync.Mutex

	pose common.Pose

	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	frame        uint64
	frameWriters []Writer
	conflicts    int

	observer func(frame uint64, w Writer)
	logger   *log.Logger
}

// Camera is the single shared camera transform of the viewer.
// Any component may read it; every mutation names its Writer so the camera can verify that at most
// one writer touches the transform per frame. A second distinct writer in the same frame is a conflict:
// the write still lands, but it is logged and counted.
type Camera interface {
	// Pose returns the full camera transform.
	//
	// Returns:
	//   - common.Pose: position, rotation and orthographic size
	Pose() common.Pose

	// Position returns the world-space camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the camera position
	Position() mgl32.Vec3

	// Rotation returns the world-space camera rotation.
	//
	// Returns:
	//   - mgl32.Quat: the camera rotation
	Rotation() mgl32.Quat

	// OrthographicSize returns the orthographic half-height of the view volume.
	//
	// Returns:
	//   - float32: the orthographic size
	OrthographicSize() float32

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - w: the writer performing the mutation
	//   - p: the new world-space position
	SetPosition(w Writer, p mgl32.Vec3)

	// SetRotation rotates the camera.
	//
	// Parameters:
	//   - w: the writer performing the mutation
	//   - q: the new world-space rotation
	SetRotation(w Writer, q mgl32.Quat)

	// SetOrthographicSize changes the orthographic half-height.
	//
	// Parameters:
	//   - w: the writer performing the mutation
	//   - size: the new orthographic size
	SetOrthographicSize(w Writer, size float32)

	// SetPose replaces the whole transform in a single write.
	//
	// Parameters:
	//   - w: the writer performing the mutation
	//   - pose: the new transform
	SetPose(w Writer, pose common.Pose)

	// BeginFrame starts a new frame and forgets the previous frame's writers.
	//
	// Returns:
	//   - uint64: the new frame number
	BeginFrame() uint64

	// Frame returns the current frame number.
	//
	// Returns:
	//   - uint64: the frame number (0 before the first BeginFrame)
	Frame() uint64

	// FrameWriters returns the distinct writers that mutated the camera in the current frame, in write order.
	//
	// Returns:
	//   - []Writer: a copy of the writers list
	FrameWriters() []Writer

	// Conflicts returns how many writes came from a second distinct writer within one frame.
	//
	// Returns:
	//   - int: the conflict count since creation
	Conflicts() int

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// ViewMatrix returns the world-to-camera matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix (column-major)
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the orthographic projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (column-major)
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix (column-major)
	ViewProjectionMatrix() mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera at the origin with identity rotation and orthographic size 5.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu: &sync.Mutex{},
		pose: common.Pose{
			Rotation: mgl32.QuatIdent(),
			Size:     5,
		},
		aspect: 1.0,
		near:   0.1,
		far:    1000.0,
		logger: log.Default(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Pose() common.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose.Position
}

func (c *cameraImpl) Rotation() mgl32.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose.Rotation
}

func (c *cameraImpl) OrthographicSize() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose.Size
}

func (c *cameraImpl) SetPosition(w Writer, p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordWrite(w)
	c.pose.Position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetRotation(w Writer, q mgl32.Quat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordWrite(w)
	c.pose.Rotation = q.Normalize()
	c.updateMatrices()
}

func (c *cameraImpl) SetOrthographicSize(w Writer, size float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordWrite(w)
	c.pose.Size = size
	c.updateMatrices()
}

func (c *cameraImpl) SetPose(w Writer, pose common.Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordWrite(w)
	pose.Rotation = pose.Rotation.Normalize()
	c.pose = pose
	c.updateMatrices()
}

func (c *cameraImpl) BeginFrame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame++
	c.frameWriters = c.frameWriters[:0]
	return c.frame
}

func (c *cameraImpl) Frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *cameraImpl) FrameWriters() []Writer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.frameWriters)
}

func (c *cameraImpl) Conflicts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conflicts
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

// recordWrite tracks the writer for the current frame and flags a conflict when a second writer appears.
// Caller must hold the mutex.
func (c *cameraImpl) recordWrite(w Writer) {
	if !slices.Contains(c.frameWriters, w) {
		if len(c.frameWriters) > 0 {
			c.conflicts++
			c.logger.Printf("[Camera] frame %d: %q wrote after %q", c.frame, w, c.frameWriters[0])
		}
		c.frameWriters = append(c.frameWriters, w)
	}
	if c.observer != nil {
		c.observer(c.frame, w)
	}
}

// updateMatrices recalculates the view, projection and view-projection matrices from the pose.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	p := c.pose.Position
	c.viewMatrix = c.pose.Rotation.Inverse().Mat4().Mul4(mgl32.Translate3D(-p[0], -p[1], -p[2]))

	halfH := c.pose.Size
	halfW := halfH * c.aspect
	c.projectionMatrix = mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)

	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
