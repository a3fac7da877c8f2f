package camera

import (
	"bytes"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/stretchr/testify/assert"
)

func TestSingleWriterPerFrameIsNotAConflict(t *testing.T) {
	t.Parallel()

	c := NewCamera()
	c.BeginFrame()
	c.SetRotation(WriterGyro, common.Euler(10, 0, 0))
	c.SetRotation(WriterGyro, common.Euler(20, 0, 0))

	assert.Equal(t, []Writer{WriterGyro}, c.FrameWriters())
	assert.Zero(t, c.Conflicts())

	c.BeginFrame()
	c.SetPose(WriterNavigator, common.Pose{Rotation: mgl32.QuatIdent(), Size: 3})
	assert.Equal(t, []Writer{WriterNavigator}, c.FrameWriters(), "writers reset every frame")
	assert.Zero(t, c.Conflicts())
}

func TestSecondWriterIsCountedAndLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var seen []Writer
	c := NewCamera(
		WithLogger(log.New(&buf, "", 0)),
		WithWriteObserver(func(frame uint64, w Writer) { seen = append(seen, w) }),
	)
	c.BeginFrame()
	c.SetRotation(WriterSwipe, mgl32.QuatIdent())
	c.SetPosition(WriterNavigator, mgl32.Vec3{1, 2, 3})

	assert.Equal(t, 1, c.Conflicts())
	assert.Equal(t, []Writer{WriterSwipe, WriterNavigator}, c.FrameWriters())
	assert.Equal(t, []Writer{WriterSwipe, WriterNavigator}, seen)
	assert.Contains(t, buf.String(), `"navigator" wrote after "swipe"`)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Position(), "a conflicting write still lands")
}

func TestPoseAccessors(t *testing.T) {
	t.Parallel()

	pose := common.Pose{Position: mgl32.Vec3{45, 120, -0.22}, Rotation: common.Euler(70, 270, 0), Size: 5}
	c := NewCamera(WithPose(pose))
	assert.True(t, c.Pose().ApproxEqual(pose, 1e-6))

	c.SetOrthographicSize(WriterNavigator, 3)
	assert.Equal(t, float32(3), c.OrthographicSize())

	c.SetRotation(WriterGyro, mgl32.Quat{W: 2})
	assert.Equal(t, mgl32.QuatIdent(), c.Rotation(), "rotations are stored normalized")
	assert.Equal(t, uint64(0), c.Frame())
	assert.Equal(t, uint64(1), c.BeginFrame())
}

func TestMatricesFollowPose(t *testing.T) {
	t.Parallel()

	c := NewCamera(WithAspect(2), WithOrthographicSize(4))
	c.SetPosition(WriterNavigator, mgl32.Vec3{0, 0, -10})

	// The camera looks down +Z, so a point in front of it maps to a positive view depth.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if diff := cmp.Diff(mgl32.Vec4{0, 0, 10, 1}, p, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("view transform mismatch (-want +got):\n%s", diff)
	}

	edge := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{8, 4, -1, 1})
	assert.InDelta(t, 1, edge[0], 1e-5, "half width is size times aspect")
	assert.InDelta(t, 1, edge[1], 1e-5)

	c.SetAspect(1)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()), c.ViewProjectionMatrix())
}
