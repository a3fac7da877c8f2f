package viewer

import (
	"bytes"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/command_router"
	"github.com/marroen/ImmersiveSeating/engine/config"
	"github.com/marroen/ImmersiveSeating/engine/drive_mode"
	"github.com/marroen/ImmersiveSeating/engine/navigator"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/status"
	"github.com/marroen/ImmersiveSeating/engine/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writerLog records which camera writers touched each frame.
type writerLog struct {
	frames map[uint64]map[camera.Writer]bool
}

func newWriterLog() *writerLog {
	return &writerLog{frames: make(map[uint64]map[camera.Writer]bool)}
}

func (l *writerLog) observe(frame uint64, w camera.Writer) {
	if l.frames[frame] == nil {
		l.frames[frame] = make(map[camera.Writer]bool)
	}
	l.frames[frame][w] = true
}

func (l *writerLog) assertSingleWriter(t *testing.T) {
	t.Helper()
	for frame, writers := range l.frames {
		assert.LessOrEqual(t, len(writers), 1, "frame %d had writers %v", frame, writers)
	}
}

type fixture struct {
	src     *orientation.SimulatedSource
	viewer  Viewer
	rec     *status.Recorder
	writers *writerLog
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, options ...ViewerBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		src:     orientation.NewSimulatedSource(),
		rec:     status.NewRecorder(),
		writers: newWriterLog(),
		logs:    &bytes.Buffer{},
	}
	opts := append([]ViewerBuilderOption{
		WithStatusSink(f.rec),
		WithWriteObserver(f.writers.observe),
		WithLogger(log.New(f.logs, "", 0)),
	}, options...)
	f.viewer = NewViewer(f.src, opts...)
	return f
}

func (f *fixture) run(frames int, dt float32) {
	for i := 0; i < frames; i++ {
		f.viewer.Tick(dt)
	}
}

func TestStartsInGyroMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.viewer.Start()
	f.viewer.Start()
	f.run(10, 1.0/60)

	sw := f.viewer.Switcher()
	assert.Equal(t, rotation_driver.ModeGyro, sw.CurrentMode())
	assert.True(t, sw.Gyro().Enabled())
	assert.False(t, sw.Swipe().Enabled())
	assert.False(t, sw.Switching())
	assert.True(t, f.viewer.Camera().Pose().ApproxEqual(defaultPose, 1e-3), "an untouched device keeps the overview")
	f.writers.assertSingleWriter(t)
}

func TestFallsBackToSwipeWithoutSensors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.src.SetSensors(false, false)
	f.viewer.Provider().Refresh()
	f.viewer.Start()
	f.run(5, 1.0/60)

	assert.Equal(t, rotation_driver.ModeSwipe, f.viewer.Switcher().CurrentMode())
	assert.Contains(t, f.logs.String(), "[Viewer] no motion sensor")
}

func TestStartModeFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.StartMode = "swipe"

	f := newFixture(t, WithConfig(cfg))
	f.viewer.Start()
	assert.Equal(t, rotation_driver.ModeSwipe, f.viewer.Switcher().CurrentMode())

	g := newFixture(t, WithStartMode(rotation_driver.ModeGyro), WithConfig(cfg))
	g.viewer.Start()
	assert.Equal(t, rotation_driver.ModeGyro, g.viewer.Switcher().CurrentMode(), "an explicit start mode wins")
}

func TestSwipeInputIsAppliedOnTheFrame(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Drivers.Smoothing = 1
	f := newFixture(t, WithConfig(cfg), WithStartMode(rotation_driver.ModeSwipe))
	f.viewer.Start()
	f.run(3, 1.0/60)
	require.True(t, f.viewer.Switcher().Swipe().Enabled())

	f.viewer.Press(mgl32.Vec2{100, 100})
	f.viewer.Drag(mgl32.Vec2{110, 100})
	_, h := f.viewer.Switcher().Swipe().Pointer().Angles()
	assert.Zero(t, h, "input waits for the next tick")

	f.viewer.Tick(1.0 / 60)
	_, h = f.viewer.Switcher().Swipe().Pointer().Angles()
	assert.InDelta(t, 2, h, 1e-5)
	f.viewer.Release()
	f.viewer.Tick(1.0 / 60)
	assert.False(t, f.viewer.Switcher().Swipe().Pointer().Touching())

	assert.Contains(t, f.rec.Texts(), rotation_driver.RotationResetText)
	f.writers.assertSingleWriter(t)
}

func TestFocusOnObjectInSwipeMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithStartMode(rotation_driver.ModeSwipe))
	f.viewer.Start()
	f.run(3, 1.0/60)
	swipe := f.viewer.Switcher().Swipe()
	require.True(t, swipe.Enabled())

	assert.ErrorIs(t, f.viewer.FocusOnObject("nowhere"), navigator.ErrUnknownTarget)
	require.NoError(t, f.viewer.FocusOnObject("premium"))
	assert.True(t, swipe.Focusing())
	assert.ErrorIs(t, f.viewer.FocusOnObject("premium"), rotation_driver.ErrFocusRejected)

	f.run(120, 1.0/60)
	assert.False(t, swipe.Focusing())
	assert.False(t, swipe.ExternalControl())
	f.writers.assertSingleWriter(t)
}

func TestDeepLinkCommandFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.viewer.Start()
	f.run(3, 0.1)

	f.viewer.Submit(command_router.NewCommand(rotation_driver.ModeSwipe, "premium"))
	assert.Equal(t, 1, f.viewer.Router().Pending())
	f.run(30, 0.1)

	st := f.viewer.Navigator().State()
	assert.Equal(t, navigator.SeatFocus, st.Kind)
	assert.Equal(t, "premium", st.Seat)
	assert.Equal(t, venue.MainSection, st.Section)
	assert.Equal(t, rotation_driver.ModeSwipe, f.viewer.Switcher().CurrentMode())
	assert.True(t, f.viewer.Switcher().Swipe().Enabled())
	assert.Contains(t, f.rec.Texts(), "€100")
	assert.Contains(t, f.rec.Texts(), drive_mode.SwitchedToSwipeText)

	require.NoError(t, f.viewer.ZoomToOriginal())
	f.run(30, 0.1)
	assert.Equal(t, navigator.Overview, f.viewer.Navigator().State().Kind)
	assert.True(t, f.viewer.Camera().Pose().ApproxEqual(defaultPose, 1e-3), "got %s", f.viewer.Camera().Pose())
	assert.False(t, f.viewer.Switcher().Swipe().ExternalControl())

	f.writers.assertSingleWriter(t)
}

func TestBogusCommandKeepsOverview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.viewer.Start()
	err := f.viewer.HandleCommand(command_router.NewCommand(rotation_driver.ModeSwipe, "skybox"))
	assert.ErrorIs(t, err, command_router.ErrInvalidCommandTarget)

	f.run(20, 0.1)
	assert.Equal(t, navigator.Overview, f.viewer.Navigator().State().Kind)
	assert.Equal(t, rotation_driver.ModeSwipe, f.viewer.Switcher().CurrentMode())
}

func TestTouchZoomsToSection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.viewer.Start()
	f.viewer.Touch("right-block")
	assert.False(t, f.viewer.Navigator().IsZooming(), "touches wait for the next tick")

	f.run(25, 0.1)
	assert.Equal(t, navigator.State{Kind: navigator.SectionFocus, Section: venue.RightSection}, f.viewer.Navigator().State())
	assert.Equal(t, mgl32.Vec3{5, 5, -10}, f.viewer.Camera().Position())

	f.viewer.Touch("nowhere")
	f.run(1, 0.1)
	assert.Equal(t, venue.RightSection, f.viewer.Navigator().State().Section)
	f.writers.assertSingleWriter(t)
}

func TestApplyConfigUpdatesZoomTargets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cfg := config.Default()
	cfg.Venue.Sections[string(venue.MainSection)] = config.SectionConfig{Position: [3]float32{0, 9, -9}, Size: 2}

	f.viewer.ApplyConfig(cfg)
	f.viewer.ApplyConfig(nil)
	before, _ := f.viewer.Navigator().Venue().ZoomTarget(venue.MainSection)
	assert.Equal(t, float32(3), before.Size, "config changes apply on the frame thread")

	f.viewer.Tick(1.0 / 60)
	after, _ := f.viewer.Navigator().Venue().ZoomTarget(venue.MainSection)
	assert.Equal(t, venue.ZoomTarget{Position: mgl32.Vec3{0, 9, -9}, Size: 2}, after)
}

func TestGatedSourceRequestsPermission(t *testing.T) {
	t.Parallel()

	src := orientation.NewGatedSimulatedSource()
	rec := status.NewRecorder()
	v := NewViewer(src, WithStatusSink(rec), WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	v.Start()
	assert.False(t, v.Provider().Available())

	src.SetPermissionGranted(true)
	for i := 0; i < 10; i++ {
		v.Tick(0.1)
	}
	assert.True(t, v.Provider().Available())
	assert.Positive(t, v.Switcher().Gyro().Calibrations(), "the gyro calibrates once motion data arrives")
}

func TestNewViewerPanicsWithoutSource(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewViewer(nil) })
}
