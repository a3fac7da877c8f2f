package navigator

import (
	"bytes"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = float32(0.25)

var overviewPose = common.Pose{
	Position: mgl32.Vec3{45, 120, -0.22},
	Rotation: common.Euler(70, 270, 0),
	Size:     5,
}

type recordingUI struct {
	prices  []float32
	hidden  int
	returns []bool
}

func (u *recordingUI) ShowPrice(price float32)       { u.prices = append(u.prices, price) }
func (u *recordingUI) HidePrice()                    { u.hidden++ }
func (u *recordingUI) SetReturnVisible(visible bool) { u.returns = append(u.returns, visible) }

type fixture struct {
	cam   camera.Camera
	sched *scheduler.Scheduler
	gyro  rotation_driver.Gyro
	swipe rotation_driver.Swipe
	nav   Navigator
	ui    *recordingUI
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, options ...NavigatorBuilderOption) *fixture {
	t.Helper()
	return newFixtureAt(t, overviewPose, options...)
}

func newFixtureAt(t *testing.T, start common.Pose, options ...NavigatorBuilderOption) *fixture {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)
	cam := camera.NewCamera(camera.WithPose(start), camera.WithLogger(logger))
	provider := orientation.NewProvider(orientation.NewSimulatedSource(), orientation.WithProviderLogger(logger))
	f := &fixture{
		cam:   cam,
		sched: scheduler.NewScheduler(),
		gyro:  rotation_driver.NewGyro(cam, provider, rotation_driver.WithEnabled(true), rotation_driver.WithSmoothing(1), rotation_driver.WithLogger(logger)),
		swipe: rotation_driver.NewSwipe(cam, rotation_driver.WithLogger(logger)),
		ui:    &recordingUI{},
		logs:  &logs,
	}
	v := venue.NewVenue(venue.WithObjects(venue.DefaultLayout()...), venue.WithLogger(logger))
	opts := append([]NavigatorBuilderOption{WithUI(f.ui), WithLogger(logger)}, options...)
	f.nav = NewNavigator(cam, f.sched, v, []rotation_driver.RotationDriver{f.gyro, f.swipe}, opts...)
	f.nav.Start()
	return f
}

// step runs one viewer-style frame: the active driver first, then the scheduled transitions.
func (f *fixture) step(t *testing.T) {
	t.Helper()
	f.cam.BeginFrame()
	f.gyro.Tick(frame)
	f.sched.Tick(frame)
	assert.LessOrEqual(t, len(f.cam.FrameWriters()), 1, "more than one camera writer in a frame")
}

// settle steps until the navigator is idle.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 40 && f.nav.IsZooming(); i++ {
		f.step(t)
	}
	require.False(t, f.nav.IsZooming(), "transition did not finish")
}

func TestZoomToSectionAndBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.step(t)
	require.True(t, f.cam.Pose().ApproxEqual(overviewPose, 1e-4))

	require.NoError(t, f.nav.ZoomToSection(venue.MainSection))
	assert.True(t, f.nav.IsZooming())
	assert.True(t, f.nav.ReturnVisible())
	assert.Equal(t, []string{"navigator:section"}, f.gyro.ExternalOwners())
	assert.True(t, f.swipe.ExternalControl())

	f.settle(t)
	assert.Equal(t, State{Kind: SectionFocus, Section: venue.MainSection}, f.nav.State())
	want := common.Pose{Position: mgl32.Vec3{0, 5, -10}, Rotation: common.Euler(90, 90, 0), Size: 3}
	assert.True(t, f.cam.Pose().ApproxEqual(want, 1e-4), "got %s", f.cam.Pose())
	assert.True(t, f.gyro.ExternalControl(), "the section view keeps the drivers locked")

	require.NoError(t, f.nav.ZoomToOriginal())
	assert.False(t, f.nav.ReturnVisible())
	f.settle(t)

	assert.Equal(t, State{Kind: Overview}, f.nav.State())
	assert.True(t, f.cam.Pose().ApproxEqual(overviewPose, 1e-4), "got %s", f.cam.Pose())
	assert.False(t, f.gyro.ExternalControl())
	assert.False(t, f.swipe.ExternalControl())
	assert.True(t, common.SameRotation(overviewPose.Rotation, f.gyro.InitialRotation(), 1e-4))

	f.step(t)
	assert.True(t, common.SameRotation(overviewPose.Rotation, f.cam.Rotation(), 1e-3), "the gyro resumes at the overview")
	assert.Equal(t, []bool{false, true, false}, f.ui.returns)
}

func TestReturnFromTiltedOverviewReachesStartThroughDriver(t *testing.T) {
	t.Parallel()

	tilted := overviewPose
	tilted.Rotation = common.Euler(40, 200, 0)
	f := newFixtureAt(t, tilted)
	f.step(t)

	require.NoError(t, f.nav.ZoomToSection(venue.MainSection))
	f.settle(t)
	require.NoError(t, f.nav.ZoomToOriginal())
	f.settle(t)

	_, _, roll := common.EulerAngles(tilted.Rotation)
	tweenEnd := common.Euler(110, 90, roll-180)
	assert.True(t, common.SameRotation(tweenEnd, f.cam.Rotation(), 1e-3), "the tween ends at the fixed return rotation")
	require.False(t, common.SameRotation(tilted.Rotation, f.cam.Rotation(), 1e-3))
	assert.True(t, common.SameRotation(tilted.Rotation, f.gyro.InitialRotation(), 1e-4))

	f.step(t)
	assert.True(t, common.SameRotation(tilted.Rotation, f.cam.Rotation(), 1e-3), "the re-anchored gyro restores the start rotation")
}

func TestTransitionsAreNotReentrant(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.nav.ZoomToSection(venue.MainSection))

	assert.ErrorIs(t, f.nav.ZoomToSection(venue.LeftSection), ErrTransitionRejected)
	assert.ErrorIs(t, f.nav.GoToSeat("premium"), ErrTransitionRejected)
	assert.ErrorIs(t, f.nav.ZoomToOriginal(), ErrTransitionRejected)
	assert.Contains(t, f.logs.String(), "[Navigator] rejected")

	f.settle(t)
	assert.Equal(t, venue.MainSection, f.nav.State().Section, "the running transition completes")

	assert.NoError(t, f.nav.ZoomToSection(venue.MainSection), "same section is a no-op")
	assert.False(t, f.nav.IsZooming())
	assert.ErrorIs(t, f.nav.ZoomToSection(venue.LeftSection), ErrTransitionRejected)
}

func TestUnknownTargets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.ErrorIs(t, f.nav.ZoomToSection("Balcony"), ErrUnknownTarget)
	assert.ErrorIs(t, f.nav.GoToSeat("nope"), ErrUnknownTarget)
	assert.False(t, f.nav.IsZooming())
	assert.False(t, f.gyro.ExternalControl())
}

func TestGoToSeat(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.nav.GoToSeat("premium"))
	assert.True(t, f.nav.PriceVisible())
	assert.Equal(t, []float32{100}, f.ui.prices)
	assert.Equal(t, []string{"navigator:seat"}, f.gyro.ExternalOwners())

	f.settle(t)
	st := f.nav.State()
	assert.Equal(t, SeatFocus, st.Kind)
	assert.Equal(t, "premium", st.Seat)
	assert.Equal(t, float32(100), st.Price)
	assert.False(t, f.gyro.ExternalControl(), "rotation is handed back after the settle delay")

	// The seat sits on the -Z side of the centre, so the view faces +Z.
	seatView := common.Pose{Position: mgl32.Vec3{0, 1, -6}, Rotation: mgl32.QuatIdent(), Size: 1}
	assert.True(t, f.cam.Pose().ApproxEqual(seatView, 1e-4), "got %s", f.cam.Pose())
	assert.True(t, common.SameRotation(mgl32.QuatIdent(), f.gyro.InitialRotation(), 1e-4))
	assert.True(t, common.SameRotation(mgl32.QuatIdent(), f.swipe.InitialRotation(), 1e-4))

	assert.ErrorIs(t, f.nav.GoToSeat("back"), ErrTransitionRejected, "seat to seat is not a valid transition")

	require.NoError(t, f.nav.ZoomToOriginal())
	assert.False(t, f.nav.PriceVisible())
	f.settle(t)
	assert.Equal(t, Overview, f.nav.State().Kind)
}

func TestTouchRouting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.NoError(t, f.nav.Touch("premium"), "seats are not selectable from the overview")
	assert.False(t, f.nav.IsZooming())

	require.NoError(t, f.nav.Touch("left-block"))
	assert.NoError(t, f.nav.Touch("main-block"), "touches during a transition are ignored")
	f.settle(t)
	assert.Equal(t, State{Kind: SectionFocus, Section: venue.LeftSection}, f.nav.State())

	assert.NoError(t, f.nav.Touch("left-block"))
	assert.False(t, f.nav.IsZooming(), "touching the focused section does nothing")
	assert.NoError(t, f.nav.Touch("unknown"))

	require.NoError(t, f.nav.Touch("standard"))
	f.settle(t)
	st := f.nav.State()
	assert.Equal(t, SeatFocus, st.Kind)
	assert.Equal(t, venue.LeftSection, st.Section)
	assert.Equal(t, float32(75), st.Price)
}

func TestSeatViewStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithSeatViewStart(true))
	assert.True(t, f.nav.ReturnVisible())
	assert.Equal(t, mgl32.Vec3{45, 120, -0.22}, f.nav.Origin().Position)

	f.nav.MarkSectionFocused(venue.BackSection)
	assert.Equal(t, venue.BackSection, f.nav.State().Section)

	require.NoError(t, f.nav.ZoomToOriginal(), "the return affordance is live in a seat-view start")
	f.settle(t)
	assert.Equal(t, mgl32.Vec3{45, 120, -0.22}, f.cam.Position())
}

func TestZoomToOriginalFromOverviewIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.ErrorIs(t, f.nav.ZoomToOriginal(), ErrTransitionRejected)
}

func TestKindAndStateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Overview", State{}.String())
	assert.Equal(t, "SectionFocus(LeftSection)", State{Kind: SectionFocus, Section: venue.LeftSection}.String())
	assert.Equal(t, "SeatFocus(back)", State{Kind: SeatFocus, Seat: "back"}.String())
	assert.Equal(t, "SeatFocus", SeatFocus.String())
}
