package drive_mode

import (
	"bytes"
	"log"
	"testing"

	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	sched    *scheduler.Scheduler
	gyro     rotation_driver.Gyro
	swipe    rotation_driver.Swipe
	switcher Switcher
	rec      *status.Recorder
	changes  []rotation_driver.Mode
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	quiet := log.New(&bytes.Buffer{}, "", 0)
	cam := camera.NewCamera(camera.WithLogger(quiet))
	provider := orientation.NewProvider(orientation.NewSimulatedSource(), orientation.WithProviderLogger(quiet))
	f := &fixture{
		sched: scheduler.NewScheduler(),
		gyro:  rotation_driver.NewGyro(cam, provider, rotation_driver.WithLogger(quiet)),
		swipe: rotation_driver.NewSwipe(cam, rotation_driver.WithLogger(quiet)),
		rec:   status.NewRecorder(),
	}
	f.switcher = NewSwitcher(f.gyro, f.swipe, f.sched,
		WithStatusSink(f.rec),
		WithLogger(quiet),
		WithModeChangedHook(func(m rotation_driver.Mode) { f.changes = append(f.changes, m) }),
	)
	return f
}

func TestSwitchOrdersDisableEnableSettle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.gyro.SetEnabled(true)
	f.swipe.SetEnabled(true)
	calibrations := f.gyro.Calibrations()

	f.switcher.SwitchTo(rotation_driver.ModeGyro)
	assert.False(t, f.gyro.Enabled(), "both drivers are disabled immediately")
	assert.False(t, f.swipe.Enabled())
	assert.True(t, f.switcher.Switching())

	f.sched.Tick(1.0 / 60)
	assert.False(t, f.gyro.Enabled())

	f.sched.Tick(1.0 / 60)
	assert.True(t, f.gyro.Enabled())
	assert.False(t, f.swipe.Enabled())
	assert.Equal(t, calibrations, f.gyro.Calibrations(), "no calibration in the enable frame")

	f.sched.Tick(1.0 / 60)
	assert.Equal(t, calibrations+1, f.gyro.Calibrations())
	assert.False(t, f.switcher.Switching())
	assert.Equal(t, []rotation_driver.Mode{rotation_driver.ModeGyro}, f.changes)
	assert.Equal(t, rotation_driver.ModeGyro, f.switcher.Active().Mode())
}

func TestNewerSwitchSupersedesPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.switcher.SwitchTo(rotation_driver.ModeGyro)
	f.sched.Tick(1.0 / 60)
	f.switcher.SwitchTo(rotation_driver.ModeSwipe)
	for i := 0; i < 5; i++ {
		f.sched.Tick(1.0 / 60)
		require.False(t, f.gyro.Enabled(), "the superseded switch never enables its driver")
	}

	assert.True(t, f.swipe.Enabled())
	assert.Equal(t, rotation_driver.ModeSwipe, f.switcher.CurrentMode())
	assert.Equal(t, []rotation_driver.Mode{rotation_driver.ModeSwipe}, f.changes)
}

func TestAtMostOneDriverEnabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	modes := []rotation_driver.Mode{rotation_driver.ModeGyro, rotation_driver.ModeSwipe, rotation_driver.ModeGyro}
	for _, m := range modes {
		f.switcher.SwitchTo(m)
		for i := 0; i < 4; i++ {
			f.sched.Tick(1.0 / 60)
			assert.False(t, f.gyro.Enabled() && f.swipe.Enabled())
		}
	}
	assert.True(t, f.gyro.Enabled())
}

func TestSwitchStatusAndToggle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.switcher.SwitchToSwipe()
	f.switcher.SwitchToGyro()
	assert.Equal(t, []string{SwitchedToSwipeText, SwitchedToGyroText}, f.rec.Texts())

	f.switcher.ToggleMode()
	assert.Equal(t, rotation_driver.ModeSwipe, f.switcher.CurrentMode())
	f.switcher.ToggleMode()
	assert.Equal(t, rotation_driver.ModeGyro, f.switcher.CurrentMode())

	assert.True(t, f.switcher.IsGyroAvailable())
	assert.Len(t, f.switcher.Drivers(), 2)
	assert.Equal(t, f.swipe, f.switcher.Swipe())
}

func TestNewSwitcherPanicsWithoutCollaborators(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewSwitcher(nil, nil, scheduler.NewScheduler()) })
}
