// Package viewer assembles the seat viewer: one camera, the rotation drivers and their mode switcher, the
// venue navigator and the command router, all advanced by a single frame tick.
package viewer

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/calibration"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/command_router"
	"github.com/marroen/ImmersiveSeating/engine/config"
	"github.com/marroen/ImmersiveSeating/engine/drive_mode"
	"github.com/marroen/ImmersiveSeating/engine/navigator"
	"github.com/marroen/ImmersiveSeating/engine/orientation"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/status"
	"github.com/marroen/ImmersiveSeating/engine/venue"
)

// defaultPose is the overview camera pose: looking down onto the venue from above and behind.
var defaultPose = common.Pose{
	Position: mgl32.Vec3{45, 120, -0.22},
	Rotation: common.Euler(70, 270, 0),
	Size:     5,
}

type eventKind int

const (
	eventPress eventKind = iota
	eventDrag
	eventRelease
	eventTouch
	eventConfig
)

// event is an input queued by a frontend and applied at the next Tick.
type event struct {
	kind   eventKind
	pos    mgl32.Vec2
	target string
	cfg    *config.Config
}

type viewerImpl struct {
	mu *sync.Mutex

	cfg          *config.Config
	pose         common.Pose
	startMode    rotation_driver.Mode
	startModeSet bool
	observer     func(frame uint64, w camera.Writer)
	sink         status.Sink
	ui           navigator.UI

	source   orientation.Source
	cam      camera.Camera
	sched    *scheduler.Scheduler
	provider orientation.Provider
	poller   *orientation.PermissionPoller
	gyro     rotation_driver.Gyro
	swipe    rotation_driver.Swipe
	switcher drive_mode.Switcher
	venue    venue.Venue
	nav      navigator.Navigator
	router   command_router.Router

	clock   float64
	events  []event
	started bool

	logger *log.Logger
}

// Viewer is the assembled application. Tick advances one frame in a fixed order:
// camera frame start, router inbox drain, queued input, the active driver, then the scheduler.
// Methods other than the input queue and Submit must be called on the frame thread.
type Viewer interface {
	// Start records the overview pose, requests motion permission where needed and enables the starting
	// drive mode. Calling it again does nothing.
	Start()

	// Tick advances one frame.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	Tick(dt float32)

	// Press queues a pointer press.
	//
	// Parameters:
	//   - pos: the pointer position in pixels, origin bottom-left
	Press(pos mgl32.Vec2)

	// Drag queues a pointer move while pressed.
	//
	// Parameters:
	//   - pos: the pointer position in pixels, origin bottom-left
	Drag(pos mgl32.Vec2)

	// Release queues a pointer release.
	Release()

	// Touch queues a tap on a venue object.
	//
	// Parameters:
	//   - id: the object ID
	Touch(id string)

	// ApplyConfig queues a reloaded config; its venue zoom targets take effect at the next Tick.
	//
	// Parameters:
	//   - cfg: the config
	ApplyConfig(cfg *config.Config)

	// Submit queues a command for the next Tick. Safe from any goroutine.
	//
	// Parameters:
	//   - cmd: the command
	Submit(cmd command_router.Command)

	// HandleCommand applies a command immediately.
	//
	// Parameters:
	//   - cmd: the command
	//
	// Returns:
	//   - error: the router's error
	HandleCommand(cmd command_router.Command) error

	// Calibrate calibrates the active driver.
	//
	// Returns:
	//   - error: the driver's calibration error
	Calibrate() error

	// SwitchToGyro switches to device-motion control.
	SwitchToGyro()

	// SwitchToSwipe switches to touch control.
	SwitchToSwipe()

	// ToggleMode switches to whichever mode is not current.
	ToggleMode()

	// FocusOnObject runs the swipe driver's focus transition towards a venue object.
	//
	// Parameters:
	//   - id: the venue object ID
	//
	// Returns:
	//   - error: navigator.ErrUnknownTarget for an unknown ID, otherwise the swipe driver's error
	FocusOnObject(id string) error

	// ResetRotation resets the active driver's rotation.
	ResetRotation()

	// ZoomToOriginal returns to the overview.
	//
	// Returns:
	//   - error: navigator.ErrTransitionRejected
	ZoomToOriginal() error

	// GoToSeat focuses a seat by object ID.
	//
	// Parameters:
	//   - id: the seat object ID
	//
	// Returns:
	//   - error: the navigator's error
	GoToSeat(id string) error

	// Camera returns the shared camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Scheduler returns the frame scheduler.
	//
	// Returns:
	//   - *scheduler.Scheduler: the scheduler
	Scheduler() *scheduler.Scheduler

	// Switcher returns the drive-mode switcher.
	//
	// Returns:
	//   - drive_mode.Switcher: the switcher
	Switcher() drive_mode.Switcher

	// Navigator returns the view navigator.
	//
	// Returns:
	//   - navigator.Navigator: the navigator
	Navigator() navigator.Navigator

	// Router returns the command router.
	//
	// Returns:
	//   - command_router.Router: the router
	Router() command_router.Router

	// Provider returns the orientation provider.
	//
	// Returns:
	//   - orientation.Provider: the provider
	Provider() orientation.Provider

	// Config returns the config the viewer was built from.
	//
	// Returns:
	//   - *config.Config: the config
	Config() *config.Config
}

var _ Viewer = &viewerImpl{}

// NewViewer assembles a viewer reading device motion from source. Without options it uses config.Default(),
// the overview pose looking down onto the venue and gyro as the starting mode.
//
// Parameters:
//   - source: the device motion source, must not be nil
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the new viewer
func NewViewer(source orientation.Source, options ...ViewerBuilderOption) Viewer {
	if source == nil {
		panic("viewer: NewViewer requires an orientation source")
	}
	v := &viewerImpl{
		mu:     &sync.Mutex{},
		source: source,
		pose:   defaultPose,
		sink:   status.Nop{},
		logger: log.Default(),
	}
	for _, option := range options {
		option(v)
	}
	if v.cfg == nil {
		v.cfg = config.Default()
	}
	if v.ui == nil {
		v.ui = navigator.StatusUI{Sink: v.sink}
	}
	if !v.startModeSet && v.cfg.StartMode == rotation_driver.ModeSwipe.String() {
		v.startMode = rotation_driver.ModeSwipe
	}
	v.assemble()
	return v
}

// assemble builds the components bottom-up, handing each its collaborators by reference.
func (v *viewerImpl) assemble() {
	cfg := v.cfg
	d := cfg.Drivers

	camOpts := []camera.CameraBuilderOption{camera.WithPose(v.pose), camera.WithLogger(v.logger)}
	if v.observer != nil {
		camOpts = append(camOpts, camera.WithWriteObserver(v.observer))
	}
	v.cam = camera.NewCamera(camOpts...)
	v.sched = scheduler.NewScheduler()

	v.provider = orientation.NewProvider(v.source, orientation.WithProviderLogger(v.logger))
	v.poller = orientation.NewPermissionPoller(v.provider, v.sched,
		orientation.WithPollTiming(d.PermissionPoll, d.PermissionWait),
		orientation.WithPermissionStatus(v.sink),
		orientation.WithPermissionLogger(v.logger),
	)

	shared := []rotation_driver.DriverBuilderOption{
		rotation_driver.WithSmoothing(d.Smoothing),
		rotation_driver.WithStatusSink(v.sink),
		rotation_driver.WithLogger(v.logger),
	}
	gyroOpts := append([]rotation_driver.DriverBuilderOption{
		rotation_driver.WithCalibrationEngine(calibration.NewEngine(calibration.WithLogger(v.logger))),
	}, shared...)
	if d.LimitPitch {
		gyroOpts = append(gyroOpts, rotation_driver.WithVerticalLimit(d.MinPitch, d.MaxPitch))
	}
	v.gyro = rotation_driver.NewGyro(v.cam, v.provider, gyroOpts...)

	pointer := orientation.NewPointer(
		orientation.WithSensitivity(d.TouchSensitivity),
		orientation.WithInversion(d.InvertHorizontal, d.InvertVertical),
		orientation.WithDoubleTap(true, d.DoubleTapWindow),
	)
	swipeOpts := append([]rotation_driver.DriverBuilderOption{
		rotation_driver.WithCalibrationEngine(calibration.NewEngine(calibration.WithLogger(v.logger))),
		rotation_driver.WithPointer(pointer),
		rotation_driver.WithScheduler(v.sched),
	}, shared...)
	v.swipe = rotation_driver.NewSwipe(v.cam, swipeOpts...)

	v.switcher = drive_mode.NewSwitcher(v.gyro, v.swipe, v.sched,
		drive_mode.WithStatusSink(v.sink),
		drive_mode.WithLogger(v.logger),
	)

	v.venue = venue.NewVenue(append(cfg.VenueOptions(), venue.WithLogger(v.logger))...)

	n := cfg.Navigator
	v.nav = navigator.NewNavigator(v.cam, v.sched, v.venue, v.switcher.Drivers(),
		navigator.WithZoomDuration(n.ZoomDuration),
		navigator.WithSeatView(n.SeatSettle, n.SeatSize, n.SeatHeight),
		navigator.WithSeatViewStart(n.SeatViewStart),
		navigator.WithUI(v.ui),
		navigator.WithLogger(v.logger),
	)

	v.router = command_router.NewRouter(v.switcher, v.nav, v.sched,
		command_router.WithModeSwitchDelay(cfg.Router.ModeSwitchDelay),
		command_router.WithLogger(v.logger),
	)
}

func (v *viewerImpl) Start() {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	v.mu.Unlock()

	v.nav.Start()
	if v.provider.Gated() {
		v.poller.Request()
	}

	mode := v.startMode
	if mode == rotation_driver.ModeGyro && v.provider.Kind() == orientation.SensorNone {
		v.logger.Printf("[Viewer] no motion sensor, starting in %s mode", rotation_driver.ModeSwipe)
		mode = rotation_driver.ModeSwipe
	}
	v.switcher.SwitchTo(mode)
}

func (v *viewerImpl) Tick(dt float32) {
	v.cam.BeginFrame()
	v.mu.Lock()
	v.clock += float64(dt)
	events := v.events
	v.events = nil
	v.mu.Unlock()

	v.router.Drain()

	for _, e := range events {
		v.apply(e)
	}

	v.switcher.Active().Tick(dt)

	v.sched.Tick(dt)
}

func (v *viewerImpl) Press(pos mgl32.Vec2) {
	v.queue(event{kind: eventPress, pos: pos})
}

func (v *viewerImpl) Drag(pos mgl32.Vec2) {
	v.queue(event{kind: eventDrag, pos: pos})
}

func (v *viewerImpl) Release() {
	v.queue(event{kind: eventRelease})
}

func (v *viewerImpl) Touch(id string) {
	v.queue(event{kind: eventTouch, target: id})
}

func (v *viewerImpl) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	v.queue(event{kind: eventConfig, cfg: cfg})
}

func (v *viewerImpl) Submit(cmd command_router.Command) {
	v.router.Submit(cmd)
}

func (v *viewerImpl) HandleCommand(cmd command_router.Command) error {
	return v.router.Handle(cmd)
}

func (v *viewerImpl) Calibrate() error {
	return v.switcher.Active().Calibrate()
}

func (v *viewerImpl) SwitchToGyro() {
	v.switcher.SwitchToGyro()
}

func (v *viewerImpl) SwitchToSwipe() {
	v.switcher.SwitchToSwipe()
}

func (v *viewerImpl) ToggleMode() {
	v.switcher.ToggleMode()
}

func (v *viewerImpl) FocusOnObject(id string) error {
	obj, ok := v.venue.Object(id)
	if !ok {
		v.logger.Printf("[Viewer] focus: unknown object %q", id)
		return fmt.Errorf("focus on %q: %w", id, navigator.ErrUnknownTarget)
	}
	return v.swipe.FocusOnTarget(obj.Position)
}

func (v *viewerImpl) ResetRotation() {
	v.switcher.Active().ResetRotation()
}

func (v *viewerImpl) ZoomToOriginal() error {
	return v.nav.ZoomToOriginal()
}

func (v *viewerImpl) GoToSeat(id string) error {
	return v.nav.GoToSeat(id)
}

func (v *viewerImpl) Camera() camera.Camera {
	return v.cam
}

func (v *viewerImpl) Scheduler() *scheduler.Scheduler {
	return v.sched
}

func (v *viewerImpl) Switcher() drive_mode.Switcher {
	return v.switcher
}

func (v *viewerImpl) Navigator() navigator.Navigator {
	return v.nav
}

func (v *viewerImpl) Router() command_router.Router {
	return v.router
}

func (v *viewerImpl) Provider() orientation.Provider {
	return v.provider
}

func (v *viewerImpl) Config() *config.Config {
	return v.cfg
}

func (v *viewerImpl) queue(e event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

// apply handles one queued input event on the frame thread.
func (v *viewerImpl) apply(e event) {
	switch e.kind {
	case eventPress:
		v.mu.Lock()
		now := v.clock
		v.mu.Unlock()
		v.swipe.Press(e.pos, now)
	case eventDrag:
		v.swipe.Drag(e.pos)
	case eventRelease:
		v.swipe.Release()
	case eventTouch:
		if err := v.nav.Touch(e.target); err != nil {
			v.logger.Printf("[Viewer] touch %s: %v", e.target, err)
		}
	case eventConfig:
		e.cfg.ApplyZoomTargets(v.venue)
		v.logger.Printf("[Viewer] applied section zoom targets from config")
	}
}
