// Package navigator animates the camera between the venue overview, a focused section and a seat view.
//
// Every transition takes the rotation drivers' external-control lock before its first camera write and
// releases it only after its last one. At most one transition is in flight; requests made while one is
// running are rejected and the running one completes.
package navigator

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/camera"
	"github.com/marroen/ImmersiveSeating/engine/rotation_driver"
	"github.com/marroen/ImmersiveSeating/engine/scheduler"
	"github.com/marroen/ImmersiveSeating/engine/venue"
)

var (
	// ErrTransitionRejected is returned when a transition is requested while another is in flight,
	// or from a state the transition is not valid in.
	ErrTransitionRejected = errors.New("navigator: transition rejected")

	// ErrUnknownTarget is returned for a section or seat the venue does not know.
	ErrUnknownTarget = errors.New("navigator: unknown target")
)

// Lease owners used on the rotation drivers.
const (
	ownerSection = "navigator:section"
	ownerSeat    = "navigator:seat"
	ownerReturn  = "navigator:return"
)

// Pitch and yaw of the top-down section view and of the view used to return to the overview.
// The two differ on purpose; only the roll comes from the section or origin.
const (
	zoomInPitch   = 90
	zoomInYaw     = 90
	returnPitch   = 110
	returnYaw     = 90
	returnRollOff = -180
)

// seatViewOrigin is the overview pose assumed when the viewer starts directly in a seat view.
var seatViewOrigin = common.Pose{
	Position: mgl32.Vec3{45, 120, -0.22},
	Rotation: mgl32.Quat{W: 0.57923, V: mgl32.Vec3{0.40558, -0.57923, 0.40558}},
	Size:     5,
}

// seatViewOriginRoll is the roll, in degrees, recorded with seatViewOrigin.
const seatViewOriginRoll = 0

// Kind is the kind of view the navigator is in.
type Kind int

const (
	Overview Kind = iota
	SectionFocus
	SeatFocus
)

func (k Kind) String() string {
	switch k {
	case SectionFocus:
		return "SectionFocus"
	case SeatFocus:
		return "SeatFocus"
	default:
		return "Overview"
	}
}

// State is the navigator's view state.
type State struct {
	Kind Kind
	// Section is the focused section. In SeatFocus it is the section the seat was reached from, if any.
	Section venue.Section
	// Seat is the focused seat ID in SeatFocus.
	Seat string
	// Price is the focused seat's price in SeatFocus.
	Price float32
}

func (s State) String() string {
	switch s.Kind {
	case SectionFocus:
		return fmt.Sprintf("SectionFocus(%s)", s.Section)
	case SeatFocus:
		return fmt.Sprintf("SeatFocus(%s)", s.Seat)
	default:
		return "Overview"
	}
}

type navigatorImpl struct {
	mu *sync.Mutex

	cam     camera.Camera
	sched   *scheduler.Scheduler
	venue   venue.Venue
	drivers []rotation_driver.RotationDriver
	ui      UI

	zoomDuration float32
	easing       scheduler.Easing
	seatSettle   float32
	seatSize     float32
	seatHeight   float32
	seatStart    bool

	origin     common.Pose
	originRoll float32
	started    bool

	state         State
	zooming       bool
	returnVisible bool
	priceVisible  bool

	leases map[string][]*rotation_driver.Lease

	logger *log.Logger
}

// Navigator is the view state machine: Overview, SectionFocus and SeatFocus.
type Navigator interface {
	// Start records the overview pose that ZoomToOriginal returns to. When configured to start in a seat view
	// the fixed seat-view origin is used and the return affordance is shown.
	Start()

	// ZoomToSection animates from the overview to a section's target. Only valid from Overview.
	// Touching the already focused section is a no-op; a different section is rejected.
	//
	// Parameters:
	//   - s: the section
	//
	// Returns:
	//   - error: ErrTransitionRejected or ErrUnknownTarget
	ZoomToSection(s venue.Section) error

	// GoToSeat places the camera above a seat facing the venue centre, shows its price and, after a settle delay,
	// hands rotation back to the drivers anchored at that pose. Valid from Overview and SectionFocus.
	//
	// Parameters:
	//   - seatID: the seat object ID
	//
	// Returns:
	//   - error: ErrTransitionRejected or ErrUnknownTarget
	GoToSeat(seatID string) error

	// ZoomToOriginal animates back to the recorded overview pose, then re-anchors the drivers at the
	// overview rotation and releases them. Valid from any state but Overview.
	// The tween ends at the fixed return rotation; the exact Start rotation is reached afterwards by the
	// re-anchored driver, not by the tween.
	//
	// Returns:
	//   - error: ErrTransitionRejected
	ZoomToOriginal() error

	// Touch routes a touched object the way the overview and section views expect: a section object in the
	// overview zooms to its section; an available seat in a focused view goes to the seat; anything else is ignored.
	//
	// Parameters:
	//   - id: the touched object's ID
	//
	// Returns:
	//   - error: the error of the transition started, if any
	Touch(id string) error

	// MarkSectionFocused records s as the focused section and shows the return affordance without animating,
	// for views reached without a section zoom.
	//
	// Parameters:
	//   - s: the section
	MarkSectionFocused(s venue.Section)

	// State returns the current view state.
	//
	// Returns:
	//   - State: the state
	State() State

	// IsZooming reports whether a transition is in flight.
	//
	// Returns:
	//   - bool: true while animating or settling
	IsZooming() bool

	// ReturnVisible reports whether the return-to-overview affordance is shown.
	//
	// Returns:
	//   - bool: true if shown
	ReturnVisible() bool

	// PriceVisible reports whether the price display is shown.
	//
	// Returns:
	//   - bool: true if shown
	PriceVisible() bool

	// Origin returns the overview pose recorded by Start.
	//
	// Returns:
	//   - common.Pose: the pose
	Origin() common.Pose

	// Venue returns the venue being navigated.
	//
	// Returns:
	//   - venue.Venue: the venue
	Venue() venue.Venue
}

var _ Navigator = &navigatorImpl{}

// NewNavigator creates a Navigator with a 1.5 second ease-in-out zoom, a 0.5 second seat settle delay and a
// seat view of orthographic size 1 placed half a unit above the seat.
//
// Parameters:
//   - cam: the camera, must not be nil
//   - sched: the frame scheduler, must not be nil
//   - v: the venue, must not be nil
//   - drivers: the rotation drivers to lock during transitions
//   - options: functional options to configure the navigator
//
// Returns:
//   - Navigator: the new navigator
func NewNavigator(cam camera.Camera, sched *scheduler.Scheduler, v venue.Venue, drivers []rotation_driver.RotationDriver, options ...NavigatorBuilderOption) Navigator {
	if cam == nil || sched == nil || v == nil {
		panic("navigator: NewNavigator requires a camera, a scheduler and a venue")
	}
	n := &navigatorImpl{
		mu:           &sync.Mutex{},
		cam:          cam,
		sched:        sched,
		venue:        v,
		drivers:      drivers,
		ui:           NopUI{},
		zoomDuration: 1.5,
		easing:       scheduler.EaseInOut,
		seatSettle:   0.5,
		seatSize:     1,
		seatHeight:   0.5,
		leases:       make(map[string][]*rotation_driver.Lease),
		logger:       log.Default(),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *navigatorImpl) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = true

	if n.seatStart {
		n.origin = seatViewOrigin
		n.originRoll = seatViewOriginRoll
		n.returnVisible = true
		n.ui.SetReturnVisible(true)
		n.logger.Printf("[Navigator] started in seat view, origin %s", n.origin)
		return
	}

	n.origin = n.cam.Pose()
	_, _, n.originRoll = common.EulerAngles(n.origin.Rotation)
	n.returnVisible = false
	n.priceVisible = false
	n.ui.SetReturnVisible(false)
	n.ui.HidePrice()
	n.logger.Printf("[Navigator] started, origin %s", n.origin)
}

func (n *navigatorImpl) ZoomToSection(s venue.Section) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.zooming {
		return n.reject("ZoomToSection(%s): transition in flight", s)
	}
	if n.state.Kind != Overview {
		if n.state.Kind == SectionFocus && n.state.Section == s {
			n.logger.Printf("[Navigator] already zoomed into %s section", s)
			return nil
		}
		return n.reject("ZoomToSection(%s): not in overview (%s)", s, n.state)
	}
	target, ok := n.venue.ZoomTarget(s)
	if !ok {
		n.logger.Printf("[Navigator] ZoomToSection: unknown section %q", s)
		return fmt.Errorf("section %q: %w", s, ErrUnknownTarget)
	}

	n.logger.Printf("[Navigator] zooming to section (%s)", s)
	n.hidePrice()
	n.setReturnVisible(true)

	n.zooming = true
	n.acquire(ownerSection)

	start := n.cam.Pose()
	end := common.Pose{
		Position: target.Position,
		Rotation: common.Euler(zoomInPitch, zoomInYaw, target.Rotation),
		Size:     target.Size,
	}
	seq := scheduler.NewSequence("zoom-to-section:"+string(s)).
		Tween(n.zoomDuration, n.easing, n.tweenPose(start, end)).
		Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			n.state = State{Kind: SectionFocus, Section: s}
			n.zooming = false
			n.logger.Printf("[Navigator] zoomed into %s", s)
		})
	n.startLocked(seq)
	return nil
}

func (n *navigatorImpl) GoToSeat(seatID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.zooming {
		return n.reject("GoToSeat(%s): transition in flight", seatID)
	}
	if n.state.Kind == SeatFocus {
		return n.reject("GoToSeat(%s): already in seat view (%s)", seatID, n.state)
	}
	seat, ok := n.venue.Object(seatID)
	if !ok {
		n.logger.Printf("[Navigator] GoToSeat: unknown seat %q", seatID)
		return fmt.Errorf("seat %q: %w", seatID, ErrUnknownTarget)
	}

	price := n.venue.Price(seat)
	n.showPrice(price)
	n.setReturnVisible(true)

	n.zooming = true
	n.acquire(ownerSeat)
	n.release(ownerSection)

	camPos := seat.Position.Add(mgl32.Vec3{0, n.seatHeight, 0})
	toCenter := n.venue.Center().Sub(camPos)
	toCenter[1] = 0
	look := common.LookRotation(toCenter, common.AxisY)
	pose := common.Pose{Position: camPos, Rotation: look, Size: n.seatSize}
	section := n.state.Section

	seq := scheduler.NewSequence("go-to-seat:" + seatID).
		Yield().
		Do(func() {
			n.cam.SetPose(camera.WriterNavigator, pose)
		}).
		Wait(n.seatSettle).
		Do(func() {
			for _, d := range n.drivers {
				if err := d.SetNewInitialRotation(look); err != nil {
					n.logger.Printf("[Navigator] %s driver recalibration at seat: %v", d.Mode(), err)
				}
			}

			n.mu.Lock()
			defer n.mu.Unlock()
			if n.state.Section != "" {
				section = n.state.Section
			}
			n.release(ownerSeat)
			n.state = State{Kind: SeatFocus, Section: section, Seat: seatID, Price: price}
			n.zooming = false
			n.logger.Printf("[Navigator] camera positioned at seat %s, drivers calibrated", seatID)
		})
	n.startLocked(seq)
	return nil
}

func (n *navigatorImpl) ZoomToOriginal() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.zooming {
		return n.reject("ZoomToOriginal: transition in flight")
	}
	if n.state.Kind == Overview && !n.returnVisible {
		return n.reject("ZoomToOriginal: already in overview")
	}

	n.logger.Printf("[Navigator] zooming back to original position")
	n.hidePrice()
	n.setReturnVisible(false)

	n.zooming = true
	n.acquire(ownerReturn)

	origin := n.origin
	start := n.cam.Pose()
	end := common.Pose{
		Position: origin.Position,
		Rotation: common.Euler(returnPitch, returnYaw, n.originRoll+returnRollOff),
		Size:     origin.Size,
	}
	seq := scheduler.NewSequence("zoom-to-original").
		Tween(n.zoomDuration, n.easing, n.tweenPose(start, end)).
		Do(func() {
			for _, d := range n.drivers {
				if err := d.SetNewInitialRotation(origin.Rotation); err != nil {
					n.logger.Printf("[Navigator] %s driver recalibration at overview: %v", d.Mode(), err)
				}
			}

			n.mu.Lock()
			defer n.mu.Unlock()
			n.release(ownerSection)
			n.release(ownerSeat)
			n.release(ownerReturn)
			n.state = State{Kind: Overview}
			n.zooming = false
			n.logger.Printf("[Navigator] back at overview")
		})
	n.startLocked(seq)
	return nil
}

func (n *navigatorImpl) Touch(id string) error {
	n.mu.Lock()
	zooming := n.zooming
	st := n.state
	n.mu.Unlock()
	if zooming {
		return nil
	}

	obj, known := n.venue.Object(id)
	if !known {
		return nil
	}
	section, inSection := n.venue.SectionOf(id)
	n.logger.Printf("[Navigator] %s was touched", obj.Name)

	if st.Kind != Overview && st.Section != "" {
		switch {
		case inSection && section == st.Section:
			n.logger.Printf("[Navigator] already zoomed into %s section", st.Section)
			return nil
		case obj.Available():
			n.logger.Printf("[Navigator] touched available seat %s", id)
			return n.GoToSeat(id)
		}
		return nil
	}
	if st.Kind == Overview && inSection {
		return n.ZoomToSection(section)
	}
	return nil
}

func (n *navigatorImpl) MarkSectionFocused(s venue.Section) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.Section = s
	n.setReturnVisible(true)
}

func (n *navigatorImpl) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *navigatorImpl) IsZooming() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.zooming
}

func (n *navigatorImpl) ReturnVisible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.returnVisible
}

func (n *navigatorImpl) PriceVisible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.priceVisible
}

func (n *navigatorImpl) Origin() common.Pose {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.origin
}

func (n *navigatorImpl) Venue() venue.Venue {
	return n.venue
}

// tweenPose returns a tween step that interpolates the whole camera pose from start to end.
// At t = 1 the end pose is written exactly.
func (n *navigatorImpl) tweenPose(start, end common.Pose) func(t float32) {
	return func(t float32) {
		pose := end
		if t < 1 {
			pose = common.Pose{
				Position: common.LerpVec3(start.Position, end.Position, t),
				Rotation: common.Slerp(start.Rotation, end.Rotation, t),
				Size:     common.Lerp(start.Size, end.Size, t),
			}
		}
		n.cam.SetPose(camera.WriterNavigator, pose)
	}
}

// startLocked starts seq on the scheduler with the mutex released, since its first segment may call back in.
// Caller must hold the mutex.
func (n *navigatorImpl) startLocked(seq *scheduler.Sequence) {
	n.mu.Unlock()
	defer n.mu.Lock()
	n.sched.Start(seq)
}

// acquire takes a lease named owner on every driver. Caller must hold the mutex.
func (n *navigatorImpl) acquire(owner string) {
	for _, d := range n.drivers {
		n.leases[owner] = append(n.leases[owner], d.AcquireExternalControl(owner))
	}
}

// release gives back every lease named owner. Caller must hold the mutex.
func (n *navigatorImpl) release(owner string) {
	for _, l := range n.leases[owner] {
		l.Release()
	}
	delete(n.leases, owner)
}

// reject logs and returns ErrTransitionRejected. Caller must hold the mutex.
func (n *navigatorImpl) reject(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	n.logger.Printf("[Navigator] rejected %s", msg)
	return fmt.Errorf("%s: %w", msg, ErrTransitionRejected)
}

// showPrice shows the price display. Caller must hold the mutex.
func (n *navigatorImpl) showPrice(price float32) {
	n.priceVisible = true
	n.ui.ShowPrice(price)
	n.logger.Printf("[Navigator] showing price: €%.0f", price)
}

// hidePrice hides the price display if shown. Caller must hold the mutex.
func (n *navigatorImpl) hidePrice() {
	if !n.priceVisible {
		return
	}
	n.priceVisible = false
	n.ui.HidePrice()
	n.logger.Printf("[Navigator] hiding price")
}

// setReturnVisible updates the return affordance. Caller must hold the mutex.
func (n *navigatorImpl) setReturnVisible(visible bool) {
	n.returnVisible = visible
	n.ui.SetReturnVisible(visible)
}
