package orientation

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

// degreesPerPixel converts a drag delta in pixels, before sensitivity, into degrees.
const degreesPerPixel = 0.1

type pointerImpl struct {
	mu *sync.Mutex

	sensitivity      float32
	invertHorizontal bool
	invertVertical   bool

	limitVertical bool
	minVertical   float32
	maxVertical   float32

	limitHorizontal bool
	minHorizontal   float32
	maxHorizontal   float32

	doubleTap       bool
	doubleTapWindow float64

	touching  bool
	last      mgl32.Vec2
	lastDelta mgl32.Vec2

	vertical   float32
	horizontal float32

	tapCount    int
	lastTapTime float64
	tapped      bool
}

// Pointer accumulates horizontal and vertical look angles from press, drag and release events.
// Positions use a bottom-left origin, so dragging upwards is a positive Y delta and tilts the view down.
type Pointer interface {
	// Press starts a drag at pos and runs double-tap detection against the frame clock.
	//
	// Parameters:
	//   - pos: screen position in pixels
	//   - now: frame clock in seconds
	//
	// Returns:
	//   - bool: true if this press completes a double tap
	Press(pos mgl32.Vec2, now float64) bool

	// Drag moves the active drag to pos and integrates the delta into the angles. Ignored when not touching.
	//
	// Parameters:
	//   - pos: screen position in pixels
	Drag(pos mgl32.Vec2)

	// Release ends the active drag.
	Release()

	// Touching reports whether a drag is in progress.
	//
	// Returns:
	//   - bool: true between Press and Release
	Touching() bool

	// Angles returns the accumulated look angles in degrees.
	//
	// Returns:
	//   - vertical: pitch in degrees
	//   - horizontal: yaw in degrees
	Angles() (vertical, horizontal float32)

	// SetAngles overwrites the accumulated angles, applying the configured limits.
	//
	// Parameters:
	//   - vertical: pitch in degrees
	//   - horizontal: yaw in degrees
	SetAngles(vertical, horizontal float32)

	// Zero resets both angles to 0.
	Zero()

	// Sample returns Euler(vertical, horizontal, 0).
	//
	// Returns:
	//   - mgl32.Quat: the accumulated look rotation
	Sample() mgl32.Quat

	// Sensitivity returns the drag sensitivity.
	//
	// Returns:
	//   - float32: the sensitivity multiplier
	Sensitivity() float32

	// SetSensitivity changes the drag sensitivity.
	//
	// Parameters:
	//   - s: the sensitivity multiplier
	SetSensitivity(s float32)

	// LastDelta returns the most recent drag delta in pixels, zero after Release.
	//
	// Returns:
	//   - mgl32.Vec2: the delta
	LastDelta() mgl32.Vec2
}

var _ Pointer = &pointerImpl{}

// NewPointer creates a Pointer with sensitivity 2, vertical limits of [-80, 80], free horizontal rotation
// wrapped into [-360, 360] and double-tap detection with a 0.3 second window.
//
// Parameters:
//   - options: functional options to configure the pointer
//
// Returns:
//   - Pointer: the new pointer
func NewPointer(options ...PointerBuilderOption) Pointer {
	p := &pointerImpl{
		mu:              &sync.Mutex{},
		sensitivity:     2,
		limitVertical:   true,
		minVertical:     -80,
		maxVertical:     80,
		minHorizontal:   -360,
		maxHorizontal:   360,
		doubleTap:       true,
		doubleTapWindow: 0.3,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *pointerImpl) Press(pos mgl32.Vec2, now float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = pos
	p.touching = true

	if !p.doubleTap {
		return false
	}
	fired := false
	if p.tapped && now-p.lastTapTime < p.doubleTapWindow {
		p.tapCount++
		if p.tapCount >= 2 {
			fired = true
			p.tapCount = 0
		}
	} else {
		p.tapCount = 1
	}
	p.lastTapTime = now
	p.tapped = true
	return fired
}

func (p *pointerImpl) Drag(pos mgl32.Vec2) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.touching {
		return
	}
	delta := pos.Sub(p.last)
	p.last = pos
	p.lastDelta = delta

	h := delta[0] * p.sensitivity * degreesPerPixel
	v := delta[1] * p.sensitivity * degreesPerPixel
	if p.invertHorizontal {
		h = -h
	}
	if p.invertVertical {
		v = -v
	}
	p.horizontal += h
	p.vertical -= v
	p.applyLimits()
}

func (p *pointerImpl) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touching = false
	p.lastDelta = mgl32.Vec2{}
}

func (p *pointerImpl) Touching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.touching
}

func (p *pointerImpl) Angles() (vertical, horizontal float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vertical, p.horizontal
}

func (p *pointerImpl) SetAngles(vertical, horizontal float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vertical = vertical
	p.horizontal = horizontal
	p.applyLimits()
}

func (p *pointerImpl) Zero() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vertical = 0
	p.horizontal = 0
}

func (p *pointerImpl) Sample() mgl32.Quat {
	p.mu.Lock()
	defer p.mu.Unlock()
	return common.Euler(p.vertical, p.horizontal, 0)
}

func (p *pointerImpl) Sensitivity() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sensitivity
}

func (p *pointerImpl) SetSensitivity(s float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sensitivity = s
}

func (p *pointerImpl) LastDelta() mgl32.Vec2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastDelta
}

// applyLimits clamps the vertical angle and clamps or wraps the horizontal one.
// Caller must hold the mutex.
func (p *pointerImpl) applyLimits() {
	if p.limitVertical {
		p.vertical = mgl32.Clamp(p.vertical, p.minVertical, p.maxVertical)
	}
	if p.limitHorizontal {
		p.horizontal = mgl32.Clamp(p.horizontal, p.minHorizontal, p.maxHorizontal)
		return
	}
	if p.horizontal > 360 {
		p.horizontal -= 360
	} else if p.horizontal < -360 {
		p.horizontal += 360
	}
}
