// Package orientation turns raw platform input (gyroscope attitude, accelerometer gravity, pointer drags)
// into orientation samples for the rotation drivers.
package orientation

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
)

// ErrSensorUnavailable is returned when neither a gyroscope nor an accelerometer can be used,
// or when motion access has not been granted yet.
var ErrSensorUnavailable = errors.New("orientation: no motion sensor available")

// SensorKind identifies which sensor a Provider reads from.
type SensorKind int

const (
	SensorNone SensorKind = iota
	SensorGyroscope
	SensorAccelerometer
)

func (k SensorKind) String() string {
	switch k {
	case SensorGyroscope:
		return "gyroscope"
	case SensorAccelerometer:
		return "accelerometer"
	default:
		return "none"
	}
}

type providerImpl struct {
	mu *sync.Mutex

	source  Source
	kind    SensorKind
	gated   bool
	granted bool

	logger *log.Logger
}

// Provider reads device orientation samples in the viewer's coordinate convention.
// The gyroscope is preferred; the accelerometer is a lower fidelity fallback with no stable yaw.
type Provider interface {
	// Kind returns the sensor in use.
	//
	// Returns:
	//   - SensorKind: the sensor selected at the last Refresh
	Kind() SensorKind

	// Available reports whether Sample can succeed: a sensor was found and, for gated sources, access was granted.
	//
	// Returns:
	//   - bool: true if motion data can be read
	Available() bool

	// Sample reads the current orientation.
	//
	// Returns:
	//   - mgl32.Quat: the remapped gyroscope attitude or the accelerometer-derived rotation
	//   - error: ErrSensorUnavailable when no sensor can be read
	Sample() (mgl32.Quat, error)

	// TouchCount forwards the source's touch count.
	//
	// Returns:
	//   - int: fingers on the screen
	TouchCount() int

	// Refresh re-detects which sensor to use.
	//
	// Returns:
	//   - SensorKind: the newly selected sensor
	Refresh() SensorKind

	// Gated reports whether the source sits behind a permission prompt.
	//
	// Returns:
	//   - bool: true for PermissionSource sources
	Gated() bool

	// Grant marks motion access as granted.
	Grant()

	// Source returns the underlying platform source.
	//
	// Returns:
	//   - Source: the source
	Source() Source
}

var _ Provider = &providerImpl{}

// NewProvider creates a Provider over the given source and selects a sensor immediately.
// Sources that do not implement PermissionSource are treated as already granted.
//
// Parameters:
//   - source: the platform source, must not be nil
//   - options: functional options to configure the provider
//
// Returns:
//   - Provider: the new provider
func NewProvider(source Source, options ...ProviderBuilderOption) Provider {
	if source == nil {
		panic("orientation: NewProvider requires a source")
	}
	_, gated := source.(PermissionSource)
	p := &providerImpl{
		mu:      &sync.Mutex{},
		source:  source,
		gated:   gated,
		granted: !gated,
		logger:  log.Default(),
	}
	for _, option := range options {
		option(p)
	}
	p.Refresh()
	return p
}

func (p *providerImpl) Kind() SensorKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

func (p *providerImpl) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind != SensorNone && p.granted
}

func (p *providerImpl) Sample() (mgl32.Quat, error) {
	p.mu.Lock()
	kind, granted := p.kind, p.granted
	p.mu.Unlock()

	if !granted {
		return mgl32.QuatIdent(), fmt.Errorf("motion access not granted: %w", ErrSensorUnavailable)
	}
	switch kind {
	case SensorGyroscope:
		return common.RemapGyro(p.source.Attitude()), nil
	case SensorAccelerometer:
		pitch, yaw, roll := common.AccelerometerEuler(p.source.Acceleration())
		return common.Euler(pitch, yaw, roll), nil
	default:
		return mgl32.QuatIdent(), ErrSensorUnavailable
	}
}

func (p *providerImpl) TouchCount() int {
	return p.source.TouchCount()
}

func (p *providerImpl) Refresh() SensorKind {
	kind := SensorNone
	switch {
	case p.source.SupportsGyroscope():
		kind = SensorGyroscope
	case p.source.SupportsAccelerometer():
		kind = SensorAccelerometer
	}

	p.mu.Lock()
	p.kind = kind
	p.mu.Unlock()

	if kind == SensorNone {
		p.logger.Printf("[Orientation] no gyroscope or accelerometer available")
	} else {
		p.logger.Printf("[Orientation] using %s for device orientation", kind)
	}
	return kind
}

func (p *providerImpl) Gated() bool {
	return p.gated
}

func (p *providerImpl) Grant() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = true
}

func (p *providerImpl) Source() Source {
	return p.source
}
