package venue

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

type VenueBuilderOption func(*venueImpl)

// WithObjects adds objects to the venue.
//
// Parameters:
//   - objs: the objects
//
// Returns:
//   - VenueBuilderOption: a function that adds the objects
func WithObjects(objs ...Object) VenueBuilderOption {
	return func(v *venueImpl) {
		for _, o := range objs {
			v.add(o)
		}
	}
}

// WithCenter sets the venue centre.
//
// Parameters:
//   - c: the centre
//
// Returns:
//   - VenueBuilderOption: a function that sets the centre
func WithCenter(c mgl32.Vec3) VenueBuilderOption {
	return func(v *venueImpl) {
		v.center = c
	}
}

// WithZoomTargets overrides section targets. Sections not in the map keep their defaults.
//
// Parameters:
//   - targets: targets keyed by section
//
// Returns:
//   - VenueBuilderOption: a function that sets the targets
func WithZoomTargets(targets map[Section]ZoomTarget) VenueBuilderOption {
	return func(v *venueImpl) {
		for s, t := range targets {
			v.targets[s] = t
		}
	}
}

// WithSeatKeys adds or overrides deep-link seat keys.
//
// Parameters:
//   - keys: object IDs keyed by seat key
//
// Returns:
//   - VenueBuilderOption: a function that sets the keys
func WithSeatKeys(keys map[string]string) VenueBuilderOption {
	return func(v *venueImpl) {
		for k, id := range keys {
			v.seatKeys[k] = id
		}
	}
}

// WithPrices sets the seat tier prices.
//
// Parameters:
//   - p: the prices
//
// Returns:
//   - VenueBuilderOption: a function that sets the prices
func WithPrices(p Prices) VenueBuilderOption {
	return func(v *venueImpl) {
		v.prices = p
	}
}

// WithLogger sets the venue's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - VenueBuilderOption: a function that sets the logger
func WithLogger(l *log.Logger) VenueBuilderOption {
	return func(v *venueImpl) {
		if l != nil {
			v.logger = l
		}
	}
}

// DefaultLayout returns a small venue: one block of geometry per section and the three deep-link seats.
//
// Returns:
//   - []Object: the objects
func DefaultLayout() []Object {
	return []Object{
		{ID: "main-block", Name: "Main Block", Position: mgl32.Vec3{0, 0, -8}, Tag: string(MainSection)},
		{ID: "left-block", Name: "Left Block", Position: mgl32.Vec3{-8, 0, -4}, Tag: string(LeftSection)},
		{ID: "right-block", Name: "Right Block", Position: mgl32.Vec3{8, 0, -4}, Tag: string(RightSection)},
		{ID: "back-block", Name: "Back Block", Position: mgl32.Vec3{0, 0, 8}, Tag: string(BackSection)},
		{ID: "premium", Name: "Premium Seat A1", Position: mgl32.Vec3{0, 0.5, -6}, Tag: AvailableTag, Section: MainSection},
		{ID: "standard", Name: "Standard Seat L4", Position: mgl32.Vec3{-7, 1, -4}, Tag: AvailableTag, Section: LeftSection},
		{ID: "back", Name: "Seat B12", Position: mgl32.Vec3{0, 2, 9}, Tag: AvailableTag, Section: BackSection},
	}
}
