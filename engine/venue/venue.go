// Package venue describes the seating venue the camera looks at: section and seat objects with their
// positions and tags, the venue centre and the camera target for each section.
package venue

import (
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Section names a venue section. The value doubles as the tag of the section's objects.
type Section string

const (
	MainSection  Section = "MainSection"
	LeftSection  Section = "LeftSection"
	RightSection Section = "RightSection"
	BackSection  Section = "BackSection"
)

// Sections lists every known section in a stable order.
var Sections = []Section{MainSection, LeftSection, RightSection, BackSection}

// AvailableTag marks a seat that can be selected.
const AvailableTag = "Available"

// Object is a touchable thing in the venue.
type Object struct {
	// ID identifies the object; seat IDs double as seat-focus identifiers.
	ID string
	// Name is the display name; a seat's price tier is read from it.
	Name string
	// Position is the world-space position.
	Position mgl32.Vec3
	// Tag is the object's category: a Section name for section geometry, AvailableTag for selectable seats.
	Tag string
	// Section is the section a seat belongs to. Section geometry is categorised from Tag instead.
	Section Section
}

// Available reports whether the object is a selectable seat.
func (o Object) Available() bool {
	return o.Tag == AvailableTag
}

// ZoomTarget is the camera pose used when focusing a section.
type ZoomTarget struct {
	Position mgl32.Vec3
	Size     float32
	// Rotation is the roll, in degrees, of the top-down section view.
	Rotation float32
}

// Prices per seat tier.
type Prices struct {
	Premium  float32
	Standard float32
	Default  float32
}

type venueImpl struct {
	mu *sync.Mutex

	objects    map[string]Object
	order      []string
	categories map[Section][]string

	center   mgl32.Vec3
	targets  map[Section]ZoomTarget
	seatKeys map[string]string
	prices   Prices

	logger *log.Logger
}

// Venue is the scene input of the navigator and the command router.
type Venue interface {
	// Add inserts or replaces an object. Section membership is only recomputed by Refresh.
	//
	// Parameters:
	//   - obj: the object
	Add(obj Object)

	// Remove deletes an object.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id string)

	// Object looks up an object.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - Object: the object
	//   - bool: false if unknown
	Object(id string) (Object, bool)

	// Objects returns every object in insertion order.
	//
	// Returns:
	//   - []Object: the objects
	Objects() []Object

	// Refresh recategorises objects into sections by tag.
	Refresh()

	// SectionOf returns the section an object was categorised into at the last Refresh.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - Section: the section
	//   - bool: false if the object belongs to no section
	SectionOf(id string) (Section, bool)

	// SectionObjects returns the IDs categorised into a section.
	//
	// Parameters:
	//   - s: the section
	//
	// Returns:
	//   - []string: the object IDs
	SectionObjects(s Section) []string

	// Center returns the point seat views face.
	//
	// Returns:
	//   - mgl32.Vec3: the venue centre
	Center() mgl32.Vec3

	// SetCenter moves the venue centre.
	//
	// Parameters:
	//   - c: the new centre
	SetCenter(c mgl32.Vec3)

	// ZoomTarget returns a section's camera target.
	//
	// Parameters:
	//   - s: the section
	//
	// Returns:
	//   - ZoomTarget: the target
	//   - bool: false for an unknown section
	ZoomTarget(s Section) (ZoomTarget, bool)

	// SetZoomTarget replaces a section's camera target.
	//
	// Parameters:
	//   - s: the section
	//   - t: the new target
	SetZoomTarget(s Section, t ZoomTarget)

	// SetSectionZoomPosition changes a known section's target position.
	//
	// Parameters:
	//   - s: the section
	//   - p: the new position
	SetSectionZoomPosition(s Section, p mgl32.Vec3)

	// SetSectionRotation changes a known section's target roll.
	//
	// Parameters:
	//   - s: the section
	//   - deg: the roll in degrees
	SetSectionRotation(s Section, deg float32)

	// Seat resolves a deep-link seat key to a seat object.
	//
	// Parameters:
	//   - key: the seat key, e.g. "premium"
	//
	// Returns:
	//   - Object: the seat
	//   - bool: false for an unknown key or a key pointing at a missing object
	Seat(key string) (Object, bool)

	// SetSeatKey maps a deep-link seat key to an object ID.
	//
	// Parameters:
	//   - key: the seat key
	//   - id: the object ID
	SetSeatKey(key, id string)

	// Price returns the price of a seat from its name tier.
	//
	// Parameters:
	//   - obj: the seat
	//
	// Returns:
	//   - float32: the price
	Price(obj Object) float32
}

var _ Venue = &venueImpl{}

// NewVenue creates a venue with the default section targets, centre at the origin, seat keys premium, back
// and standard mapped to objects of the same ID, and prices 100/75/50. Objects given as options are
// categorised immediately.
//
// Parameters:
//   - options: functional options to configure the venue
//
// Returns:
//   - Venue: the new venue
func NewVenue(options ...VenueBuilderOption) Venue {
	v := &venueImpl{
		mu:         &sync.Mutex{},
		objects:    make(map[string]Object),
		categories: make(map[Section][]string),
		targets:    DefaultZoomTargets(),
		seatKeys: map[string]string{
			"premium":  "premium",
			"back":     "back",
			"standard": "standard",
		},
		prices: Prices{Premium: 100, Standard: 75, Default: 50},
		logger: log.Default(),
	}
	for _, option := range options {
		option(v)
	}
	v.Refresh()
	return v
}

// DefaultZoomTargets returns the stock section targets.
//
// Returns:
//   - map[Section]ZoomTarget: targets keyed by section
func DefaultZoomTargets() map[Section]ZoomTarget {
	return map[Section]ZoomTarget{
		MainSection:  {Position: mgl32.Vec3{0, 5, -10}, Size: 3, Rotation: 0},
		LeftSection:  {Position: mgl32.Vec3{-5, 5, -10}, Size: 3, Rotation: 90},
		RightSection: {Position: mgl32.Vec3{5, 5, -10}, Size: 3, Rotation: -90},
		BackSection:  {Position: mgl32.Vec3{0, 5, 10}, Size: 3, Rotation: 180},
	}
}

func (v *venueImpl) Add(obj Object) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add(obj)
}

func (v *venueImpl) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.objects[id]; !ok {
		return
	}
	delete(v.objects, id)
	v.order = slices.DeleteFunc(v.order, func(o string) bool { return o == id })
}

func (v *venueImpl) Object(id string) (Object, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	o, ok := v.objects[id]
	return o, ok
}

func (v *venueImpl) Objects() []Object {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Object, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.objects[id])
	}
	return out
}

func (v *venueImpl) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.categories)
	for _, id := range v.order {
		s := Section(v.objects[id].Tag)
		if _, known := v.targets[s]; known {
			v.categories[s] = append(v.categories[s], id)
		}
	}
	v.logger.Printf("[Venue] categorized objects - Main: %d, Left: %d, Right: %d, Back: %d",
		len(v.categories[MainSection]), len(v.categories[LeftSection]),
		len(v.categories[RightSection]), len(v.categories[BackSection]))
}

func (v *venueImpl) SectionOf(id string) (Section, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.sectionOrder() {
		if slices.Contains(v.categories[s], id) {
			return s, true
		}
	}
	return "", false
}

func (v *venueImpl) SectionObjects(s Section) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.categories[s])
}

func (v *venueImpl) Center() mgl32.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}

func (v *venueImpl) SetCenter(c mgl32.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = c
}

func (v *venueImpl) ZoomTarget(s Section) (ZoomTarget, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.targets[s]
	return t, ok
}

func (v *venueImpl) SetZoomTarget(s Section, t ZoomTarget) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets[s] = t
}

func (v *venueImpl) SetSectionZoomPosition(s Section, p mgl32.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.targets[s]; ok {
		t.Position = p
		v.targets[s] = t
	}
}

func (v *venueImpl) SetSectionRotation(s Section, deg float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t, ok := v.targets[s]; ok {
		t.Rotation = deg
		v.targets[s] = t
	}
}

func (v *venueImpl) Seat(key string) (Object, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.seatKeys[key]
	if !ok {
		return Object{}, false
	}
	o, ok := v.objects[id]
	return o, ok
}

func (v *venueImpl) SetSeatKey(key, id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seatKeys[key] = id
}

func (v *venueImpl) Price(obj Object) float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case strings.Contains(obj.Name, "Premium"):
		return v.prices.Premium
	case strings.Contains(obj.Name, "Standard"):
		return v.prices.Standard
	default:
		return v.prices.Default
	}
}

// add inserts or replaces an object. Caller must hold the mutex.
func (v *venueImpl) add(obj Object) {
	if _, exists := v.objects[obj.ID]; !exists {
		v.order = append(v.order, obj.ID)
	}
	v.objects[obj.ID] = obj
}

// sectionOrder returns the built-in sections followed by any custom ones, sorted. Caller must hold the mutex.
func (v *venueImpl) sectionOrder() []Section {
	out := slices.Clone(Sections)
	var extra []Section
	for s := range v.categories {
		if !slices.Contains(out, s) {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
