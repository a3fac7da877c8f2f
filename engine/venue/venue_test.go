package venue

import (
	"bytes"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVenue(t *testing.T, options ...VenueBuilderOption) (Venue, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts := append([]VenueBuilderOption{WithLogger(log.New(&buf, "", 0)), WithObjects(DefaultLayout()...)}, options...)
	return NewVenue(opts...), &buf
}

func TestRefreshCategorisesByTag(t *testing.T) {
	t.Parallel()

	v, buf := newTestVenue(t)
	assert.Contains(t, buf.String(), "[Venue] categorized objects - Main: 1, Left: 1, Right: 1, Back: 1")

	s, ok := v.SectionOf("left-block")
	require.True(t, ok)
	assert.Equal(t, LeftSection, s)

	_, ok = v.SectionOf("premium")
	assert.False(t, ok, "seats are not section geometry")

	v.Add(Object{ID: "main-2", Tag: string(MainSection)})
	_, ok = v.SectionOf("main-2")
	assert.False(t, ok, "membership changes only on Refresh")

	v.Refresh()
	assert.Equal(t, []string{"main-block", "main-2"}, v.SectionObjects(MainSection))

	v.Remove("main-2")
	v.Refresh()
	assert.Equal(t, []string{"main-block"}, v.SectionObjects(MainSection))
}

func TestUnknownTagsAreIgnored(t *testing.T) {
	t.Parallel()

	v, _ := newTestVenue(t)
	v.Add(Object{ID: "pillar", Tag: "Scenery"})
	v.Refresh()
	_, ok := v.SectionOf("pillar")
	assert.False(t, ok)

	v.SetZoomTarget("Balcony", ZoomTarget{Position: mgl32.Vec3{0, 10, 0}, Size: 2})
	v.Add(Object{ID: "balcony-block", Tag: "Balcony"})
	v.Refresh()
	s, ok := v.SectionOf("balcony-block")
	require.True(t, ok, "a section with a zoom target categorises its objects")
	assert.Equal(t, Section("Balcony"), s)
}

func TestZoomTargets(t *testing.T) {
	t.Parallel()

	v, _ := newTestVenue(t, WithZoomTargets(map[Section]ZoomTarget{
		MainSection: {Position: mgl32.Vec3{1, 2, 3}, Size: 4, Rotation: 45},
	}))

	main, ok := v.ZoomTarget(MainSection)
	require.True(t, ok)
	assert.Equal(t, ZoomTarget{Position: mgl32.Vec3{1, 2, 3}, Size: 4, Rotation: 45}, main)

	back, _ := v.ZoomTarget(BackSection)
	assert.Equal(t, DefaultZoomTargets()[BackSection], back, "unset sections keep their defaults")

	v.SetSectionZoomPosition(LeftSection, mgl32.Vec3{-9, 5, -10})
	v.SetSectionRotation(LeftSection, 30)
	left, _ := v.ZoomTarget(LeftSection)
	assert.Equal(t, ZoomTarget{Position: mgl32.Vec3{-9, 5, -10}, Size: 3, Rotation: 30}, left)

	v.SetSectionRotation("Nowhere", 10)
	_, ok = v.ZoomTarget("Nowhere")
	assert.False(t, ok, "setters do not create targets")
}

func TestSeatKeysAndPrices(t *testing.T) {
	t.Parallel()

	v, _ := newTestVenue(t, WithSeatKeys(map[string]string{"vip": "premium"}))

	seat, ok := v.Seat("vip")
	require.True(t, ok)
	assert.Equal(t, "premium", seat.ID)
	assert.True(t, seat.Available())

	_, ok = v.Seat("balcony")
	assert.False(t, ok)

	v.SetSeatKey("balcony", "missing")
	_, ok = v.Seat("balcony")
	assert.False(t, ok, "keys pointing at unknown objects do not resolve")

	cases := []struct {
		id   string
		want float32
	}{
		{"premium", 100},
		{"standard", 75},
		{"back", 50},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			obj, ok := v.Object(tc.id)
			require.True(t, ok)
			assert.Equal(t, tc.want, v.Price(obj))
		})
	}
}

func TestObjectsKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	v := NewVenue(WithLogger(log.New(&bytes.Buffer{}, "", 0)), WithCenter(mgl32.Vec3{1, 0, 1}))
	v.Add(Object{ID: "b"})
	v.Add(Object{ID: "a"})
	v.Add(Object{ID: "b", Name: "replaced"})

	objs := v.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "b", objs[0].ID)
	assert.Equal(t, "replaced", objs[0].Name)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, v.Center())
}
