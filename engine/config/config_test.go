package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/engine/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
tick_rate: 30
start_mode: swipe
drivers:
  smoothing: 0.25
  limit_pitch: true
navigator:
  zoom_duration: 2
router:
  link_name: venue
venue:
  center: [1, 0, 2]
  sections:
    MainSection:
      position: [0, 8, -12]
      size: 4
  objects:
    - id: main-block
      tag: MainSection
    - id: vip
      name: Premium Box
      position: [0, 1, -5]
      tag: Available
      section: MainSection
  seat_keys:
    premium: vip
  prices:
    premium: 250
`

const tomlConfig = `
tick_rate = 30.0
start_mode = "swipe"

[drivers]
smoothing = 0.25
limit_pitch = true

[navigator]
zoom_duration = 2.0

[router]
link_name = "venue"

[venue]
center = [1.0, 0.0, 2.0]

[venue.sections.MainSection]
position = [0.0, 8.0, -12.0]
size = 4.0

[[venue.objects]]
id = "main-block"
tag = "MainSection"

[[venue.objects]]
id = "vip"
name = "Premium Box"
position = [0.0, 1.0, -5.0]
tag = "Available"
section = "MainSection"

[venue.seat_keys]
premium = "vip"

[venue.prices]
premium = 250.0
`

func TestDecodeFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		data   string
		format Format
	}{
		{"yaml", yamlConfig, FormatYAML},
		{"toml", tomlConfig, FormatTOML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Decode([]byte(tc.data), tc.format)
			require.NoError(t, err)

			assert.Equal(t, 30.0, c.TickRate)
			assert.Equal(t, "swipe", c.StartMode)
			assert.Equal(t, float32(0.25), c.Drivers.Smoothing)
			assert.True(t, c.Drivers.LimitPitch)
			assert.Equal(t, float32(2), c.Navigator.ZoomDuration)
			assert.Equal(t, "venue", c.Router.LinkName)
			assert.Equal(t, [3]float32{1, 0, 2}, c.Venue.Center)
			assert.Equal(t, SectionConfig{Position: [3]float32{0, 8, -12}, Size: 4}, c.Venue.Sections["MainSection"])
			require.Len(t, c.Venue.Objects, 2)
			assert.Equal(t, "Premium Box", c.Venue.Objects[1].Name)
			assert.Equal(t, map[string]string{"premium": "vip"}, c.Venue.SeatKeys)
			assert.Equal(t, PricesConfig{Premium: 250, Standard: 75, Default: 50}, c.Venue.Prices)

			// Unset values fall back to the defaults.
			assert.Equal(t, float32(2), c.Drivers.TouchSensitivity)
			assert.Equal(t, float32(0.5), c.Navigator.SeatSettle)
			assert.Equal(t, float32(0.75), c.Router.ModeSwitchDelay)
			assert.Equal(t, 2, c.Router.Workers)
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()
	assert.Equal(t, 60.0, c.TickRate)
	assert.Equal(t, "gyro", c.StartMode)
	assert.Equal(t, float32(-80), c.Drivers.MinPitch)
	assert.Equal(t, float32(80), c.Drivers.MaxPitch)
	assert.Equal(t, float32(15), c.Drivers.PermissionWait)
	assert.Equal(t, float32(1.5), c.Navigator.ZoomDuration)
	assert.Equal(t, "seatselection", c.Router.LinkName)
	assert.Len(t, c.Venue.Sections, len(venue.Sections))
	assert.Len(t, c.Objects(), len(venue.DefaultLayout()))
	assert.Equal(t, venue.DefaultZoomTargets(), c.ZoomTargets())
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.toml": FormatTOML} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatOf("venue.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Decode([]byte("{}"), "json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Decode([]byte("tick_rate: [oops"), FormatYAML)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "venue.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, c.TickRate)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVenueOptionsBuildTheDescribedVenue(t *testing.T) {
	t.Parallel()

	c, err := Decode([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	opts := append(c.VenueOptions(), venue.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	v := venue.NewVenue(opts...)

	seat, ok := v.Seat("premium")
	require.True(t, ok)
	assert.Equal(t, "vip", seat.ID)
	assert.Equal(t, float32(250), v.Price(seat))
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, v.Center())

	main, _ := v.ZoomTarget(venue.MainSection)
	assert.Equal(t, venue.ZoomTarget{Position: mgl32.Vec3{0, 8, -12}, Size: 4}, main)
	s, ok := v.SectionOf("main-block")
	require.True(t, ok)
	assert.Equal(t, venue.MainSection, s)

	obj, _ := v.Object("main-block")
	assert.Equal(t, "main-block", obj.Name, "names default to the ID")
}

func TestApplyZoomTargets(t *testing.T) {
	t.Parallel()

	v := venue.NewVenue(venue.WithObjects(venue.DefaultLayout()...), venue.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	c := Default()
	c.Venue.Sections["Balcony"] = SectionConfig{Position: [3]float32{0, 12, 0}, Size: 6}
	v.Add(venue.Object{ID: "balcony-block", Tag: "Balcony"})

	c.ApplyZoomTargets(v)
	got, ok := v.ZoomTarget("Balcony")
	require.True(t, ok)
	assert.Equal(t, float32(6), got.Size)
	s, ok := v.SectionOf("balcony-block")
	require.True(t, ok, "objects are recategorised after the update")
	assert.Equal(t, venue.Section("Balcony"), s)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "venue.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate: 30\n"), 0o644))

	var (
		mu   sync.Mutex
		last *Config
	)
	var buf bytes.Buffer
	w, err := Watch(path, func(c *Config) {
		mu.Lock()
		defer mu.Unlock()
		last = c
	}, WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("tick_rate: 90\n"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last != nil && last.TickRate == 90
	}, 5*time.Second, 10*time.Millisecond)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "close is idempotent")
}

func TestWatchReportsBadReloads(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "venue.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_rate: 30\n"), 0o644))

	errs := make(chan error, 16)
	w, err := Watch(path, func(*Config) {},
		WithErrorHandler(func(err error) { errs <- err }),
		WithLogger(log.New(&bytes.Buffer{}, "", 0)),
	)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("tick_rate: [oops\n"), 0o644))
	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error reported")
	}
}

func TestWatchRejectsUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Watch(filepath.Join(t.TempDir(), "venue.ini"), func(*Config) {})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Panics(t, func() { _, _ = Watch("venue.yaml", nil) })
}
