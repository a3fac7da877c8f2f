// Package config loads the viewer's settings from a YAML or TOML file and watches the file for venue changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/marroen/ImmersiveSeating/common"
	"github.com/marroen/ImmersiveSeating/engine/venue"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a config file whose extension is neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Format is a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the encoding from a file's extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the encoding
//   - error: ErrUnsupportedFormat for any other extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
}

// Config is the viewer's file configuration. Zero values mean "use the default".
type Config struct {
	TickRate  float64         `yaml:"tick_rate" toml:"tick_rate"`
	StartMode string          `yaml:"start_mode" toml:"start_mode"`
	Drivers   DriversConfig   `yaml:"drivers" toml:"drivers"`
	Navigator NavigatorConfig `yaml:"navigator" toml:"navigator"`
	Router    RouterConfig    `yaml:"router" toml:"router"`
	Venue     VenueConfig     `yaml:"venue" toml:"venue"`
}

// DriversConfig holds rotation driver settings.
type DriversConfig struct {
	Smoothing        float32 `yaml:"smoothing" toml:"smoothing"`
	TouchSensitivity float32 `yaml:"touch_sensitivity" toml:"touch_sensitivity"`
	InvertHorizontal bool    `yaml:"invert_horizontal" toml:"invert_horizontal"`
	InvertVertical   bool    `yaml:"invert_vertical" toml:"invert_vertical"`
	LimitPitch       bool    `yaml:"limit_pitch" toml:"limit_pitch"`
	MinPitch         float32 `yaml:"min_pitch" toml:"min_pitch"`
	MaxPitch         float32 `yaml:"max_pitch" toml:"max_pitch"`
	DoubleTapWindow  float64 `yaml:"double_tap_window" toml:"double_tap_window"`
	PermissionPoll   float32 `yaml:"permission_poll" toml:"permission_poll"`
	PermissionWait   float32 `yaml:"permission_timeout" toml:"permission_timeout"`
}

// NavigatorConfig holds view transition settings.
type NavigatorConfig struct {
	ZoomDuration  float32 `yaml:"zoom_duration" toml:"zoom_duration"`
	SeatSettle    float32 `yaml:"seat_settle" toml:"seat_settle"`
	SeatSize      float32 `yaml:"seat_size" toml:"seat_size"`
	SeatHeight    float32 `yaml:"seat_height" toml:"seat_height"`
	SeatViewStart bool    `yaml:"seat_view_start" toml:"seat_view_start"`
}

// RouterConfig holds command and deep-link settings.
type RouterConfig struct {
	ModeSwitchDelay float32 `yaml:"mode_switch_delay" toml:"mode_switch_delay"`
	LinkName        string  `yaml:"link_name" toml:"link_name"`
	Workers         int     `yaml:"workers" toml:"workers"`
}

// VenueConfig describes the venue layout.
type VenueConfig struct {
	Center   [3]float32               `yaml:"center" toml:"center"`
	Sections map[string]SectionConfig `yaml:"sections" toml:"sections"`
	Objects  []ObjectConfig           `yaml:"objects" toml:"objects"`
	SeatKeys map[string]string        `yaml:"seat_keys" toml:"seat_keys"`
	Prices   PricesConfig             `yaml:"prices" toml:"prices"`
}

// SectionConfig is one section's zoom target.
type SectionConfig struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Size     float32    `yaml:"size" toml:"size"`
	Rotation float32    `yaml:"rotation" toml:"rotation"`
}

// ObjectConfig is one touchable venue object.
type ObjectConfig struct {
	ID       string     `yaml:"id" toml:"id"`
	Name     string     `yaml:"name" toml:"name"`
	Position [3]float32 `yaml:"position" toml:"position"`
	Tag      string     `yaml:"tag" toml:"tag"`
	Section  string     `yaml:"section" toml:"section"`
}

// PricesConfig holds the seat price tiers.
type PricesConfig struct {
	Premium  float32 `yaml:"premium" toml:"premium"`
	Standard float32 `yaml:"standard" toml:"standard"`
	Default  float32 `yaml:"default" toml:"default"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - *Config: the configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and decodes a config file, choosing the decoder from its extension, and fills unset values
// with defaults.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - *Config: the configuration
//   - error: a read, format or decode error
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	c, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Decode decodes config data and fills unset values with defaults.
//
// Parameters:
//   - data: the encoded config
//   - format: the encoding
//
// Returns:
//   - *Config: the configuration
//   - error: a decode error or ErrUnsupportedFormat
func Decode(data []byte, format Format) (*Config, error) {
	c := &Config{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, c)
	case FormatTOML:
		err = toml.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	c.TickRate = common.Coalesce(c.TickRate, 60)
	c.StartMode = common.Coalesce(c.StartMode, "gyro")

	d := &c.Drivers
	d.Smoothing = common.Coalesce(d.Smoothing, 0.1)
	d.TouchSensitivity = common.Coalesce(d.TouchSensitivity, 2)
	d.MinPitch = common.Coalesce(d.MinPitch, -80)
	d.MaxPitch = common.Coalesce(d.MaxPitch, 80)
	d.DoubleTapWindow = common.Coalesce(d.DoubleTapWindow, 0.3)
	d.PermissionPoll = common.Coalesce(d.PermissionPoll, 0.2)
	d.PermissionWait = common.Coalesce(d.PermissionWait, 15)

	n := &c.Navigator
	n.ZoomDuration = common.Coalesce(n.ZoomDuration, 1.5)
	n.SeatSettle = common.Coalesce(n.SeatSettle, 0.5)
	n.SeatSize = common.Coalesce(n.SeatSize, 1)
	n.SeatHeight = common.Coalesce(n.SeatHeight, 0.5)

	r := &c.Router
	r.ModeSwitchDelay = common.Coalesce(r.ModeSwitchDelay, 0.75)
	r.LinkName = common.Coalesce(r.LinkName, "seatselection")
	r.Workers = common.Coalesce(r.Workers, 2)

	v := &c.Venue
	if len(v.Sections) == 0 {
		v.Sections = make(map[string]SectionConfig)
		for s, t := range venue.DefaultZoomTargets() {
			v.Sections[string(s)] = SectionConfig{Position: t.Position, Size: t.Size, Rotation: t.Rotation}
		}
	}
	if len(v.Objects) == 0 {
		for _, o := range venue.DefaultLayout() {
			v.Objects = append(v.Objects, ObjectConfig{
				ID:       o.ID,
				Name:     o.Name,
				Position: o.Position,
				Tag:      o.Tag,
				Section:  string(o.Section),
			})
		}
	}
	v.Prices.Premium = common.Coalesce(v.Prices.Premium, 100)
	v.Prices.Standard = common.Coalesce(v.Prices.Standard, 75)
	v.Prices.Default = common.Coalesce(v.Prices.Default, 50)
}

// ZoomTargets converts the section table to venue zoom targets.
//
// Returns:
//   - map[venue.Section]venue.ZoomTarget: the targets
func (c *Config) ZoomTargets() map[venue.Section]venue.ZoomTarget {
	out := make(map[venue.Section]venue.ZoomTarget, len(c.Venue.Sections))
	for name, s := range c.Venue.Sections {
		out[venue.Section(name)] = venue.ZoomTarget{
			Position: mgl32.Vec3(s.Position),
			Size:     s.Size,
			Rotation: s.Rotation,
		}
	}
	return out
}

// Objects converts the object list to venue objects.
//
// Returns:
//   - []venue.Object: the objects
func (c *Config) Objects() []venue.Object {
	out := make([]venue.Object, 0, len(c.Venue.Objects))
	for _, o := range c.Venue.Objects {
		out = append(out, venue.Object{
			ID:       o.ID,
			Name:     common.Coalesce(o.Name, o.ID),
			Position: mgl32.Vec3(o.Position),
			Tag:      o.Tag,
			Section:  venue.Section(o.Section),
		})
	}
	return out
}

// VenueOptions returns the venue builder options this config describes.
//
// Returns:
//   - []venue.VenueBuilderOption: the options
func (c *Config) VenueOptions() []venue.VenueBuilderOption {
	opts := []venue.VenueBuilderOption{
		venue.WithObjects(c.Objects()...),
		venue.WithCenter(mgl32.Vec3(c.Venue.Center)),
		venue.WithZoomTargets(c.ZoomTargets()),
		venue.WithPrices(venue.Prices{
			Premium:  c.Venue.Prices.Premium,
			Standard: c.Venue.Prices.Standard,
			Default:  c.Venue.Prices.Default,
		}),
	}
	if len(c.Venue.SeatKeys) > 0 {
		opts = append(opts, venue.WithSeatKeys(c.Venue.SeatKeys))
	}
	return opts
}

// ApplyZoomTargets writes the section table into a live venue and recategorizes its objects.
//
// Parameters:
//   - v: the venue
func (c *Config) ApplyZoomTargets(v venue.Venue) {
	for s, t := range c.ZoomTargets() {
		v.SetZoomTarget(s, t)
	}
	v.Refresh()
}
