// config/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config holds the user-configurable settings and loads them
// from a configuration file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/conflict"
	"github.com/glidernav/airwarn/loader"
	"github.com/glidernav/airwarn/projection"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variables that override
// settings, e.g. AIRWARN_LOG_LEVEL.
const EnvPrefix = "AIRWARN"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// MapDirs are searched for an "airspaces" subdirectory.
	MapDirs []string `mapstructure:"map_dirs" validate:"dive,required"`
	// AirspaceFiles lists the source files to load; "All" loads every
	// file found.
	AirspaceFiles []string `mapstructure:"airspace_files" validate:"dive,required"`
	// Categories overrides drawing and warning per category, keyed by
	// canonical category name. Categories not listed are enabled.
	Categories map[string]CategoryConfig `mapstructure:"categories" validate:"dive,keys,category,endkeys"`

	Warnings   WarningConfig    `mapstructure:"warnings"`
	Distances  DistanceConfig   `mapstructure:"distances"`
	Opacity    OpacityConfig    `mapstructure:"opacity"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Log        LogConfig        `mapstructure:"log"`

	MemoryCacheSize int `mapstructure:"memory_cache_size" validate:"gte=0"`
}

// CategoryConfig enables drawing and warning for a category; unset
// fields are enabled.
type CategoryConfig struct {
	Draw *bool `mapstructure:"draw"`
	Warn *bool `mapstructure:"warn"`
}

func (cc CategoryConfig) Enabled() bool {
	return (cc.Draw == nil || *cc.Draw) && (cc.Warn == nil || *cc.Warn)
}

type WarningConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Popups  bool `mapstructure:"popups"`
	Filling bool `mapstructure:"filling"`
	// SuppressMinutes is how long an unchanged warning stays quiet.
	SuppressMinutes int `mapstructure:"suppress_minutes" validate:"gte=0"`
	// DisplaySeconds is how long a warning pop-up is shown.
	DisplaySeconds int `mapstructure:"display_seconds" validate:"gte=0"`
}

// DistanceConfig holds the warning margins in meters.
type DistanceConfig struct {
	HorClose          float64 `mapstructure:"hor_close" validate:"gte=0,gtefield=HorVeryClose"`
	HorVeryClose      float64 `mapstructure:"hor_very_close" validate:"gte=0"`
	VerBelowClose     float64 `mapstructure:"ver_below_close" validate:"gte=0,gtefield=VerBelowVeryClose"`
	VerBelowVeryClose float64 `mapstructure:"ver_below_very_close" validate:"gte=0"`
	VerAboveClose     float64 `mapstructure:"ver_above_close" validate:"gte=0,gtefield=VerAboveVeryClose"`
	VerAboveVeryClose float64 `mapstructure:"ver_above_very_close" validate:"gte=0"`
}

// OpacityConfig holds fill opacities in percent for None, Near, Very
// Near and Inside.
type OpacityConfig struct {
	Lateral  []int `mapstructure:"lateral" validate:"len=4,dive,gte=0,lte=100"`
	Vertical []int `mapstructure:"vertical" validate:"len=4,dive,gte=0,lte=100"`
}

type ProjectionConfig struct {
	Kind      string  `mapstructure:"kind" validate:"oneof=cylindrical lambert"`
	Parallel1 float64 `mapstructure:"parallel1" validate:"gt=-90,lt=90"`
	Parallel2 float64 `mapstructure:"parallel2" validate:"gt=-90,lt=90"`
	OriginLat float64 `mapstructure:"origin_lat" validate:"gt=-90,lt=90"`
	OriginLon float64 `mapstructure:"origin_lon" validate:"gte=-180,lte=180"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// Dir is where the log file is written; the user config directory
	// if empty.
	Dir string `mapstructure:"dir"`
}

var defaults = map[string]any{
	"map_dirs":                       []string{},
	"airspace_files":                 []string{loader.AllFiles},
	"warnings.enabled":               true,
	"warnings.popups":                true,
	"warnings.filling":               true,
	"warnings.suppress_minutes":      5,
	"warnings.display_seconds":       10,
	"distances.hor_close":            2000.,
	"distances.hor_very_close":       1000.,
	"distances.ver_below_close":      200.,
	"distances.ver_below_very_close": 100.,
	"distances.ver_above_close":      200.,
	"distances.ver_above_very_close": 100.,
	"opacity.lateral":                []int{0, 10, 20, 30},
	"opacity.vertical":               []int{0, 30, 50, 70},
	"projection.kind":                "lambert",
	"projection.parallel1":           48.,
	"projection.parallel2":           54.,
	"projection.origin_lat":          51.,
	"projection.origin_lon":          10.,
	"log.level":                      "info",
	"log.dir":                        "",
	"memory_cache_size":              64,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := lookupCategory(fl.Field().String())
		return ok
	})
	if err != nil {
		panic(err)
	}
	return v
}

// lookupCategory finds a category by canonical name, ignoring case since
// configuration keys are case-insensitive.
func lookupCategory(name string) (airspace.Category, bool) {
	for _, c := range airspace.AllCategories() {
		if strings.EqualFold(c.CanonicalName(), name) {
			return c, true
		}
	}
	return airspace.CategoryUnknown, false
}

// Load reads the configuration file at path, which may be YAML, JSON or
// TOML, applying environment overrides and defaults. With an empty path
// only the environment and defaults are used.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v, path)
}

// Watch calls changed with the reloaded configuration each time the file
// at path is modified. Changes that fail to load or validate are passed
// to changed as an error and leave the previous configuration in effect.
// changed is called from a separate goroutine.
func Watch(path string, changed func(*Config, error)) error {
	if path == "" {
		return errors.New("no configuration file to watch")
	}
	v, err := newViper(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		changed(decode(v, e.Name))
	})
	v.WatchConfig()
	return nil
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper, path string) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := projection.New(c.Descriptor()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Descriptor() projection.Descriptor {
	p := c.Projection
	switch p.Kind {
	case "cylindrical":
		return projection.Descriptor{Kind: projection.KindCylindrical, Parallel1: p.Parallel1}
	case "lambert":
		return projection.Descriptor{
			Kind:      projection.KindLambert,
			Parallel1: p.Parallel1,
			Parallel2: p.Parallel2,
			OriginLat: p.OriginLat,
			OriginLon: p.OriginLon,
		}
	default:
		return projection.Descriptor{}
	}
}

func (c *Config) NewProjection() (projection.Projection, error) {
	return projection.New(c.Descriptor())
}

func (c *Config) WarningDistance() airspace.WarningDistance {
	d := c.Distances
	return airspace.WarningDistance{
		HorClose:          d.HorClose,
		HorVeryClose:      d.HorVeryClose,
		VerBelowClose:     d.VerBelowClose,
		VerBelowVeryClose: d.VerBelowVeryClose,
		VerAboveClose:     d.VerAboveClose,
		VerAboveVeryClose: d.VerAboveVeryClose,
	}
}

// Disabled returns the categories that are either not drawn or not
// warned about.
func (c *Config) Disabled() map[airspace.Category]bool {
	d := make(map[airspace.Category]bool)
	for name, cc := range c.Categories {
		if cat, ok := lookupCategory(name); ok && !cc.Enabled() {
			d[cat] = true
		}
	}
	return d
}

// ConflictSettings returns the settings for the conflict aggregator.
func (c *Config) ConflictSettings() conflict.Settings {
	s := conflict.Settings{
		WarningEnabled: c.Warnings.Enabled,
		FillingEnabled: c.Warnings.Filling,
		PopupEnabled:   c.Warnings.Popups,
		Distances:      c.WarningDistance(),
		SuppressTime:   time.Duration(c.Warnings.SuppressMinutes) * time.Minute,
		DisplayTime:    time.Duration(c.Warnings.DisplaySeconds) * time.Second,
		Disabled:       c.Disabled(),
	}
	copy(s.LateralOpacity[:], c.Opacity.Lateral)
	copy(s.VerticalOpacity[:], c.Opacity.Vertical)
	return s
}
