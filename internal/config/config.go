// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/globe/internal/engine/camera"
	"github.com/Faultbox/globe/internal/engine/lighting"
	"github.com/Faultbox/globe/pkg/geo"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Globe    GlobeConfig    `yaml:"globe"`
	Camera   CameraConfig   `yaml:"camera"`
	Assets   AssetsConfig   `yaml:"assets"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`

	source string // file the config was loaded from
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	Fullscreen       bool   `yaml:"fullscreen"`
	VSync            bool   `yaml:"vsync"`
	FPSLimit         int    `yaml:"fps_limit"`
	MSAA             int    `yaml:"msaa"`
	ShadowResolution int    `yaml:"shadow_resolution"`
	ShadowFiltering  string `yaml:"shadow_filtering"`
}

// GlobeConfig selects the scene variant and overrides its toggles.
// Unset toggles keep the variant's own value.
type GlobeConfig struct {
	Variant      string   `yaml:"variant"`
	DrawClouds   *bool    `yaml:"draw_clouds,omitempty"`
	DebugMarkers *bool    `yaml:"debug_markers,omitempty"`
	DayTexture   *bool    `yaml:"day_texture,omitempty"`
	Skybox       *bool    `yaml:"skybox,omitempty"`
	CloudSpeed   *float32 `yaml:"cloud_speed,omitempty"`
	MarkerUpAxis string   `yaml:"marker_up_axis"`
}

// CameraConfig holds orbit camera tuning.
type CameraConfig struct {
	Controller           string  `yaml:"controller"`
	RotateSensitivity    float32 `yaml:"rotate_sensitivity"`
	TranslateSensitivity float32 `yaml:"translate_sensitivity"`
	ZoomSensitivity      float32 `yaml:"zoom_sensitivity"`
	SmoothingWeight      float32 `yaml:"smoothing_weight"`
}

// AssetsConfig holds texture locations. Relative texture paths resolve against Root.
type AssetsConfig struct {
	Root     string            `yaml:"root"`
	Textures map[string]string `yaml:"textures,omitempty"` // role -> path overrides
}

// DebugConfig holds developer settings.
type DebugConfig struct {
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	cam := camera.DefaultSettings()
	return &Config{
		Graphics: GraphicsConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			FPSLimit:         0,
			MSAA:             4,
			ShadowResolution: 4096,
			ShadowFiltering:  "gaussian",
		},
		Globe: GlobeConfig{
			Variant:      "pbr",
			MarkerUpAxis: "z",
		},
		Camera: CameraConfig{
			Controller:           "smooth",
			RotateSensitivity:    cam.RotateSensitivity,
			TranslateSensitivity: cam.TranslateSensitivity,
			ZoomSensitivity:      cam.ZoomSensitivity,
			SmoothingWeight:      cam.SmoothingWeight,
		},
		Assets: AssetsConfig{
			Root: "assets",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	switch c.Graphics.MSAA {
	case 0, 1, 2, 4, 8, 16:
	default:
		errs = append(errs, fmt.Errorf("graphics: msaa must be 0, 1, 2, 4, 8 or 16, got %d", c.Graphics.MSAA))
	}
	if _, err := lighting.ParseShadowFiltering(c.Graphics.ShadowFiltering); err != nil {
		errs = append(errs, fmt.Errorf("graphics: %w", err))
	}
	if _, err := geo.ParseAxis(c.Globe.MarkerUpAxis); err != nil {
		errs = append(errs, fmt.Errorf("globe: %w", err))
	}
	if _, err := camera.ParseController(c.Camera.Controller); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}
	if w := c.Camera.SmoothingWeight; w < 0 || w >= 1 {
		errs = append(errs, fmt.Errorf("camera: smoothing_weight must be in [0, 1), got %g", w))
	}
	return errors.Join(errs...)
}

// CameraSettings converts the camera section to controller settings.
func (c *Config) CameraSettings() camera.Settings {
	return camera.Settings{
		RotateSensitivity:    c.Camera.RotateSensitivity,
		TranslateSensitivity: c.Camera.TranslateSensitivity,
		ZoomSensitivity:      c.Camera.ZoomSensitivity,
		SmoothingWeight:      c.Camera.SmoothingWeight,
	}
}
