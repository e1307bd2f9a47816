package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config back to the file it was loaded from, or to the
// user's config directory when it came from defaults only.
func (c *Config) Save() error {
	return c.SaveTo(c.SavePath())
}

// SavePath returns the file Save writes to.
func (c *Config) SavePath() string {
	if c.source != "" {
		return c.source
	}
	return filepath.Join(ConfigDir(), "config.yaml")
}

// RememberToggles stores the runtime scene switches as explicit overrides.
func (c *Config) RememberToggles(drawClouds, debugMarkers, dayTexture bool) {
	c.Globe.DrawClouds = &drawClouds
	c.Globe.DebugMarkers = &debugMarkers
	c.Globe.DayTexture = &dayTexture
}

// SaveTo writes the config to path, replacing any existing file only once the
// new contents are fully written.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}
