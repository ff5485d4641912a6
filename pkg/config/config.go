// Package config provides configuration loading and management for the
// slice annotator. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Editor parameters
	Editor struct {
		// VertexHitRadiusPx is the on-screen pixel radius within which
		// a pointer position counts as hitting a polygon vertex
		VertexHitRadiusPx float64 `yaml:"vertexHitRadiusPx"`

		// PlaneAngleWarnDeg is the plane-normal mismatch angle in
		// degrees above which pasting logs a warning
		PlaneAngleWarnDeg float64 `yaml:"planeAngleWarnDeg"`

		// SmoothingFactor is the default smoothing factor applied to
		// annotations with smoothing enabled
		SmoothingFactor float64 `yaml:"smoothingFactor"`
	} `yaml:"editor"`

	// Display parameters
	Display struct {
		// VertexRadiusPx is the on-screen radius used to draw vertices
		VertexRadiusPx float64 `yaml:"vertexRadiusPx"`

		// FillOpacity is the default fill opacity of closed polygons
		FillOpacity float64 `yaml:"fillOpacity"`
	} `yaml:"display"`

	// Loading parameters
	Loading struct {
		// SliceSpacing is the physical distance between consecutive
		// slices of a loaded stack
		SliceSpacing float64 `yaml:"sliceSpacing"`

		// PixelSpacing is the physical in-plane size of one voxel
		PixelSpacing float64 `yaml:"pixelSpacing"`
	} `yaml:"loading"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Editor.VertexHitRadiusPx = 6
	cfg.Editor.PlaneAngleWarnDeg = 0.1
	cfg.Editor.SmoothingFactor = 0.5

	cfg.Display.VertexRadiusPx = 3
	cfg.Display.FillOpacity = 0.25

	cfg.Loading.SliceSpacing = 1.0
	cfg.Loading.PixelSpacing = 1.0

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
