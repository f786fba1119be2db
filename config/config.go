// Package config loads and saves the engine settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"matengine/gpu"
)

// Settings is the content of an engine settings file.
type Settings struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Assets   Assets   `toml:"assets"`
	Log      Log      `toml:"log"`
}

type Window struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	VSync      bool   `toml:"vsync"`
	Resizable  bool   `toml:"resizable"`
	Fullscreen bool   `toml:"fullscreen"`
}

type Renderer struct {
	// LightBatchSize is the number of lights uploaded per single-pass draw.
	LightBatchSize  int        `toml:"light_batch_size"`
	// ForcedTechnique, when set, is selected on every material that has it.
	ForcedTechnique string     `toml:"forced_technique"`
	// DisabledCaps are removed from the detected capabilities so fallback
	// techniques can be exercised on capable hardware.
	DisabledCaps    []string   `toml:"disabled_caps"`
	FrustumCulling  bool       `toml:"frustum_culling"`
	Background      [4]float32 `toml:"background"`
}

type Assets struct {
	Roots []string `toml:"roots"`
	Watch bool     `toml:"watch"`
}

type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "Material Engine",
			VSync:     true,
			Resizable: true,
		},
		Renderer: Renderer{
			LightBatchSize: 4,
			FrustumCulling: true,
			Background:     [4]float32{0.1, 0.1, 0.12, 1},
		},
		Assets: Assets{
			Roots: []string{"data"},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the settings at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path.
func Save(path string, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Settings) Validate() error {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	if s.Renderer.LightBatchSize < 1 {
		return fmt.Errorf("light_batch_size must be at least 1, got %d", s.Renderer.LightBatchSize)
	}
	if _, err := s.DisabledCaps(); err != nil {
		return err
	}
	if len(s.Assets.Roots) == 0 {
		return errors.New("at least one asset root is required")
	}
	return nil
}

// DisabledCaps parses Renderer.DisabledCaps.
func (s *Settings) DisabledCaps() (gpu.CapSet, error) {
	caps, err := gpu.ParseCaps(s.Renderer.DisabledCaps)
	if err != nil {
		return 0, fmt.Errorf("disabled_caps: %w", err)
	}
	return caps, nil
}

// MaskCaps removes the disabled capabilities from detected.
func (s *Settings) MaskCaps(detected gpu.CapSet) gpu.CapSet {
	disabled, err := s.DisabledCaps()
	if err != nil {
		return detected
	}
	return detected &^ disabled
}
