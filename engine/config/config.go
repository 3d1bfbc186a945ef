package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config drives window creation and renderer defaults. Values come
// from a TOML file next to the binary; missing file or missing keys
// fall back to the defaults below.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	X      int32  `toml:"x"`
	Y      int32  `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	MsaaEnabled bool   `toml:"msaa_enabled"`
	MsaaSamples uint32 `toml:"msaa_samples"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Orbit",
			X:      100,
			Y:      100,
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfig{
			MsaaEnabled: false,
			MsaaSamples: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the given TOML file over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
