package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Orbit", cfg.Window.Title)
	assert.Equal(t, uint32(800), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height)
	assert.False(t, cfg.Renderer.MsaaEnabled)
	assert.Equal(t, uint32(4), cfg.Renderer.MsaaSamples)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.toml")
	content := `
[window]
title = "Spinning"
width = 1920
height = 1080

[renderer]
msaa_enabled = true
msaa_samples = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Spinning", cfg.Window.Title)
	assert.Equal(t, uint32(1920), cfg.Window.Width)
	assert.True(t, cfg.Renderer.MsaaEnabled)
	assert.Equal(t, uint32(8), cfg.Renderer.MsaaSamples)

	// Untouched sections keep their defaults.
	assert.Equal(t, int32(100), cfg.Window.X)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window\ntitle="), 0o644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
