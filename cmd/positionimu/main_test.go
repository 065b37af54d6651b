package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/positionimu/internal/config"
)

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, 64, *buffer)
	assert.Equal(t, -1, *piCamera)
	assert.Equal(t, "/dev/serial0", *serialPath)
	assert.Equal(t, "positionIMU.csv", *logPath)
	assert.False(t, *showDisplay)
	assert.False(t, *devMode)
}

func TestShortFlags(t *testing.T) {
	for short, long := range map[string]string{"v": "-video", "b": "-buffer", "r": "-picamera"} {
		f := flag.Lookup(short)
		require.NotNil(t, f, short)
		assert.Contains(t, f.Usage, long)
	}

	old := *videoPath
	defer func() { *videoPath = old }()
	require.NoError(t, flag.Set("v", "clip.mp4"))
	assert.Equal(t, "clip.mp4", *videoPath)
	assert.False(t, *verbose)
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestLoadSettingsFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trail_buffer": 16, "log_path": "file.csv", "warmup": "500ms"}`), 0o644))

	old := *logPath
	*logPath = "flag.csv"
	t.Cleanup(func() { *logPath = old })

	s, err := loadSettings(path, map[string]bool{"log": true})
	require.NoError(t, err)
	assert.Equal(t, 16, s.TrailBuffer)
	assert.Equal(t, "flag.csv", s.LogPath)
	assert.Equal(t, 500*time.Millisecond, s.Warmup)
}

func TestLoadSettingsRejectsInvalidFlag(t *testing.T) {
	old := *baudRate
	*baudRate = 0
	t.Cleanup(func() { *baudRate = old })

	_, err := loadSettings("", map[string]bool{"baud": true})
	assert.Error(t, err)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := loadSettings(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestOpenSensorPortDevMode(t *testing.T) {
	old := *devMode
	*devMode = true
	t.Cleanup(func() { *devMode = old })

	port, err := openSensorPort(config.DefaultSettings())
	require.NoError(t, err)
	assert.NoError(t, port.Close())
}
