package config

import "time"

// Settings is the resolved, immutable configuration for one run. It is
// built once at startup and passed by value to component constructors.
type Settings struct {
	HSVLower         [3]float64
	HSVUpper         [3]float64
	ErodeIterations  int
	DilateIterations int
	MinRadius        float64
	ResizeWidth      int
	BlurKernel       int
	TrailBuffer      int

	LogPath string

	SerialPort  string
	BaudRate    int
	ReadTimeout time.Duration
	Warmup      time.Duration
}

// Settings resolves every field, applying defaults for unset values.
func (c *Config) Settings() Settings {
	return Settings{
		HSVLower:         c.GetHSVLower(),
		HSVUpper:         c.GetHSVUpper(),
		ErodeIterations:  c.GetErodeIterations(),
		DilateIterations: c.GetDilateIterations(),
		MinRadius:        c.GetMinRadius(),
		ResizeWidth:      c.GetResizeWidth(),
		BlurKernel:       c.GetBlurKernel(),
		TrailBuffer:      c.GetTrailBuffer(),
		LogPath:          c.GetLogPath(),
		SerialPort:       c.GetSerialPort(),
		BaudRate:         c.GetBaudRate(),
		ReadTimeout:      c.GetReadTimeout(),
		Warmup:           c.GetWarmup(),
	}
}

// DefaultSettings returns the settings used when no config file is given.
func DefaultSettings() Settings {
	return EmptyConfig().Settings()
}
