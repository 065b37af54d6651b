// Package config loads the tracker configuration file and resolves it into
// the immutable Settings value handed to each component.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/positionimu/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical defaults file shipped with
// the repository.
const DefaultConfigPath = "config/positionimu.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the on-disk configuration. Every field is optional; the Get*
// methods supply defaults for anything left unset.
type Config struct {
	// Color range in OpenCV HSV units (H 0-179, S and V 0-255)
	HSVLower *[3]float64 `json:"hsv_lower,omitempty"`
	HSVUpper *[3]float64 `json:"hsv_upper,omitempty"`

	// Mask cleaning
	ErodeIterations  *int `json:"erode_iterations,omitempty"`
	DilateIterations *int `json:"dilate_iterations,omitempty"`

	// Detection / rendering
	MinRadius   *float64 `json:"min_radius,omitempty"`
	ResizeWidth *int     `json:"resize_width,omitempty"`
	BlurKernel  *int     `json:"blur_kernel,omitempty"`
	TrailBuffer *int     `json:"trail_buffer,omitempty"`

	// Record log
	LogPath *string `json:"log_path,omitempty"`

	// Orientation sensor
	SerialPort  *string `json:"serial_port,omitempty"`
	BaudRate    *int    `json:"baud_rate,omitempty"`
	ReadTimeout *string `json:"read_timeout,omitempty"` // duration string like "1s"
	Warmup      *string `json:"warmup,omitempty"`       // duration string like "2s"
}

// EmptyConfig returns a Config with all fields set to nil.
func EmptyConfig() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file on the local filesystem.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadConfigFS loads a Config from a JSON file in fsys.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadConfigFS(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	lower, upper := c.GetHSVLower(), c.GetHSVUpper()
	limits := [3]float64{179, 255, 255}
	names := [3]string{"hue", "saturation", "value"}
	for i := range 3 {
		if lower[i] < 0 || lower[i] > limits[i] {
			return fmt.Errorf("hsv_lower %s must be between 0 and %g, got %g", names[i], limits[i], lower[i])
		}
		if upper[i] < 0 || upper[i] > limits[i] {
			return fmt.Errorf("hsv_upper %s must be between 0 and %g, got %g", names[i], limits[i], upper[i])
		}
		if lower[i] > upper[i] {
			return fmt.Errorf("hsv_lower %s (%g) exceeds hsv_upper (%g)", names[i], lower[i], upper[i])
		}
	}

	if c.ErodeIterations != nil && *c.ErodeIterations < 0 {
		return fmt.Errorf("erode_iterations must be non-negative, got %d", *c.ErodeIterations)
	}
	if c.DilateIterations != nil && *c.DilateIterations < 0 {
		return fmt.Errorf("dilate_iterations must be non-negative, got %d", *c.DilateIterations)
	}
	if e, d := c.GetErodeIterations(), c.GetDilateIterations(); e != d {
		return fmt.Errorf("erode_iterations (%d) and dilate_iterations (%d) must match", e, d)
	}
	if c.MinRadius != nil && *c.MinRadius < 0 {
		return fmt.Errorf("min_radius must be non-negative, got %f", *c.MinRadius)
	}
	if c.ResizeWidth != nil && *c.ResizeWidth < 0 {
		return fmt.Errorf("resize_width must be non-negative, got %d", *c.ResizeWidth)
	}
	if c.BlurKernel != nil && *c.BlurKernel != 0 && (*c.BlurKernel < 0 || *c.BlurKernel%2 == 0) {
		return fmt.Errorf("blur_kernel must be 0 or a positive odd number, got %d", *c.BlurKernel)
	}
	if c.TrailBuffer != nil && *c.TrailBuffer < 0 {
		return fmt.Errorf("trail_buffer must be non-negative, got %d", *c.TrailBuffer)
	}
	if c.LogPath != nil && *c.LogPath == "" {
		return fmt.Errorf("log_path must not be empty")
	}
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}

	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		if _, err := time.ParseDuration(*c.ReadTimeout); err != nil {
			return fmt.Errorf("invalid read_timeout '%s': %w", *c.ReadTimeout, err)
		}
	}
	if c.Warmup != nil && *c.Warmup != "" {
		if _, err := time.ParseDuration(*c.Warmup); err != nil {
			return fmt.Errorf("invalid warmup '%s': %w", *c.Warmup, err)
		}
	}

	return nil
}

// GetHSVLower returns the lower color bound or the default.
func (c *Config) GetHSVLower() [3]float64 {
	if c.HSVLower == nil {
		return [3]float64{170, 155, 1}
	}
	return *c.HSVLower
}

// GetHSVUpper returns the upper color bound or the default.
func (c *Config) GetHSVUpper() [3]float64 {
	if c.HSVUpper == nil {
		return [3]float64{179, 255, 255}
	}
	return *c.HSVUpper
}

// GetErodeIterations returns the erode_iterations value or the default.
func (c *Config) GetErodeIterations() int {
	if c.ErodeIterations == nil {
		return 2
	}
	return *c.ErodeIterations
}

// GetDilateIterations returns the dilate_iterations value or the default.
func (c *Config) GetDilateIterations() int {
	if c.DilateIterations == nil {
		return 2
	}
	return *c.DilateIterations
}

// GetMinRadius returns the min_radius value or the default.
func (c *Config) GetMinRadius() float64 {
	if c.MinRadius == nil {
		return 10
	}
	return *c.MinRadius
}

// GetResizeWidth returns the resize_width value or the default.
func (c *Config) GetResizeWidth() int {
	if c.ResizeWidth == nil {
		return 600
	}
	return *c.ResizeWidth
}

// GetBlurKernel returns the blur_kernel value or the default.
func (c *Config) GetBlurKernel() int {
	if c.BlurKernel == nil {
		return 11
	}
	return *c.BlurKernel
}

// GetTrailBuffer returns the trail_buffer value or the default.
func (c *Config) GetTrailBuffer() int {
	if c.TrailBuffer == nil {
		return 64
	}
	return *c.TrailBuffer
}

// GetLogPath returns the log_path value or the default.
func (c *Config) GetLogPath() string {
	if c.LogPath == nil {
		return "positionIMU.csv"
	}
	return *c.LogPath
}

// GetSerialPort returns the serial_port value or the default.
func (c *Config) GetSerialPort() string {
	if c.SerialPort == nil {
		return "/dev/serial0"
	}
	return *c.SerialPort
}

// GetBaudRate returns the baud_rate value or the default.
func (c *Config) GetBaudRate() int {
	if c.BaudRate == nil {
		return 115200
	}
	return *c.BaudRate
}

// GetReadTimeout parses and returns the ReadTimeout as a time.Duration.
func (c *Config) GetReadTimeout() time.Duration {
	if c.ReadTimeout == nil || *c.ReadTimeout == "" {
		return time.Second // default
	}
	d, err := time.ParseDuration(*c.ReadTimeout)
	if err != nil {
		return time.Second // default on parse error
	}
	return d
}

// GetWarmup parses and returns the Warmup as a time.Duration.
func (c *Config) GetWarmup() time.Duration {
	if c.Warmup == nil || *c.Warmup == "" {
		return 2 * time.Second // default
	}
	d, err := time.ParseDuration(*c.Warmup)
	if err != nil {
		return 2 * time.Second // default on parse error
	}
	return d
}
