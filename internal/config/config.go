package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/evas-ssec/shis2mirto/internal/shis"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Output    OutputConfig    `toml:"output"`    // Product output settings
	Selection SelectionConfig `toml:"selection"` // Channel and geometry selection settings
	Shis      shis.Schema     `toml:"shis"`      // Source granule variable naming overrides
	Sonde     SondeConfig     `toml:"sonde"`     // Radiosonde narrator settings
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// OutputConfig contains product output configuration
type OutputConfig struct {
	Dir string `toml:"dir"` // Directory the fov.nc / firstguess.nc products are written into
}

// SelectionConfig contains channel matching and geometry filter settings
type SelectionConfig struct {
	ChannelsVariable string  `toml:"channels_variable"`       // Variable holding desired wavenumbers in the channels file
	PlevelsVariable  string  `toml:"plevels_variable"`        // Variable holding pressure levels in the plevels file
	CenterAngle      float64 `toml:"center_angle"`            // Center of the accepted FOV angle window in degrees
	AngleRange       float64 `toml:"angle_range"`             // Half-range of the angle window in degrees (0 = default of 1.5)
	MaxDistance      float64 `toml:"max_wavenumber_distance"` // Reject channel matches farther than this many cm-1 (0 = closest always wins)
}

// SondeConfig contains radiosonde narrator endpoint and cache settings
type SondeConfig struct {
	BaseURL               string `toml:"base_url"`                // Base URL of the radiosonde narrator service
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP request timeout in seconds
	MaxRetries            int    `toml:"max_retries"`             // Maximum number of retry attempts for failed requests
	CacheDir              string `toml:"cache_dir"`               // Directory for the profile cache database (empty disables caching)
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Selection: SelectionConfig{
			ChannelsVariable: "wavenumber",
			PlevelsVariable:  "plevels",
			CenterAngle:      0.0,
			AngleRange:       1.5,
		},
		Shis: shis.DefaultSchema(),
		Sonde: SondeConfig{
			RequestTimeoutSeconds: 30,
			MaxRetries:            3,
			CacheDir:              "cache",
		},
	}
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations
// in order of preference. When no file exists anywhere, the built-in
// defaults are returned rather than an error; a conversion needs no
// config file unless it wants to override something.
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // Repository layout location
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			return config, nil
		}
	}

	// A user-named path that does not exist is an error; silent fallback
	// to defaults would hide the typo.
	if preferredPath != "" {
		return nil, fmt.Errorf("config file not found: %s", preferredPath)
	}
	return Default(), nil
}

// Validate validates the configuration and applies defaults for fields
// that were left unset.
func (c *Config) Validate() error {
	// Validate logging config
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Validate output config
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}

	// Validate selection config
	if c.Selection.ChannelsVariable == "" {
		c.Selection.ChannelsVariable = "wavenumber"
	}
	if c.Selection.PlevelsVariable == "" {
		c.Selection.PlevelsVariable = "plevels"
	}
	if c.Selection.AngleRange == 0 {
		c.Selection.AngleRange = 1.5
	}
	if c.Selection.AngleRange < 0 {
		return fmt.Errorf("angle_range must be positive: %f", c.Selection.AngleRange)
	}
	if c.Selection.MaxDistance < 0 {
		return fmt.Errorf("max_wavenumber_distance must be 0 or greater: %f", c.Selection.MaxDistance)
	}

	// Fill in any granule variable names the file did not override
	defaults := shis.DefaultSchema()
	if c.Shis.Wavenumber == "" {
		c.Shis.Wavenumber = defaults.Wavenumber
	}
	if c.Shis.FOVAngle == "" {
		c.Shis.FOVAngle = defaults.FOVAngle
	}
	if c.Shis.Radiance == "" {
		c.Shis.Radiance = defaults.Radiance
	}
	if c.Shis.Longitude == "" {
		c.Shis.Longitude = defaults.Longitude
	}
	if c.Shis.Latitude == "" {
		c.Shis.Latitude = defaults.Latitude
	}
	if c.Shis.BaseTime == "" {
		c.Shis.BaseTime = defaults.BaseTime
	}
	if c.Shis.TimeOffset == "" {
		c.Shis.TimeOffset = defaults.TimeOffset
	}

	// Validate sonde config
	if c.Sonde.RequestTimeoutSeconds == 0 {
		c.Sonde.RequestTimeoutSeconds = 30
	}
	if c.Sonde.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("sonde request_timeout_seconds must be greater than 0: %d", c.Sonde.RequestTimeoutSeconds)
	}
	if c.Sonde.MaxRetries < 0 {
		return fmt.Errorf("sonde max_retries must be 0 or greater: %d", c.Sonde.MaxRetries)
	}

	return nil
}

// CleanPath expands a leading ~ and makes the path absolute. Arguments
// arrive from the command line, where both shorthands are common. On
// any expansion failure the input is returned unchanged.
func CleanPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
