package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Display cadence policies. "interval" prints a meter line on a wall-clock
// cadence; "modulo" prints once every N accepted packets.
const (
	DisplayPolicyInterval = "interval"
	DisplayPolicyModulo   = "modulo"
)

// Config represents the complete probe configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
	Meter   MeterConfig   `yaml:"meter"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains UDP listener configuration
type ServerConfig struct {
	UDPPort     int    `yaml:"udp_port"`
	BindAddress string `yaml:"bind_address"`
	BufferSize  int    `yaml:"buffer_size"`
}

// DisplayConfig contains console display configuration
type DisplayConfig struct {
	Policy     string  `yaml:"policy"`      // "interval" or "modulo"
	Interval   float64 `yaml:"interval"`    // seconds between meter lines (interval policy)
	Modulo     int     `yaml:"modulo"`      // packets between meter lines (modulo policy)
	MeterWidth int     `yaml:"meter_width"` // level bar width in cells
	DebugEvery int     `yaml:"debug_every"` // sample debug line every N packets, 0 disables
}

// MeterConfig contains peak estimator configuration
type MeterConfig struct {
	Decay       bool    `yaml:"decay"`
	DecayFactor float64 `yaml:"decay_factor"`
	DBFloor     float64 `yaml:"db_floor"`
}

// HTTPConfig contains HTTP monitoring API configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a configuration that lets the probe run without a config
// file at all.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			UDPPort:     12345,
			BindAddress: "0.0.0.0",
			BufferSize:  65536,
		},
		Display: DisplayConfig{
			Policy:     DisplayPolicyInterval,
			Interval:   0.5,
			Modulo:     50,
			MeterWidth: 30,
			DebugEvery: 100,
		},
		Meter: MeterConfig{
			Decay:       true,
			DecayFactor: 0.95,
			DBFloor:     -60,
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the complete configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Display.Validate(); err != nil {
		return fmt.Errorf("display config: %w", err)
	}

	if err := c.Meter.Validate(); err != nil {
		return fmt.Errorf("meter config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates UDP listener configuration
func (s *ServerConfig) Validate() error {
	if s.UDPPort < 1 || s.UDPPort > 65535 {
		return fmt.Errorf("udp_port must be between 1 and 65535, got %d", s.UDPPort)
	}

	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if s.BufferSize < 1024 {
		return fmt.Errorf("buffer_size must be at least 1024 bytes, got %d", s.BufferSize)
	}

	return nil
}

// Validate validates display configuration
func (d *DisplayConfig) Validate() error {
	if d.Policy != DisplayPolicyInterval && d.Policy != DisplayPolicyModulo {
		return fmt.Errorf("policy must be '%s' or '%s', got '%s'",
			DisplayPolicyInterval, DisplayPolicyModulo, d.Policy)
	}

	if d.Policy == DisplayPolicyInterval && d.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %f", d.Interval)
	}

	if d.Policy == DisplayPolicyModulo && d.Modulo < 1 {
		return fmt.Errorf("modulo must be at least 1, got %d", d.Modulo)
	}

	if d.MeterWidth < 1 {
		return fmt.Errorf("meter_width must be at least 1, got %d", d.MeterWidth)
	}

	if d.DebugEvery < 0 {
		return fmt.Errorf("debug_every cannot be negative, got %d", d.DebugEvery)
	}

	return nil
}

// Validate validates peak estimator configuration
func (m *MeterConfig) Validate() error {
	if m.DecayFactor <= 0 || m.DecayFactor >= 1 {
		return fmt.Errorf("decay_factor must be between 0 and 1 (exclusive), got %f", m.DecayFactor)
	}

	if m.DBFloor >= 0 {
		return fmt.Errorf("db_floor must be negative, got %f", m.DBFloor)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetInterval returns the display interval as a time.Duration
func (d *DisplayConfig) GetInterval() time.Duration {
	return time.Duration(d.Interval * float64(time.Second))
}
