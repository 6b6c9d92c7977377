package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}

	if cfg.Server.UDPPort != 12345 {
		t.Errorf("Expected default port 12345, got %d", cfg.Server.UDPPort)
	}
	if cfg.Meter.DecayFactor != 0.95 {
		t.Errorf("Expected default decay factor 0.95, got %f", cfg.Meter.DecayFactor)
	}
	if cfg.Meter.DBFloor != -60 {
		t.Errorf("Expected default dB floor -60, got %f", cfg.Meter.DBFloor)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid udp port",
			mutate:      func(c *Config) { c.Server.UDPPort = 70000 },
			expectError: true,
			errorMsg:    "udp_port must be between",
		},
		{
			name:        "empty bind address",
			mutate:      func(c *Config) { c.Server.BindAddress = "" },
			expectError: true,
			errorMsg:    "bind_address cannot be empty",
		},
		{
			name:        "buffer too small",
			mutate:      func(c *Config) { c.Server.BufferSize = 512 },
			expectError: true,
			errorMsg:    "buffer_size must be at least",
		},
		{
			name:        "unknown display policy",
			mutate:      func(c *Config) { c.Display.Policy = "adaptive" },
			expectError: true,
			errorMsg:    "policy must be",
		},
		{
			name:        "non-positive interval",
			mutate:      func(c *Config) { c.Display.Interval = 0 },
			expectError: true,
			errorMsg:    "interval must be positive",
		},
		{
			name: "modulo policy ignores interval",
			mutate: func(c *Config) {
				c.Display.Policy = DisplayPolicyModulo
				c.Display.Interval = 0
			},
		},
		{
			name: "zero modulo rejected under modulo policy",
			mutate: func(c *Config) {
				c.Display.Policy = DisplayPolicyModulo
				c.Display.Modulo = 0
			},
			expectError: true,
			errorMsg:    "modulo must be at least",
		},
		{
			name:        "decay factor of one",
			mutate:      func(c *Config) { c.Meter.DecayFactor = 1.0 },
			expectError: true,
			errorMsg:    "decay_factor must be between",
		},
		{
			name:        "positive db floor",
			mutate:      func(c *Config) { c.Meter.DBFloor = 6 },
			expectError: true,
			errorMsg:    "db_floor must be negative",
		},
		{
			name: "http enabled requires valid port",
			mutate: func(c *Config) {
				c.HTTP.Enabled = true
				c.HTTP.Port = 0
			},
			expectError: true,
			errorMsg:    "http port must be between",
		},
		{
			name: "http disabled skips http validation",
			mutate: func(c *Config) {
				c.HTTP.Enabled = false
				c.HTTP.Port = 0
			},
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "unknown log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  udp_port: 9000
display:
  policy: "modulo"
  modulo: 25
meter:
  decay: false
logging:
  level: "debug"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.UDPPort != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.UDPPort)
	}
	if cfg.Display.Policy != DisplayPolicyModulo || cfg.Display.Modulo != 25 {
		t.Errorf("Expected modulo policy every 25 packets, got %s/%d",
			cfg.Display.Policy, cfg.Display.Modulo)
	}
	if cfg.Meter.Decay {
		t.Error("Expected decay disabled")
	}

	// Unset fields keep their defaults.
	if cfg.Server.BindAddress != "0.0.0.0" {
		t.Errorf("Expected default bind address, got %s", cfg.Server.BindAddress)
	}
	if cfg.Meter.DecayFactor != 0.95 {
		t.Errorf("Expected default decay factor, got %f", cfg.Meter.DecayFactor)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  udp_port: -1\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestGetInterval(t *testing.T) {
	d := DisplayConfig{Interval: 0.5}
	if got := d.GetInterval(); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", got)
	}
}
