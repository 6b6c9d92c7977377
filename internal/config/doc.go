// Package config provides configuration loading and validation for the
// stream probe. It handles YAML-based configuration with struct validation
// and supplies defaults so the probe runs with no config file at all.
package config
