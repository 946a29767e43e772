// Package config provides configuration management for the leapdal CLI.
//
// Settings come from defaults, a leapdal.yaml file, LEAPDAL_ environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"github.com/leapstack-labs/leapdal/pkg/driver"
)

// Default configuration values.
const (
	DefaultDriver = "sqlite"
	DefaultPath   = ".leapdal/store.db"
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Config file names, in lookup order.
var configFileNames = []string{"leapdal.yaml", "leapdal.yml"}

// Config holds all CLI configuration options.
type Config struct {
	Driver       DriverConfig `koanf:"driver"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// DriverConfig selects and configures the storage backend.
type DriverConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	DSN      string            `koanf:"dsn"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Database string            `koanf:"database"`
	Options  map[string]string `koanf:"options"`
}

// Backend converts the settings into the driver package's Config.
func (c DriverConfig) Backend() driver.Config {
	return driver.Config{
		Type:     c.Type,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		Options:  c.Options,
	}
}
