package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdal/pkg/driver"
)

var outputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Driver.Validate(); err != nil {
		return err
	}

	if c.OutputFormat != "" {
		ok := false
		for _, m := range outputModes {
			if c.OutputFormat == m {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(outputModes, ", "))
		}
	}
	return nil
}

// Validate checks that the driver type is registered and has what it
// needs to connect.
func (c DriverConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("driver type is required")
	}
	if !driver.IsRegistered(strings.ToLower(c.Type)) {
		return &driver.UnknownDriverError{Type: c.Type, Available: driver.List()}
	}
	if strings.EqualFold(c.Type, "postgres") && c.DSN == "" && c.Database == "" {
		return fmt.Errorf("postgres driver requires driver.dsn or driver.database")
	}
	return nil
}
