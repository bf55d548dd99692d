// Package config loads database connection settings for the ETL helpers.
//
// The connection file is the same YAML document the pipeline scripts have
// always used:
//
//	hostname: db.example.org
//	portnumber: 5432
//	dbname: catalogue
//	dbUser: loader
//	dbPass: secret
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Error reports a configuration file that could not be loaded or validated.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// ConnectionConfig holds the parameters for one database connection.
type ConnectionConfig struct {
	Hostname   string `yaml:"hostname"`
	PortNumber int    `yaml:"portnumber"`
	DBName     string `yaml:"dbname"`
	DBUser     string `yaml:"dbUser"`
	DBPass     string `yaml:"dbPass"`
}

// Load reads and validates a connection configuration file.
func Load(path string) (*ConnectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "failed to read file", Err: err}
	}

	cfg := &ConnectionConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Path: path, Reason: "failed to parse YAML", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Reason: "invalid configuration", Err: err}
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *ConnectionConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every connection parameter is present.
func (c *ConnectionConfig) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if c.PortNumber <= 0 || c.PortNumber > 65535 {
		return fmt.Errorf("portnumber %d out of range", c.PortNumber)
	}
	if c.DBName == "" {
		return fmt.Errorf("dbname cannot be empty")
	}
	if c.DBUser == "" {
		return fmt.Errorf("dbUser cannot be empty")
	}
	if c.DBPass == "" {
		return fmt.Errorf("dbPass cannot be empty")
	}
	return nil
}

// DSN returns the postgres connection URL for this configuration.
func (c *ConnectionConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPass),
		Host:   fmt.Sprintf("%s:%d", c.Hostname, c.PortNumber),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// Redacted returns a copy safe for logging.
func (c *ConnectionConfig) Redacted() ConnectionConfig {
	out := *c
	out.DBPass = "********"
	return out
}
