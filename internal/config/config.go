// Package config handles resolving configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// MinSecretLen is the minimum byte length accepted for the session secret.
const MinSecretLen = 32

// Config is the resolved service configuration. All fields can be set from
// the YAML configuration file; unset fields fall back to [Default] values.
type Config struct {
	// Port is the TCP port the web server listens on.
	Port int `yaml:"port"`
	// AllowedOrigin is the single browser origin permitted by CORS.
	AllowedOrigin string `yaml:"allowed_origin"`
	// SessionSecret signs session tokens. It is mandatory and must be at
	// least MinSecretLen bytes; there is no built-in default.
	SessionSecret string `yaml:"session_secret"`
	// CredentialDBFilepath is the sqlite file holding users and sessions.
	CredentialDBFilepath string `yaml:"credential_db_filepath"`
	// RecordDBFilepath is the sqlite file holding the record document.
	RecordDBFilepath string `yaml:"record_db_filepath"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`
	// DevMode enables request logging and disables the Secure cookie flag
	// so the service can be exercised over plain HTTP locally.
	DevMode bool `yaml:"dev_mode"`
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the user must set
// session_secret.
func Default() *Config {
	return &Config{
		Port:                 3000,
		AllowedOrigin:        "http://localhost:3000",
		SessionSecret:        "", // must be set by the user
		CredentialDBFilepath: filepath.Join(xdg.DataHome, "datapad", "credentials.sqlite"),
		RecordDBFilepath:     filepath.Join(xdg.DataHome, "datapad", "records.sqlite"),
		LogLevel:             "INFO",
		DevMode:              false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults,
// and validates it for completeness.
func Load(path string) (*Config, error) {
	bytes, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports the first configuration problem found, if any.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port must be in 1-65535, got %d", c.Port)
	case c.SessionSecret == "":
		return fmt.Errorf("session_secret must be set")
	case len(c.SessionSecret) < MinSecretLen:
		return fmt.Errorf("session_secret must be at least %d bytes", MinSecretLen)
	case c.CredentialDBFilepath == "":
		return fmt.Errorf("credential_db_filepath must be set")
	case c.RecordDBFilepath == "":
		return fmt.Errorf("record_db_filepath must be set")
	}
	return nil
}
