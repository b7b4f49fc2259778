package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/devicelink/devicelink-go/pkg/connection"
	"github.com/devicelink/devicelink-go/pkg/deviceid"
)

// Config holds the devicelink configuration. Flags override values read
// from the YAML file.
type Config struct {
	// InterfacesDir holds the interface definitions (.json, .yaml, .yml).
	InterfacesDir string `yaml:"interfaces_dir"`

	// DeviceID is the device identifier. When empty and both Namespace and
	// HardwareID are set, it is derived from them.
	DeviceID   string `yaml:"device_id"`
	Namespace  string `yaml:"namespace"`
	HardwareID string `yaml:"hardware_id"`

	// EventLog is the path of the CBOR event capture file. Empty disables it.
	EventLog string `yaml:"event_log"`

	LogLevel string `yaml:"log_level"`

	Backoff connection.BackoffConfig `yaml:"backoff"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		InterfacesDir: "interfaces",
		LogLevel:      "info",
		Backoff: connection.BackoffConfig{
			Base:   connection.DefaultBaseBackoff,
			Max:    connection.DefaultMaxBackoff,
			Jitter: true,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration and resolves the device id.
func (c *Config) Validate() error {
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.DeviceID == "" && c.Namespace != "" && c.HardwareID != "" {
		ns, err := uuid.Parse(c.Namespace)
		if err != nil {
			return fmt.Errorf("namespace: %w", err)
		}
		c.DeviceID = deviceid.Generate(ns, c.HardwareID)
	}
	if c.DeviceID != "" {
		if err := deviceid.Validate(c.DeviceID); err != nil {
			return fmt.Errorf("device_id: %w", err)
		}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
