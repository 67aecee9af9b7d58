package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// current directory.
const DefaultConfigFile = "trafficgen.yaml"

// xdgConfigFile is the configuration file name inside XDGConfigDir().
const xdgConfigFile = "config.yaml"

// SearchMarker asks FindConfigFile to search the default locations instead
// of using an explicit path.
const SearchMarker = "-"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a configuration from a YAML file.
// Fields missing from the file keep the values from NewConfig().
// If the file does not exist, it returns ErrConfigNotFound.
//
// The result is not validated; call Validate() before use.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg, err := LoadConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfig decodes a YAML configuration from r on top of the defaults.
// Unknown keys are rejected so that typos do not silently fall back to
// default values.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := NewConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty document leaves the defaults untouched.
			return cfg, nil
		}
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile resolves the configuration file path:
//  1. If configPath is set and is not SearchMarker, use it directly
//  2. Look for trafficgen.yaml in the current directory
//  3. Look for config.yaml in XDGConfigDir()
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" && configPath != SearchMarker {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), xdgConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
