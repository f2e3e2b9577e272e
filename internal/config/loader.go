// Package config loads, validates and writes the toolbridge configuration
// file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound indicates no config file was found in the standard search locations.
var ErrConfigNotFound = errors.New("configuration file not found")

var configNames = []string{"toolbridge.yaml", "toolbridge.yml", "toolbridge.json"}

// Load reads the config at explicitPath, or searches the standard locations
// when it is empty. It returns the validated config with defaults applied and
// the path it was read from.
func Load(explicitPath string) (*Config, string, error) {
	var configPath string
	var err error

	if explicitPath != "" {
		configPath = explicitPath
		if _, err := os.Stat(configPath); err != nil {
			if os.IsNotExist(err) {
				return nil, "", fmt.Errorf("specified config file does not exist: %s", configPath)
			}
			return nil, "", fmt.Errorf("cannot access config file %s: %w", configPath, err)
		}
	} else {
		configPath, err = findConfigFile()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrConfigNotFound, err)
		}
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open config file %s: %w", configPath, err)
	}
	defer file.Close()

	cfg, err := loadFromFile(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	cfg.applyDefaults()
	return cfg, configPath, nil
}

// LoadOrDefault is Load, except that a missing config file yields Default.
func LoadOrDefault(explicitPath string) (*Config, string, error) {
	cfg, path, err := Load(explicitPath)
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), "", nil
	}
	return cfg, path, err
}

// findConfigFile searches for configuration files in the expected locations
func findConfigFile() (string, error) {
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		dir := filepath.Join(userConfigDir, "toolbridge")
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	userConfigPath := "~/.config/toolbridge/toolbridge.yaml"
	if userConfigDir != "" {
		userConfigPath = filepath.Join(userConfigDir, "toolbridge", "toolbridge.yaml")
	}
	return "", fmt.Errorf(`configuration file not found. Create one of:
  - ./toolbridge.yaml (current directory)
  - %s (user config directory)`, userConfigPath)
}

// loadFromFile reads and parses a configuration file from any fs.File
// source. The format is picked from the file name's extension.
func loadFromFile(file fs.File) (*Config, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("error getting file info: %w", err)
	}
	return parseConfigData(data, stat.Name())
}

// parseConfigData parses config data based on the filename extension.
// Environment variables are expanded in the raw content before parsing,
// supporting both $VAR and ${VAR} syntax throughout the entire config.
func parseConfigData(data []byte, filename string) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	addExpansionHint := func(parseErr error) error {
		if strings.Contains(string(data), "$") {
			return fmt.Errorf("%w (hint: environment variable expansion may have introduced invalid syntax if values contain special characters)", parseErr)
		}
		return parseErr
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(expanded, &cfg); err != nil {
			return nil, addExpansionHint(fmt.Errorf("error parsing JSON config: %w", err))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, addExpansionHint(fmt.Errorf("error parsing YAML config: %w", err))
		}
	default:
		// Separate structs so a partial YAML decode cannot leak into the JSON attempt.
		yamlErr := yaml.Unmarshal(expanded, &cfg)
		if yamlErr == nil {
			return &cfg, nil
		}
		var jsonCfg Config
		jsonErr := json.Unmarshal(expanded, &jsonCfg)
		if jsonErr == nil {
			return &jsonCfg, nil
		}
		return nil, addExpansionHint(fmt.Errorf("failed to parse config file: YAML error: %v, JSON error: %v", yamlErr, jsonErr))
	}
	return &cfg, nil
}
