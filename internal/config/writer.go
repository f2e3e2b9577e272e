package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FindDefaultConfigPath returns the default config path for the current platform
func FindDefaultConfigPath() string {
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return configNames[0]
	}
	return filepath.Join(configDir, "toolbridge", configNames[0])
}

// Write validates cfg and writes it to path as YAML, creating the parent
// directory when needed. An existing file is only replaced when overwrite
// is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
