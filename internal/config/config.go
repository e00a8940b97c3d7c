package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	JWT struct {
		AccessSecret   string `yaml:"access_secret"`
		RefreshSecret  string `yaml:"refresh_secret"`
		AccessTTLSecs  int64  `yaml:"access_ttl_seconds"`
		RefreshTTLSecs int64  `yaml:"refresh_ttl_seconds"`
	} `yaml:"jwt"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// AccessTTL returns the access-token lifetime as a duration.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLSecs) * time.Second
}

// RefreshTTL returns the refresh-token lifetime as a duration.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLSecs) * time.Second
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.JWT.AccessSecret == "" || config.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt secrets must be configured")
	}
	if config.JWT.AccessTTLSecs <= 0 {
		config.JWT.AccessTTLSecs = 3600
	}
	if config.JWT.RefreshTTLSecs <= 0 {
		config.JWT.RefreshTTLSecs = 7 * 24 * 3600
	}

	return config, nil
}
