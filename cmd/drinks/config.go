package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Local store kinds.
const (
	storeFile   = "file"
	storeRedis  = "redis"
	storeMemory = "memory"
)

// cliConfig is ~/.config/drinks/config.yaml.
type cliConfig struct {
	APIURL      string `yaml:"api_url"`
	Token       string `yaml:"token,omitempty"`
	LocalStore  string `yaml:"local_store"`
	DataDir     string `yaml:"data_dir,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	ColorScheme string `yaml:"color_scheme,omitempty"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		APIURL:     "http://localhost:8080/api/v1",
		LocalStore: storeFile,
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".drinks", "config.yaml")
	}
	return filepath.Join(dir, "drinks", "config.yaml")
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(path string, cfg cliConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// dataDir is where the file store keeps storage.json.
func (c cliConfig) dataDir(configPath string) string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Dir(configPath)
}
