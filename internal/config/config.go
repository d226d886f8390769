package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// LogDir is the directory holding the recorded debug-event file set.
	LogDir string `json:"logDir" yaml:"logDir"`
	// DataDir is where the Pebble index lives. Empty means DefaultDataDir().
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// PollIntervalMs is the ingestion poll fallback used when filesystem
	// notifications are unavailable or quiet.
	PollIntervalMs int `json:"pollIntervalMs" yaml:"pollIntervalMs"`
	// WatchDebounceMs batches bursts of file-change notifications into a
	// single ingestion pass.
	WatchDebounceMs int `json:"watchDebounceMs" yaml:"watchDebounceMs"`
	// DigestPageMax caps the number of digests served per range query.
	// Zero means unbounded.
	DigestPageMax int `json:"digestPageMax" yaml:"digestPageMax"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		PollIntervalMs:  2000,
		WatchDebounceMs: 100,
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
