package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LENS_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LENS_LOGDIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("LENS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LENS_POLL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollIntervalMs = n
		}
	}
	if v := os.Getenv("LENS_WATCH_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WatchDebounceMs = n
		}
	}
	if v := os.Getenv("LENS_DIGEST_PAGE_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DigestPageMax = n
		}
	}
}
