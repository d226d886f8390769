package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	originalXDG := os.Getenv("XDG_DATA_HOME")
	t.Cleanup(func() {
		if originalXDG != "" {
			os.Setenv("XDG_DATA_HOME", originalXDG)
		} else {
			os.Unsetenv("XDG_DATA_HOME")
		}
	})
	os.Setenv("XDG_DATA_HOME", "/custom/data")

	if got := DefaultDataDir(); got != "/custom/data/lens" {
		t.Errorf("DefaultDataDir() = %s, want /custom/data/lens", got)
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	originalHome := os.Getenv("HOME")
	os.Unsetenv("HOME")
	t.Cleanup(func() {
		if originalHome != "" {
			os.Setenv("HOME", originalHome)
		}
	})

	if got := DefaultDataDir(); got != "./data" {
		t.Errorf("expected fallback to ./data, got %s", got)
	}
}

func TestIsDir(t *testing.T) {
	if !isDir(".") {
		t.Errorf("isDir(.) should be true")
	}
	if isDir("/non/existent/path/that/does/not/exist") {
		t.Errorf("isDir on missing path should be false")
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	result := DefaultDataDir()
	if result == "" {
		t.Fatal("DefaultDataDir should not return empty string")
	}
	if !filepath.IsAbs(result) && !strings.HasPrefix(result, "./") {
		t.Errorf("expected absolute path or ./ prefix, got %s", result)
	}
	lower := strings.ToLower(result)
	if !strings.HasSuffix(lower, "lens") && !strings.HasSuffix(lower, "data") {
		t.Errorf("unexpected dir name: %s", result)
	}
}
