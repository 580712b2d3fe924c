package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Serial.Device != "/dev/ttyUSB0" {
		t.Errorf("Expected default device /dev/ttyUSB0, got %s", cfg.Serial.Device)
	}
	if cfg.Serial.ReadTimeoutMs != 2000 {
		t.Errorf("Expected default read timeout 2000 ms, got %d", cfg.Serial.ReadTimeoutMs)
	}
	if cfg.Archive.MaxSnapshots != 100 {
		t.Errorf("Expected default max snapshots 100, got %d", cfg.Archive.MaxSnapshots)
	}
	if cfg.Archive.DatabasePath == "" {
		t.Error("Expected a default database path")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected the default config to validate, got: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "yaesutool-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid Config", func(t *testing.T) {
		path := filepath.Join(tempDir, "config.yaml")
		content := `
serial:
  device: /dev/ttyS3
archive:
  max_snapshots: 5
logging:
  level: debug
  console: true
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if cfg.Serial.Device != "/dev/ttyS3" {
			t.Errorf("Expected device /dev/ttyS3, got %s", cfg.Serial.Device)
		}
		if cfg.Archive.MaxSnapshots != 5 {
			t.Errorf("Expected max snapshots 5, got %d", cfg.Archive.MaxSnapshots)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Expected level debug, got %s", cfg.Logging.Level)
		}
		// Unset fields still get defaults.
		if cfg.Serial.ReadTimeoutMs != 2000 {
			t.Errorf("Expected default read timeout, got %d", cfg.Serial.ReadTimeoutMs)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(tempDir, "nope.yaml")); err == nil {
			t.Error("Expected error for a missing config file")
		}
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := filepath.Join(tempDir, "bad.yaml")
		if err := os.WriteFile(path, []byte("serial: [\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("Expected error for malformed YAML")
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Serial.ReadTimeoutMs = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for a negative read timeout")
	}

	cfg = Default()
	cfg.Archive.MaxSnapshots = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative max snapshots")
	}
}
