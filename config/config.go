package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Settings is the on-disk TOML shape of ~/.config/chatterm/settings.toml.
type Settings struct {
	DataDirectory string `toml:"data_directory"`
	BackendURL    string `toml:"backend_url"`
	DefaultModel  string `toml:"default_model"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory string
	BackendURL    string
	DefaultModel  string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CHATTERM_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
	if model := os.Getenv("CHATTERM_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("CHATTERM_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("CHATTERM_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when CHATTERM_DEBUG is set.
// Components guard every use with a nil check so logging stays optional.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (CHATTERM_DEBUG=%s) ===", os.Getenv("CHATTERM_DEBUG"))
}

// Load resolves configuration: defaults, then settings.toml, then env overrides.
// A missing settings file is created with the defaults so the first run works
// without any setup.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: GetDefaultDataDir(),
		BackendURL:    "http://127.0.0.1:8000",
		DefaultModel:  "gpt-4o-mini",
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		settings, err := LoadSettings()
		if err != nil {
			return nil, err
		}
		if settings.DataDirectory != "" {
			cfg.DataDirectory = settings.DataDirectory
		}
		if settings.BackendURL != "" {
			cfg.BackendURL = settings.BackendURL
		}
		if settings.DefaultModel != "" {
			cfg.DefaultModel = settings.DefaultModel
		}
	} else {
		if err := CreateDefaultSettings(); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}
