package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/chatterm
// Windows: C:\Users\username\.config\chatterm
func GetConfigDir() string {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		return filepath.Join(userProfile, ".config", "chatterm")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".config", "chatterm")
}

// GetDefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/chatterm
// Windows: C:\Users\username\AppData\Local\chatterm
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(localAppData, "chatterm")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".local", "share", "chatterm")
}

// GetCacheDir returns the platform-specific cache directory.
// Temporary audio files live here (never synced to cloud).
// Linux/Mac: ~/.cache/chatterm
// Windows: C:\Users\username\AppData\Local\chatterm
func GetCacheDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		return filepath.Join(localAppData, "chatterm")
	}

	home := os.Getenv("HOME")
	return filepath.Join(home, ".cache", "chatterm")
}

// GetTempDir returns the directory for transient recording/playback files.
func GetTempDir() string {
	return filepath.Join(GetCacheDir(), "tmp")
}

// CreateTempDir creates the audio temp directory (0700 - user-only access).
func CreateTempDir() error {
	return os.MkdirAll(GetTempDir(), 0700)
}

// CleanupTempDir removes the audio temp directory and anything left in it
// (crash recovery: a previous run may have left recordings behind).
func CleanupTempDir() error {
	err := os.RemoveAll(GetTempDir())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetSettingsFilePath returns the path to settings.toml
func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir returns the user's home directory across platforms
func GetHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			home = "C:\\"
		}
		return home
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home := GetHomeDir()
		path = filepath.Join(home, path[2:])
	}

	path = os.ExpandEnv(path)

	return path
}

// FileExists checks whether a path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates a directory (0700) if it does not exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}
