package config

import (
	"os"
	"path/filepath"
)

const appName = "tuimath"

// XDGConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func XDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func XDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

func xdgDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultDBPath is where practice sessions are stored.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath is the TOML file read by every command.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
