// Package config loads sharebook settings from flags, the environment, .env files
// and config.yaml.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where the ledger lives unless database.path says otherwise.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/sharebook/sharebook.db")
}

// DefaultConfigDir is searched for config.yaml.
func DefaultConfigDir() string {
	return ExpandPath("~/.config/sharebook")
}
