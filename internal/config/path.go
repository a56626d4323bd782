// Package config loads application settings: the viper-backed matching
// options and filesystem path handling for configured locations.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a configured file path: a leading ~ becomes the user's
// home directory and $VAR references are expanded from the environment. An
// unresolvable home directory leaves the ~ in place.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
