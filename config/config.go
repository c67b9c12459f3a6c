// Package config locates canvas configuration files.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the canvas configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "canvas")
}

// InitFile returns the path of the default handler script, handlers.lua.
func InitFile() string {
	return filepath.Join(Dir(), "handlers.lua")
}

// ScriptFile picks the handler script to load: flagValue when set,
// otherwise InitFile if it exists. It returns "" when there is none.
func ScriptFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if _, err := os.Stat(InitFile()); err == nil {
		return InitFile()
	}
	return ""
}
