// Package prefs persists the client's only durable state: the theme choice.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// themeKey is the fixed key the preference lives under in the settings file.
const themeKey = "theme"

// Store reads and writes the settings file. The file is a flat string map so
// the single current key does not paint future settings into a migration.
type Store struct {
	path string
}

// NewStore places the settings file in the user config directory.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, "real-time-map", "settings.json")}, nil
}

// NewStoreAt uses an explicit file path. Tests use this with a temp dir.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Theme returns the stored preference, or fallback when nothing valid is
// stored. A missing or corrupt settings file is treated as absence, never as
// an error the caller has to handle.
func (s *Store) Theme(fallback Theme) Theme {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fallback
	}
	var settings map[string]string
	if err := json.Unmarshal(data, &settings); err != nil {
		return fallback
	}
	switch Theme(settings[themeKey]) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	default:
		return fallback
	}
}

// SetTheme writes the preference, preserving any other stored settings.
func (s *Store) SetTheme(t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return errors.New("unknown theme: " + string(t))
	}

	settings := map[string]string{}
	if data, err := os.ReadFile(s.path); err == nil {
		_ = json.Unmarshal(data, &settings)
	}
	settings[themeKey] = string(t)

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// PlatformDefault guesses the color-scheme preference the platform reports.
// Terminals advertise their background through COLORFGBG ("fg;bg", bg 0-6 or
// 8 meaning dark); with no signal, dark wins.
func PlatformDefault() Theme {
	val := os.Getenv("COLORFGBG")
	parts := strings.Split(val, ";")
	if len(parts) >= 2 {
		switch strings.TrimSpace(parts[len(parts)-1]) {
		case "7", "15":
			return ThemeLight
		}
	}
	return ThemeDark
}
