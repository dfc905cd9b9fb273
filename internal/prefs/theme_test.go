package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marlon200530/real-time-map-client/internal/prefs"
)

func tempStore(t *testing.T) *prefs.Store {
	t.Helper()
	return prefs.NewStoreAt(filepath.Join(t.TempDir(), "settings.json"))
}

func TestThemeRoundTrip(t *testing.T) {
	s := tempStore(t)

	require.NoError(t, s.SetTheme(prefs.ThemeDark))
	assert.Equal(t, prefs.ThemeDark, s.Theme(prefs.ThemeLight))

	require.NoError(t, s.SetTheme(prefs.ThemeLight))
	assert.Equal(t, prefs.ThemeLight, s.Theme(prefs.ThemeDark))
}

func TestThemeAbsenceUsesFallback(t *testing.T) {
	s := tempStore(t)
	assert.Equal(t, prefs.ThemeDark, s.Theme(prefs.ThemeDark))
	assert.Equal(t, prefs.ThemeLight, s.Theme(prefs.ThemeLight))
}

func TestThemeCorruptFileUsesFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := prefs.NewStoreAt(path)
	assert.Equal(t, prefs.ThemeDark, s.Theme(prefs.ThemeDark))
}

func TestSetThemeRejectsUnknownValue(t *testing.T) {
	s := tempStore(t)
	assert.Error(t, s.SetTheme(prefs.Theme("solarized")))
}

func TestSetThemePreservesOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"future":"value"}`), 0o644))

	s := prefs.NewStoreAt(path)
	require.NoError(t, s.SetTheme(prefs.ThemeDark))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"future"`)
	assert.Contains(t, string(data), `"theme"`)
}

func TestPlatformDefault(t *testing.T) {
	tests := []struct {
		name      string
		colorfgbg string
		want      prefs.Theme
	}{
		{"light background", "0;15", prefs.ThemeLight},
		{"dark background", "15;0", prefs.ThemeDark},
		{"xterm triple with light bg", "0;default;7", prefs.ThemeLight},
		{"no signal defaults dark", "", prefs.ThemeDark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COLORFGBG", tt.colorfgbg)
			assert.Equal(t, tt.want, prefs.PlatformDefault())
		})
	}
}
