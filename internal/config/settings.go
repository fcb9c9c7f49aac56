package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// SettingsFileName is the language server settings file inside the lectic
// configuration directory.
const SettingsFileName = "lsp.toml"

// Settings tune the language server.
type Settings struct {
	DebounceMS     int    `toml:"debounce_ms" json:"debounceMs"`
	MaxDiagnostics int    `toml:"max_diagnostics" json:"maxDiagnostics"`
	FetchModels    bool   `toml:"fetch_models" json:"fetchModels"`
	PreviewBytes   int    `toml:"preview_bytes" json:"previewBytes"`
	GlobLimit      int    `toml:"glob_limit" json:"globLimit"`
	SystemConfig   string `toml:"system_config" json:"systemConfig"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		DebounceMS:     250,
		MaxDiagnostics: 200,
		FetchModels:    true,
		PreviewBytes:   2048,
		GlobLimit:      20,
	}
}

// Debounce returns the debounce delay.
func (s Settings) Debounce() time.Duration {
	if s.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// LoadSettings decodes path over the defaults. A missing file yields the
// defaults and no error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if settings.MaxDiagnostics < 0 {
		settings.MaxDiagnostics = 0
	}
	return settings, nil
}

// SettingsPath returns lsp.toml inside the configuration directory.
func SettingsPath(lookup LookupEnv) string {
	dir := SystemConfigDir(lookup)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, SettingsFileName)
}
