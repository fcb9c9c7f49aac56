package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WorkspaceFileName marks a workspace configuration directory.
const WorkspaceFileName = "lectic.yaml"

// LookupEnv matches os.LookupEnv.
type LookupEnv func(string) (string, bool)

// SystemConfigDir returns the lectic configuration directory:
// $LECTIC_CONFIG, else $XDG_CONFIG_HOME/lectic, else ~/.config/lectic.
func SystemConfigDir(lookup LookupEnv) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if dir, ok := lookup("LECTIC_CONFIG"); ok && dir != "" {
		return dir
	}
	if dir, ok := lookup("XDG_CONFIG_HOME"); ok && dir != "" {
		return filepath.Join(dir, "lectic")
	}
	home, _ := lookup("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "lectic")
}

// SystemConfigPath returns the system lectic.yaml location, or "" when no
// configuration directory can be determined.
func SystemConfigPath(lookup LookupEnv) string {
	dir := SystemConfigDir(lookup)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, WorkspaceFileName)
}

// FindWorkspaceConfig walks up from startDir to locate lectic.yaml. A closed
// stop channel ends the walk early with ok == false; a nil channel never
// fires.
func FindWorkspaceConfig(startDir string, stop <-chan struct{}) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		select {
		case <-stop:
			return "", false, nil
		default:
		}
		candidate := filepath.Join(dir, WorkspaceFileName)
		if info, err := os.Stat(candidate); err == nil {
			if !info.IsDir() {
				return candidate, true, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
