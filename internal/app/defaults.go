package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths cv uses before a config file says otherwise.
type Defaults struct {
	ConfigPath string // CV_CONFIG_PATH, or ~/.config/cv.toml
	BaseDir    string // CV_HOME, or ~/.local/share/cv
	LogDir     string
}

// ResolveDefaults reads the environment and falls back to paths under the
// user's home directory.
func ResolveDefaults() (Defaults, error) {
	var d Defaults
	var err error

	if d.ConfigPath, err = envOrHome("CV_CONFIG_PATH", ".config", "cv.toml"); err != nil {
		return Defaults{}, err
	}
	if d.BaseDir, err = envOrHome("CV_HOME", ".local", "share", "cv"); err != nil {
		return Defaults{}, err
	}
	d.LogDir = filepath.Join(d.BaseDir, "log")
	return d, nil
}

func envOrHome(env string, rel ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving %s: no home directory: %w", env, err)
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}
