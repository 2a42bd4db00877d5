// Package dotdir resolves the .askstream/ directory that holds the config
// file and the default answer archive.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the directory name looked up in the working directory and home.
const DirName = ".askstream"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target resolves and creates the .askstream/ directory, returning its
// absolute path. An override wins, then an existing ./.askstream, then
// ~/.askstream.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.locate(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating askstream directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

func (m *Manager) locate(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, DirName)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}
