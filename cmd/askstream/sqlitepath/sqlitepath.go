// Package sqlitepath resolves the location of the SQLite answer archive.
package sqlitepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/askstream/pkg/dotdir"
)

// DefaultFileName is the archive file created inside the .askstream/ directory.
const DefaultFileName = "answers.db"

// ErrNotFound is returned by ResolveExisting when no archive exists yet.
var ErrNotFound = errors.New("could not find askstream answer archive; run \"askstream ask\" first or pass --sqlite")

// ResolveSQLitePath returns the archive path to write to: the override when
// set, otherwise answers.db inside the resolved .askstream/ directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving archive dir: %w", err)
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// ResolveExisting is ResolveSQLitePath for readers: the resolved file must
// already exist.
func ResolveExisting(override, configDir string) (string, error) {
	path, err := ResolveSQLitePath(override, configDir)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w (looked for %s)", ErrNotFound, path)
		}
		return "", fmt.Errorf("checking archive: %w", err)
	}
	return path, nil
}
