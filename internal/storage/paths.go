package storage

import (
	"os"
	"path/filepath"
)

const appName = "wideboard"

// DatabaseDir returns the directory of the multiplier database, creating it
// if needed. Multipliers can always be searched for again, so they live in
// the user cache directory:
// - Linux: $XDG_CACHE_HOME/wideboard/magics or ~/.cache/wideboard/magics
// - macOS: ~/Library/Caches/wideboard/magics
// - Windows: %LocalAppData%/wideboard/magics
func DatabaseDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, appName, "magics")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
