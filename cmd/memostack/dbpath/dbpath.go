// Package dbpath resolves the SQLite database location for memostack
// commands.
package dbpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/memostack/pkg/dotdir"
)

const dbFile = "memostack.sqlite"

// ResolveSQLitePath picks the SQLite database path for this run.
// Order of precedence:
//  1. Provided override (--sqlite flag or config file)
//  2. MEMOSTACK_SQLITE / MEMOSTACK_DB environment variables
//  3. First existing candidate (XDG data dir, ~/.memostack/, cwd, ./.memostack/)
//  4. A fresh memostack.sqlite inside the resolved .memostack/ directory
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("MEMOSTACK_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("MEMOSTACK_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	// No database yet. First run creates one in the dot directory.
	target, err := dotdir.NewManager().Target("")
	if err != nil {
		return "", fmt.Errorf("resolving memostack directory: %w", err)
	}

	return filepath.Join(target, dbFile), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		dbFile,
		filepath.Join(".memostack", dbFile),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".memostack", dbFile),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "memostack", dbFile),
		}, candidates...)
	}

	return candidates
}
