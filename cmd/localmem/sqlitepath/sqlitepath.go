// Package sqlitepath resolves the SQLite database location for localmem
// commands.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const dbFileName = "memory.db"

// ResolveSQLitePath picks the database path. Precedence: explicit override
// (flag or config), LOCALMEM_SQLITE / LOCALMEM_DB environment variables,
// then an existing candidate location, and finally the default
// ~/.localmem/memory.db (created on first open).
func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("LOCALMEM_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("LOCALMEM_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	dir := filepath.Join(home, ".localmem")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating localmem dir: %w", err)
	}
	return filepath.Join(dir, dbFileName), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		dbFileName,
		filepath.Join(".localmem", dbFileName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".localmem", dbFileName),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "localmem", dbFileName),
		}, candidates...)
	}

	return candidates
}
