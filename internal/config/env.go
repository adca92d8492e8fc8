package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env and .env.local from the project root. Variables that
// are already set in the process environment win.
func loadEnvFiles(root string) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(root, name)
		if err := godotenv.Load(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Failed to load env file", "path", path, "error", err)
			}
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}
