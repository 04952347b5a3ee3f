package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvLein     = "SLSCLJS_LEIN"
	EnvLogLevel = "SLSCLJS_LOG_LEVEL"
	EnvHistory  = "SLSCLJS_HISTORY"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from dir. Existing process variables
// are never overwritten, and missing files are skipped.
func loadEnvFiles(dir string) []string {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} with the environment value when NAME is set.
// Serverless variables such as ${self:service} or ${opt:stage} and unset
// names are left for the host to resolve.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name := string(envRef.FindSubmatch(m)[1])
		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}
		return m
	})
}
