package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // empty = in-memory page store (dev/test only)
	TablePrefix string
	JWKSURL     string // empty = admin auth disabled (dev/test only)
	CORSOrigins string
	// Page tree configuration
	PageTypesFile string // optional YAML overriding the embedded page type table
	TreeMaxDepth  int
	// Log file sink
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		TablePrefix:   getTablePrefix(env),
		JWKSURL:       getEnv("JWKS_URL", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		PageTypesFile: getEnv("PAGETYPES_FILE", ""),
		TreeMaxDepth:  getEnvInt("TREE_MAX_DEPTH", DefaultTreeMaxDepth),
		LogDir:        getEnv("LOG_DIR", ""),
		LogMaxFiles:   getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IsProduction reports whether the service runs in the prod environment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer env var, falling back to the default on absence or garbage
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
