package envconfig

import (
	"os"

	"github.com/joho/godotenv"

	"slicecraft/pkg/logger"
)

// LoadEnvFile loads environment variables from the given file without
// overriding variables already set in the process environment.
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}

// GetEnv returns the environment variable value or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetLogLevel reads LOG_LEVEL, defaulting to info.
func GetLogLevel() logger.LogLevel {
	switch GetEnv("LOG_LEVEL", "info") {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
