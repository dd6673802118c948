package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env (or the file named by ENV_FILE) into the process environment.
// Variables already set win; a missing file is not an error.
func LoadEnv() {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
		slog.Warn("load env file", "file", file, "err", err)
	}
}
