package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads the first .env style file that exists, returning its name.
// Existing process environment variables are never overwritten.
func loadDotEnv() string {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err == nil {
			return name
		}
	}
	return ""
}
