package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// Config returns the value of an environment variable, loading .env on first use.
func Config(key string) string {
	loadEnv.Do(func() {
		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to load .env: %v", err)
		}
	})

	return os.Getenv(key)
}
