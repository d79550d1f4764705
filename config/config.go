package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the client.
type Config struct {
	RemoteBaseURL  string
	ListenAddr     string
	DBPath         string
	MigrationsPath string
	SealKeyPath    string
	CORSOrigin     string

	FeedPostLimit   int
	FeedUserLimit   int
	SearchPostLimit int
}

// Load reads configuration from the environment, with an optional .env
// file, falling back to defaults suitable for local use.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and defaults")
	}

	cfg := &Config{
		RemoteBaseURL:   getEnv("SOCIAL_REMOTE_URL", "https://dummyjson.com"),
		ListenAddr:      ":" + getEnv("SOCIAL_PORT", "8080"),
		DBPath:          getEnv("SOCIAL_DB_PATH", "./social_client.db"),
		MigrationsPath:  getEnv("SOCIAL_MIGRATIONS_PATH", "pkg/db/migrations/sqlite"),
		SealKeyPath:     getEnv("SOCIAL_SEAL_KEY_PATH", "./social_client.key"),
		CORSOrigin:      getEnv("SOCIAL_CORS_ORIGIN", "http://localhost:3000"),
		FeedPostLimit:   getEnvInt("SOCIAL_FEED_POST_LIMIT", 50),
		FeedUserLimit:   getEnvInt("SOCIAL_FEED_USER_LIMIT", 100),
		SearchPostLimit: getEnvInt("SOCIAL_SEARCH_POST_LIMIT", 150),
	}

	log.Println("Configuration loaded successfully.")
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: Invalid value for %s, using default %d. Error: %v", key, fallback, err)
		return fallback
	}
	return value
}
