package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	SessionFile string
	HTTPTimeout time.Duration
	Debug       bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		APIBaseURL:  getEnv("KANBAN_API_URL", "http://localhost:8000"),
		SessionFile: getEnv("KANBAN_SESSION_FILE", ""),
		HTTPTimeout: time.Duration(getEnvInt("KANBAN_HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		Debug:       getEnvBool("KANBAN_DEBUG", false),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultVal
	}
	return parsed
}
