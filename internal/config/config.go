package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	TokenSecret string
	TokenTTL    time.Duration
	GinMode     string
	Port        string
}

func Load() *Config {
	return &Config{
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "tracker"),
		DBPassword:  getEnv("DB_PASSWORD", "tracker"),
		DBName:      getEnv("DB_NAME", "project_tracker"),
		TokenSecret: getEnv("TOKEN_SECRET", "default-secret-key-change-me"),
		TokenTTL:    time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24*7)) * time.Hour,
		GinMode:     getEnv("GIN_MODE", "debug"),
		Port:        getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
