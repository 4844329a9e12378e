package config

import (
	"fmt"
	"os"
	"strconv"
)

// Storage backends
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Storage StorageConfig
	Redis   RedisConfig
	Game    GameConfig
}

// StorageConfig selects where maps, parties and characters live
type StorageConfig struct {
	// Backend is "redis" or "memory"
	Backend string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GameConfig holds table-rule knobs
type GameConfig struct {
	// HenchmanShare is the XP weight of a henchman relative to a full
	// member
	HenchmanShare float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Backend: getEnvOrDefault("STORAGE_BACKEND", StorageRedis),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Game: GameConfig{
			HenchmanShare: getEnvAsFloatOrDefault("HENCHMAN_SHARE", 0.5),
		},
	}

	if cfg.Storage.Backend != StorageRedis && cfg.Storage.Backend != StorageMemory {
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageRedis, StorageMemory, cfg.Storage.Backend)
	}
	if cfg.Game.HenchmanShare < 0 || cfg.Game.HenchmanShare > 1 {
		return nil, fmt.Errorf("HENCHMAN_SHARE must be between 0 and 1, got %v", cfg.Game.HenchmanShare)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
