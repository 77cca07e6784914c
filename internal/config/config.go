// Package config centralizes application configuration loading.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	RateLimiter RateLimiterConfig
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	Type  string
	Redis RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LimitDefinition is a limit type parsed from the environment, registered
// on the engine at startup.
type LimitDefinition struct {
	Name        string
	MaxRequests uint64
	Window      time.Duration
}

type RateLimiterConfig struct {
	// HTTPLimitType names the limit the HTTP middleware enforces.
	HTTPLimitType string
	Limits        []LimitDefinition
}

func Load() (Config, error) {
	_ = godotenv.Load()

	server := ServerConfig{Port: getEnv("SERVER_PORT", "8080")}

	storageType := getEnv("STORAGE_TYPE", "memory")

	redisConfig, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimiterConfig, err := buildRateLimiterConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: server,
		Storage: StorageConfig{
			Type:  storageType,
			Redis: redisConfig,
		},
		RateLimiter: rateLimiterConfig,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port, err := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}, nil
}

func buildRateLimiterConfig() (RateLimiterConfig, error) {
	limits, err := ParseLimits(getEnv("LIMITS", "http:100:60000"))
	if err != nil {
		return RateLimiterConfig{}, err
	}

	httpLimitType := getEnv("HTTP_LIMIT_TYPE", limits[0].Name)

	return RateLimiterConfig{
		HTTPLimitType: httpLimitType,
		Limits:        limits,
	}, nil
}

// ParseLimits parses a comma-separated list of limit definitions, each in
// the form NAME:MAX_REQUESTS:WINDOW_MILLIS.
func ParseLimits(raw string) ([]LimitDefinition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("LIMITS must define at least one limit type")
	}

	items := strings.Split(raw, ",")
	limits := make([]LimitDefinition, 0, len(items))

	for _, item := range items {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("limit definition must follow NAME:MAX_REQUESTS:WINDOW_MILLIS: %s", item)
		}

		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("limit definition has an empty name: %s", item)
		}
		maxRequests, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max requests for limit %s: %w", name, err)
		}
		windowMillis, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid window millis for limit %s: %w", name, err)
		}

		limits = append(limits, LimitDefinition{
			Name:        name,
			MaxRequests: maxRequests,
			Window:      time.Duration(windowMillis) * time.Millisecond,
		})
	}

	return limits, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
