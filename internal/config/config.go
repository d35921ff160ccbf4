package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Session backends selectable through SESSION_BACKEND.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendMySQL  = "mysql"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string
	APIBaseURL     string
	FGStoreURL     string
	InventoryURL   string
	SessionBackend string
	SessionTTL     time.Duration
	SessionSecret  string
	CookieSecure   bool
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	BackendTimeout time.Duration
	LoginRateLimit float64 // sign-in attempts per minute per client IP
	LogLevel       string
	SwaggerHost    string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8000/api"), "/"),
		FGStoreURL:     getEnv("FG_STORE_URL", "http://127.0.0.1:8001"),
		InventoryURL:   getEnv("INVENTORY_URL", "http://127.0.0.1:8002"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),
		SessionSecret:  getEnv("SESSION_SECRET", "change-me"),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/sphere?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 5),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

// Validate reports configuration that would make the portal misbehave at runtime.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	case SessionBackendMySQL:
		if _, err := mysql.ParseDSN(c.MySQLDSN); err != nil {
			return fmt.Errorf("invalid MYSQL_DSN: %w", err)
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// ProjectLaunchURLs maps known project ids to their configured application
// address.
func (c *Config) ProjectLaunchURLs() map[string]string {
	return map[string]string{
		"fg-store":  c.FGStoreURL,
		"inventory": c.InventoryURL,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
