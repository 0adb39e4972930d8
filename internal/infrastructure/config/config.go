package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// Config holds application configuration values.
type Config struct {
	AppEnv             string        `validate:"oneof=dev prod test"`
	Port               string        `validate:"required,numeric"`
	StoreDriver        string        `validate:"oneof=mongo memory"`
	MongoURI           string        `validate:"required_if=StoreDriver mongo"`
	MongoDBName        string        `validate:"required_if=StoreDriver mongo"`
	RedisURL           string
	JWTSecret          string        `validate:"required,min=16"`
	JWTIssuer          string
	RateLimitPerSecond float64       `validate:"gt=0"`
	CountsCacheTTL     time.Duration `validate:"gt=0"`
	LivePingInterval   time.Duration `validate:"gt=0"`
	ReactedListLimit   int           `validate:"gte=1,lte=1000"`
	CORSAllowedOrigins []string      `validate:"min=1"`
	MemorySeedFile     string
}

// NewConfig creates a new Config instance, loading values from environment variables.
func NewConfig() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "dev"),
		Port:               getEnv("PORT", "8080"),
		StoreDriver:        getEnv("STORE_DRIVER", "mongo"),
		MongoURI:           getEnv("MONGODB_URI", ""),
		MongoDBName:        getEnv("MONGODB_DB_NAME", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "promptshelf"),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		CountsCacheTTL:     time.Second * time.Duration(getEnvAsInt("COUNTS_CACHE_TTL_SECONDS", 300)),
		LivePingInterval:   time.Second * time.Duration(getEnvAsInt("LIVE_PING_INTERVAL_SECONDS", 30)),
		ReactedListLimit:   getEnvAsInt("REACTED_LIST_LIMIT", 100),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MemorySeedFile:     getEnv("MEMORY_SEED_FILE", ""),
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var _ usecasecontract.IConfigProvider = (*Config)(nil)

func (c *Config) GetAppEnv() string { return c.AppEnv }
func (c *Config) GetPort() string { return c.Port }
func (c *Config) GetStoreDriver() string { return c.StoreDriver }
func (c *Config) GetMongoURI() string { return c.MongoURI }
func (c *Config) GetMongoDBName() string { return c.MongoDBName }
func (c *Config) GetRedisURL() string { return c.RedisURL }
func (c *Config) GetJWTSecret() string { return c.JWTSecret }
func (c *Config) GetJWTIssuer() string { return c.JWTIssuer }
func (c *Config) GetRateLimitPerSecond() float64 { return c.RateLimitPerSecond }
func (c *Config) GetCountsCacheTTL() time.Duration { return c.CountsCacheTTL }
func (c *Config) GetLivePingInterval() time.Duration { return c.LivePingInterval }
func (c *Config) GetReactedListLimit() int { return c.ReactedListLimit }
func (c *Config) GetCORSAllowedOrigins() []string { return c.CORSAllowedOrigins }
func (c *Config) GetMemorySeedFile() string { return c.MemorySeedFile }

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(name string, fallback int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(name string, fallback float64) float64 {
	valueStr := getEnv(name, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

// Comma separated; blank entries are dropped.
func getEnvAsList(name string, fallback []string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
