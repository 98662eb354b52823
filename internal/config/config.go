package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL         string
	HTTPTimeout        time.Duration
	StateDir           string
	StateEncryptionKey string
	TokenStaleMargin   time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	LogLevel           string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:         getEnv("SHOP_API_BASE_URL", "http://127.0.0.1:8080/api/v1"),
		HTTPTimeout:        getDuration("SHOP_HTTP_TIMEOUT", 30*time.Second),
		StateDir:           getEnv("SHOP_STATE_DIR", defaultStateDir()),
		StateEncryptionKey: strings.TrimSpace(os.Getenv("SHOP_STATE_ENCRYPTION_KEY")),
		TokenStaleMargin:   getDuration("SHOP_TOKEN_STALE_MARGIN", 60*time.Second),
		RateLimitRPS:       getFloat("SHOP_RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getInt("SHOP_RATE_LIMIT_BURST", 20),
		LogLevel:           getEnv("SHOP_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("SHOP_API_BASE_URL cannot be empty")
	}

	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("SHOP_API_BASE_URL must be an absolute URL")
	}

	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("SHOP_STATE_DIR cannot be empty")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("SHOP_HTTP_TIMEOUT must be positive")
	}

	if c.TokenStaleMargin < 0 {
		return fmt.Errorf("SHOP_TOKEN_STALE_MARGIN cannot be negative")
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("SHOP_RATE_LIMIT_RPS must be positive")
	}

	return nil
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/shopctl"
	}

	return "./.shopctl"
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}
