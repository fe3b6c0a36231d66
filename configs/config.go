package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	DBSource string

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	ClerkWebhookSecret  string
	Currency            string
	PaymentTimeout      time.Duration

	// empty means in-process locks
	RedisAddr string

	CORSOrigins []string
	SeedDemo    bool
}

// LoadConfig reads .env when present, then the environment. A missing .env
// is fine; a malformed one is not.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("PAYMENT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("PAYMENT_TIMEOUT: %w", err)
	}
	seed, err := strconv.ParseBool(getEnv("SEED_DEMO", "false"))
	if err != nil {
		return nil, fmt.Errorf("SEED_DEMO: %w", err)
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8000"),
		DBSource:            getEnv("DB_SOURCE", "foodify.db"),
		JWTSecret:           getEnv("JWT_SECRET", "changeme"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ClerkWebhookSecret:  os.Getenv("CLERK_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(getEnv("CURRENCY", "usd")),
		PaymentTimeout:      timeout,
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		CORSOrigins:         splitList(os.Getenv("CORS_ORIGINS")),
		SeedDemo:            seed,
	}
	if cfg.Env == "production" && cfg.JWTSecret == "changeme" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
