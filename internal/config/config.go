// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// Config holds the server configuration.
type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	Brand         models.Account
	Domain        string
	JWTSecret     string
	JWTExpiry     time.Duration
	SignInMaxAge  time.Duration
	MQTTBroker    string
	MQTTTopic     string
	MQTTClientID  string
	RateLimit     int
	RateWindowSec int
	LogLevel      log.Level
	LogFormat     string
}

// ErrMissingBrand is returned when BRAND_ACCOUNT is not set.
var ErrMissingBrand = errors.New("BRAND_ACCOUNT is required")

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "service_ledger"),
		Domain:       getEnv("LEDGER_DOMAIN", signature.DefaultDomain),
		JWTSecret:    getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTTopic:    getEnv("MQTT_TOPIC", "service-ledger/events"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "service-ledger"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	brand := os.Getenv("BRAND_ACCOUNT")
	if brand == "" {
		return nil, ErrMissingBrand
	}
	a, err := models.ParseAccount(brand)
	if err != nil || a.IsZero() {
		return nil, fmt.Errorf("BRAND_ACCOUNT %q: %w", brand, models.ErrInvalidAccount)
	}
	cfg.Brand = a

	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SignInMaxAge, err = getDuration("SIGNIN_MAX_AGE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.RateWindowSec, err = getInt("RATE_LIMIT_WINDOW_SECONDS", 60); err != nil {
		return nil, err
	}

	cfg.LogLevel = log.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = log.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// ConfigureLogging applies the level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}
