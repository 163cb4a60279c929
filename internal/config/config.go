package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"crypto-price-tracker/internal/domain/model"
)

type Config struct {
	Server   ServerConfig
	PriceAPI PriceAPIConfig
	Cache    CacheConfig
	Tracker  TrackerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PriceAPIConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	PacingDelay time.Duration
}

type CacheConfig struct {
	TTL           time.Duration
	SweepSchedule string
}

type TrackerConfig struct {
	SettingsPath    string
	DefaultCurrency model.Currency
	DefaultAssets   []model.AssetID
}

// LoadConfig reads settings from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		PriceAPI: PriceAPIConfig{
			BaseURL:     getEnvString("PRICE_API_BASE_URL", "https://min-api.cryptocompare.com"),
			APIKey:      getEnvString("PRICE_API_KEY", ""),
			Timeout:     getEnvDuration("PRICE_API_TIMEOUT", 10*time.Second),
			MaxAttempts: getEnvInt("PRICE_API_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvDuration("PRICE_API_BASE_DELAY", 1*time.Second),
			PacingDelay: getEnvDuration("PRICE_API_PACING_DELAY", 500*time.Millisecond),
		},
		Cache: CacheConfig{
			TTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
			SweepSchedule: getEnvString("CACHE_SWEEP_SCHEDULE", "@every 10m"),
		},
		Tracker: TrackerConfig{
			SettingsPath:    getEnvString("TRACKER_SETTINGS_PATH", "data/settings.yaml"),
			DefaultCurrency: model.NormalizeCurrency(getEnvString("TRACKER_DEFAULT_CURRENCY", "USD")),
			DefaultAssets:   model.ParseAssetIDs(getEnvString("TRACKER_DEFAULT_ASSETS", "BTC")),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}
	if c.PriceAPI.BaseURL == "" {
		return errors.New("PRICE_API_BASE_URL must not be empty")
	}
	if c.PriceAPI.MaxAttempts < 1 {
		return fmt.Errorf("PRICE_API_MAX_ATTEMPTS must be at least 1, got %d", c.PriceAPI.MaxAttempts)
	}
	if c.PriceAPI.BaseDelay < 0 || c.PriceAPI.PacingDelay < 0 {
		return errors.New("price API delays must not be negative")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if !c.Tracker.DefaultCurrency.IsSupported() {
		return fmt.Errorf("unsupported TRACKER_DEFAULT_CURRENCY: %s", c.Tracker.DefaultCurrency)
	}
	if len(c.Tracker.DefaultAssets) == 0 {
		return errors.New("TRACKER_DEFAULT_ASSETS must name at least one asset")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %s\n", key, defaultValue)
		return defaultValue
	}

	return value
}
