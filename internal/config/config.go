package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	// Catalog source; an empty SheetID surfaces as a configuration error on fetch
	SheetID           string        `yaml:"sheet_id"`
	SheetBaseURL      string        `yaml:"sheet_base_url"`
	CatalogCacheTTL   time.Duration `yaml:"catalog_cache_ttl"`
	CatalogServeStale bool          `yaml:"catalog_serve_stale"`
	HTTPClientTimeout time.Duration `yaml:"http_client_timeout"` // bounds the detached catalog fetch; 0 = no limit

	WhatsAppNumber string `yaml:"whatsapp_number"`
	CurrencySymbol string `yaml:"currency_symbol"`

	CartBackend string        `yaml:"cart_backend"` // memory | redis
	RedisURL    string        `yaml:"redis_url"`    // required when CART_BACKEND=redis
	CartTTL     time.Duration `yaml:"cart_ttl"`
}

// Load reads .env (if any), then the environment, then the optional YAML
// file named by CONFIG_FILE. Values in the file override the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Env:               getenv("ENV", "dev"),
		Port:              getenv("PORT", "8080"),
		SheetID:           getenv("SHEET_ID", ""),
		SheetBaseURL:      getenv("SHEET_BASE_URL", "https://opensheet.elk.sh"),
		CatalogCacheTTL:   getduration("CATALOG_CACHE_TTL", 10*time.Minute),
		CatalogServeStale: getbool("CATALOG_SERVE_STALE", false),
		HTTPClientTimeout: getduration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		WhatsAppNumber:    getenv("WHATSAPP_NUMBER", "9932006049"),
		CurrencySymbol:    getenv("CURRENCY_SYMBOL", "₹"),
		CartBackend:       getenv("CART_BACKEND", "memory"),
		RedisURL:          getenv("REDIS_URL", ""),
		CartTTL:           getduration("CART_TTL", 24*time.Hour),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks settings that make startup impossible. A missing sheet id
// is not one of them: the catalog reports it per request.
func (c Config) Validate() error {
	switch strings.ToLower(c.CartBackend) {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when CART_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CART_BACKEND %q (use memory or redis)", c.CartBackend)
	}
	return nil
}

func getenv(key string, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getbool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getenv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
