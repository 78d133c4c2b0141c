package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Backend REST API (the authoritative data store)
	BackendURL     string        `env:"BACKEND_API_URL" envDefault:"https://gloam-backend.vercel.app/api"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`

	// Admin credentials and session tokens
	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH,required"`
	JWTSecret         string        `env:"JWT_SECRET,required"`
	SessionExpiry     time.Duration `env:"SESSION_EXPIRY" envDefault:"12h"`

	// Redis (draft store)
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DraftTTL  time.Duration `env:"DRAFT_TTL" envDefault:"2h"`

	// Login rate limiting (per client IP)
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateBurst int `env:"LOGIN_RATE_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Catalog enumerations. The authoritative lists differ between historical
	// admin form revisions, so they are configuration rather than code.
	Categories []string `env:"CATALOG_CATEGORIES" envDefault:"Shirt,Pants,Hoodies,Jacket,T-shirt,Accessories" envSeparator:","`
	Sizes      []string `env:"CATALOG_SIZES" envDefault:"XS,S,M,L,XL,XXL" envSeparator:","`
	Colors     []string `env:"CATALOG_COLORS" envDefault:"Black,White,Gray,Navy,Red,Blue,Green,Brown,Beige" envSeparator:","`

	// Maximum accepted size for a single uploaded image.
	MaxImageBytes int64 `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if _, err := url.ParseRequestURI(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("invalid BACKEND_API_URL: %w", err)
	}
	if cfg.BackendTimeout <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("CATALOG_CATEGORIES must not be empty")
	}
	return cfg, nil
}
