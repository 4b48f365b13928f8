package config

import (
	"errors"
	"log"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Port  string `env:"PORT,default=8080"`
	DBUrl string `env:"DB_URL"`

	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,default=168h"`
	CookieName   string        `env:"COOKIE_NAME,default=session"`
	CookieSecure bool          `env:"COOKIE_SECURE,default=false"`
	BcryptCost   int           `env:"BCRYPT_COST,default=10"`

	// Semicolon separated, e.g. "https://shop.example.com;http://localhost:5173".
	CORSOrigins []string `env:"CORS_ORIGINS,default=http://localhost:5173"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=console"`

	RateLimit float64 `env:"RATE_LIMIT,default=10"`
	RateBurst int     `env:"RATE_BURST,default=20"`

	OrderPrefix string `env:"ORDER_PREFIX,default=ORD"`
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
		log.Println("JWT_SECRET not set, using default key")
	}

	return cfg
}

// UsesDefaultSecret reports whether tokens are signed with the built-in key.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
