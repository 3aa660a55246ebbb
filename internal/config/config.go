package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecretKey        string        `mapstructure:"JWT_SECRET_KEY"`
	TokenTTL            time.Duration `mapstructure:"TOKEN_TTL"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	AdminEmail          string        `mapstructure:"ADMIN_EMAIL"`
	AdminPassword       string        `mapstructure:"ADMIN_PASSWORD"`
	AutoMigrate         bool          `mapstructure:"AUTO_MIGRATE"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
	LoginRateLimitRPS   float64       `mapstructure:"LOGIN_RATE_LIMIT_RPS"`
	LoginRateLimitBurst int           `mapstructure:"LOGIN_RATE_LIMIT_BURST"`
}

// minSecretLength is the shortest JWT secret accepted outside development.
const minSecretLength = 16

var keys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"JWT_SECRET_KEY",
	"TOKEN_TTL",
	"CORS_ORIGINS",
	"ADMIN_EMAIL",
	"ADMIN_PASSWORD",
	"AUTO_MIGRATE",
	"REQUEST_TIMEOUT",
	"BODY_LIMIT",
	"LOGIN_RATE_LIMIT_RPS",
	"LOGIN_RATE_LIMIT_BURST",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("ADMIN_EMAIL", "admin@labassist.com")
	v.SetDefault("ADMIN_PASSWORD", "labassist@admin123")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 1)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// A comma-separated env value arrives as a single element.
	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = splitList(origins)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: running in DEVELOPMENT mode (ENV=development); console logging enabled.")
	}

	return cfg, nil
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

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// the JWT secret must be at least minSecretLength bytes and the bootstrap
// admin password must not be the shipped default.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if !c.IsDev() && len(c.JWTSecretKey) < minSecretLength {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes outside development", minSecretLength)
	}
	if c.IsProduction() && c.AdminPassword == "labassist@admin123" {
		return fmt.Errorf("ADMIN_PASSWORD must be changed from the default in production")
	}
	if c.LoginRateLimitRPS <= 0 || c.LoginRateLimitBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_RPS and LOGIN_RATE_LIMIT_BURST must be positive")
	}
	return nil
}
