package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret is only accepted when APP_ENV is local or test.
const DevJWTSecret = "dev-only-marketplace-signing-secret-change-me"

type Config struct {
	AppEnv             string        `mapstructure:"APP_ENV"`
	Port               string        `mapstructure:"PORT"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	TokenTTL           time.Duration `mapstructure:"TOKEN_TTL"`
	CacheTTL           time.Duration `mapstructure:"CACHE_TTL"`
	APIPrefix          string        `mapstructure:"API_PREFIX"`
	PublicBaseURL      string        `mapstructure:"PUBLIC_BASE_URL"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
}

func LoadConfig() (config Config, err error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "5000")
	v.SetDefault("DATABASE_URL", "sqlite://marketplace.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	if config.JWTSecret == "" {
		if !config.IsDevelopment() {
			return config, errors.New("JWT_SECRET must be set when APP_ENV is " + config.AppEnv)
		}
		log.Printf("JWT_SECRET not set, using development secret")
		config.JWTSecret = DevJWTSecret
	}

	config.APIPrefix = strings.TrimRight(config.APIPrefix, "/")
	return
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "local" || c.AppEnv == "test"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
