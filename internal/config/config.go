package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Providers ProvidersConfig
	Email     EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	TrustedProxies     []string // CIDR ranges allowed to set X-Forwarded-For
	CleanupInterval    time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	SessionTokenExpiry time.Duration
	MaxFailedLogins    int
	LockoutDuration    time.Duration
	LoginRateWindow    time.Duration
	LoginRateMax       int
}

// ProvidersConfig configures the two upstream HTTP APIs: the movie metadata
// provider backing the catalog and the stock-video provider backing the
// watch pool.
type ProvidersConfig struct {
	MetadataBaseURL string
	MetadataAPIKey  string
	VideoBaseURL    string
	VideoAPIKey     string

	PoolMinSize         int
	PoolMaxSize         int
	PoolEvictionMargin  int
	PoolSearchPageSize  int
	PoolSearchDelay     time.Duration
	PoolRefreshInterval time.Duration
}

type EmailConfig struct {
	AWSRegion        string
	FromAddress      string
	ResetURLBase     string
	ResetTokenExpiry time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "lumiflix"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			Env:                env,
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", nil),
			CleanupInterval:    getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			SessionTokenExpiry: getEnvAsDuration("SESSION_TOKEN_EXPIRY", 2*time.Hour),
			MaxFailedLogins:    getEnvAsInt("MAX_FAILED_LOGINS", 5),
			LockoutDuration:    getEnvAsDuration("LOCKOUT_DURATION", 15*time.Minute),
			LoginRateWindow:    getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
			LoginRateMax:       getEnvAsInt("LOGIN_RATE_MAX", 10),
		},
		Providers: ProvidersConfig{
			MetadataBaseURL: getEnv("METADATA_BASE_URL", "https://api.themoviedb.org/3"),
			MetadataAPIKey:  getEnv("METADATA_API_KEY", ""),
			VideoBaseURL:    getEnv("VIDEO_BASE_URL", "https://api.pexels.com/videos"),
			VideoAPIKey:     getEnv("VIDEO_API_KEY", ""),

			PoolMinSize:         getEnvAsInt("VIDEO_POOL_MIN_SIZE", 50),
			PoolMaxSize:         getEnvAsInt("VIDEO_POOL_MAX_SIZE", 500),
			PoolEvictionMargin:  getEnvAsInt("VIDEO_POOL_EVICTION_MARGIN", 50),
			PoolSearchPageSize:  getEnvAsInt("VIDEO_POOL_SEARCH_PAGE_SIZE", 15),
			PoolSearchDelay:     getEnvAsDuration("VIDEO_POOL_SEARCH_DELAY", 250*time.Millisecond),
			PoolRefreshInterval: getEnvAsDuration("VIDEO_POOL_REFRESH_INTERVAL", 6*time.Hour),
		},
		Email: EmailConfig{
			AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
			FromAddress:      getEnv("EMAIL_FROM_ADDRESS", "no-reply@lumiflix.example"),
			ResetURLBase:     getEnv("PASSWORD_RESET_URL_BASE", "http://localhost:3000/reset-password"),
			ResetTokenExpiry: getEnvAsDuration("PASSWORD_RESET_TOKEN_EXPIRY", 1*time.Hour),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if len(jwtSecret) < minSecretLength(env) {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minSecretLength(env), env, len(jwtSecret))
	}

	if cfg.Providers.PoolMinSize <= 0 {
		return nil, fmt.Errorf("VIDEO_POOL_MIN_SIZE must be positive")
	}
	if cfg.Providers.PoolMaxSize <= cfg.Providers.PoolMinSize {
		return nil, fmt.Errorf("VIDEO_POOL_MAX_SIZE must exceed VIDEO_POOL_MIN_SIZE")
	}

	return cfg, nil
}

func minSecretLength(env string) int {
	if env == "production" {
		return 32
	}
	return 16
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
