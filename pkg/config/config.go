package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string
	RedisURL    string

	// Master database (directory of companies and users)
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	MasterDBName string
	DBSSLMode    string

	// Token signing
	JWTSecret          string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// Master operator identity (not stored in the directory)
	MasterUsername string
	MasterPassword string
	MasterEmail    string

	// Refresh cookie
	RefreshCookieName string
	CookieSecure      bool
	CookieSameSite    string

	// Static uploads (logos, signatures)
	StaticRoot string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	accessMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
	}

	refreshDays, err := strconv.Atoi(getEnv("REFRESH_TOKEN_EXPIRE_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRE_DAYS: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	refreshSecret := os.Getenv("REFRESH_SECRET")
	if jwtSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET are required")
	}
	if jwtSecret == refreshSecret {
		return nil, fmt.Errorf("JWT_SECRET and REFRESH_SECRET must differ")
	}

	masterUser := os.Getenv("MASTER_USERNAME")
	masterPass := os.Getenv("MASTER_PASSWORD")
	if masterUser == "" || masterPass == "" {
		return nil, fmt.Errorf("MASTER_USERNAME and MASTER_PASSWORD are required")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       dbPort,
		DBUser:       getEnv("DB_USER", masterUser),
		DBPassword:   getEnv("DB_PASSWORD", masterPass),
		MasterDBName: getEnv("MASTER_DB_NAME", "invoicedb"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),

		JWTSecret:          jwtSecret,
		RefreshSecret:      refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshDays) * 24 * time.Hour,

		MasterUsername: masterUser,
		MasterPassword: masterPass,
		MasterEmail:    getEnv("MASTER_EMAIL", "admin@joslasync.com"),

		RefreshCookieName: getEnv("REFRESH_COOKIE_NAME", "refresh_token"),
		CookieSecure:      strings.EqualFold(getEnv("COOKIE_SECURE", "false"), "true"),
		CookieSameSite:    getEnv("COOKIE_SAMESITE", "lax"),

		StaticRoot: getEnv("STATIC_ROOT", "static"),

		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}, nil
}

// IsDevelopment reports whether raw error detail may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
