package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port            string
	DatabasePath    string
	LogLevel        string
	JWTSecret       string
	CountryDataPath string

	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	MaxRequestBytes int64
	AllowedOrigin   string

	// Global rate limit: one token per interval, burst size.
	RateLimitInterval time.Duration
	RateLimitBurst    int
}

var Cfg *AppConfig

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, relying on OS environment variables and defaults.")
	}

	jwtSecret := getEnv("JWT_SECRET", "an-insecure-development-only-jwt-secret-of-32-bytes!")
	if jwtSecret == "an-insecure-development-only-jwt-secret-of-32-bytes!" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET for production.")
	}

	maxRequestBytesStr := getEnv("MAX_REQUEST_BYTES", "10485760")
	maxRequestBytes, err := strconv.ParseInt(maxRequestBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: invalid MAX_REQUEST_BYTES %q, using default 10MB. Error: %v", maxRequestBytesStr, err)
		maxRequestBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:            getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "./capgains.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		JWTSecret:       jwtSecret,
		CountryDataPath: getEnv("COUNTRY_DATA_PATH", "data/country.json"),

		AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),

		MaxRequestBytes: maxRequestBytes,
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		RateLimitInterval: getEnvAsDuration("RATE_LIMIT_INTERVAL", 100*time.Millisecond),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 30),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s (%q), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s (%q), using default: %s", key, valueStr, fallback)
	return fallback
}
