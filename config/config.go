package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Environment   string
	DBUrl         string
	RunMigrations bool
	SecretKey     string
	FrontendURL   string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration (sessions, channel layer, rate limiting)
	RedisURL      string
	RedisPassword string
	// Session / cookies
	SessionTTL         time.Duration
	CookieSecure       bool
	CSRFEnabled        bool
	CORSAllowedOrigins []string
	// Object storage for freelance media
	StorageProvider  string
	StorageEndpoint  string
	StorageBucket    string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StoragePublicURL string

	// ClamAVAddress is a clamd TCP address or unix socket; empty disables upload scanning
	ClamAVAddress string
	ClamAVTimeout time.Duration
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; in containers the environment is already populated
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("APP_ENV", "development"),
		DBUrl:         getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		SecretKey:     getEnv("SECRET_KEY", ""),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", getEnv("SMTP_USERNAME", "")),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Sessions
		SessionTTL:         getEnvDuration("SESSION_TTL", 14*24*time.Hour),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		CSRFEnabled:        getEnvBool("CSRF_ENABLED", false),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		// Object storage
		StorageProvider:  getEnv("S3_PROVIDER", "aws"),
		StorageEndpoint:  getEnv("S3_ENDPOINT", ""),
		StorageBucket:    getEnv("S3_BUCKET", ""),
		StorageRegion:    getEnv("S3_REGION", "us-east-1"),
		StorageAccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		StoragePublicURL: strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),

		ClamAVAddress: getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout: getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),

		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.SecretKey == "" {
		log.Println("WARNING: SECRET_KEY is missing. Using an insecure development key.")
		cfg.SecretKey = "insecure-development-key"
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Sessions and notifications will be process-local.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
