// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	Environment   string
	DatabaseURL   string
	RedisURL      string
	JWTSecret     string
	JWTExpiry     int
	RefreshExpiry int
	CORSOrigins   []string

	// AllowRegistration opens POST /api/auth/register to anonymous callers
	// after the first account exists.
	AllowRegistration bool
	// TrustedProxies lists the proxies whose X-Forwarded-For is believed.
	// Empty means the socket address is the client IP.
	TrustedProxies []string

	// Logging
	LogLevel string
	LogFile  string

	// Email configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPUseTLS   bool

	// AI provider (OpenAI compatible)
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIVisionModel string
	OpenAIImageModel  string

	// Issuer printed on quotes
	CompanyName    string
	CompanyAddress string

	// Scheduled jobs
	AutoStatus        bool
	MigrationsOnStart bool

	// Development seed
	SeedAdminPassword string

	// Team login throttling
	TeamLoginMaxAttempts int
	TeamLoginWindowMin   int
}

func Load() *Config {
	return &Config{
		Port:          getEnv("API_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpiry:     getEnvInt("JWT_EXPIRY", 24),
		RefreshExpiry: getEnvInt("REFRESH_EXPIRY", 7),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		AllowRegistration: getEnvBool("ALLOW_REGISTRATION", false),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES", nil),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "devis@planchais-construction.fr"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Planchais Construction"),
		SMTPUseTLS:   getEnvBool("SMTP_USE_TLS", false),

		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		OpenAIImageModel:  getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),

		CompanyName:    getEnv("COMPANY_NAME", "Planchais Construction"),
		CompanyAddress: getEnv("COMPANY_ADDRESS", "Votre adresse professionnelle"),

		AutoStatus:        getEnvBool("AUTO_STATUS", true),
		MigrationsOnStart: getEnvBool("MIGRATIONS_ON_START", true),

		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),

		TeamLoginMaxAttempts: getEnvInt("TEAM_LOGIN_MAX_ATTEMPTS", 10),
		TeamLoginWindowMin:   getEnvInt("TEAM_LOGIN_WINDOW_MINUTES", 15),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
