package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// reCAPTCHA verification. An empty secret key disables verification
	// entirely (development bypass) - a deployment-time decision.
	RecaptchaSecretKey string
	RecaptchaMinScore  float64

	// Email dispatch
	EmailService  string // "sendgrid", "resend", "ses" or "" (log only)
	EmailAPIKey   string
	EmailFrom     string
	EmailFromName string

	// Destination mailboxes. Branch-specific addresses fall back to
	// ContactEmail when unset.
	ContactEmail            string
	ContactEmailRuimsig     string
	ContactEmailWeltevreden string

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Redis-backed rate limiting (optional; empty addr keeps the in-memory store)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Minimum seconds a human plausibly spends on the form before submitting
	MinFormSeconds float64

	AWSRegion string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RecaptchaSecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaMinScore:  getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0.5),

		EmailService:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_SERVICE", ""))),
		EmailAPIKey:   getEnv("EMAIL_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@smilepointdental.co.za"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "SmilePoint Dental"),

		ContactEmail:            getEnv("CONTACT_EMAIL", ""),
		ContactEmailRuimsig:     getEnv("CONTACT_EMAIL_RUIMSIG", ""),
		ContactEmailWeltevreden: getEnv("CONTACT_EMAIL_WELTEVREDEN", ""),

		AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGIN", "*")),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		MinFormSeconds: getEnvAsFloat("MIN_FORM_SECONDS", 5),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
