package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Notifier backends accepted by NOTIFIER.
const (
	NotifierLog  = "log"
	NotifierSMTP = "smtp"
	NotifierSNS  = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	AppName  string
	LogLevel string

	CodeTTL           time.Duration
	DeliveryTimeout   time.Duration
	SweepInterval     time.Duration
	VerifyLinkBaseURL string // empty disables the link in outgoing messages

	Notifier      string
	SenderAddress string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	SNSTopicARN    string

	JWTPublicKeyPath  string
	RateLimitRPS      float64
	RateLimitBurst    int
	TrustProxyHeaders bool     // take the client IP from X-Forwarded-For / X-Real-IP
	AllowedOrigins    []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		AppName:  getEnv("APP_NAME", "Ventixe"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CodeTTL:           getEnvDuration("CODE_TTL", 5*time.Minute),
		DeliveryTimeout:   getEnvDuration("DELIVERY_TIMEOUT", 10*time.Second),
		SweepInterval:     getEnvDuration("SWEEP_INTERVAL", time.Minute),
		VerifyLinkBaseURL: getEnv("VERIFY_LINK_BASE_URL", ""),

		Notifier:      strings.ToLower(getEnv("NOTIFIER", NotifierLog)),
		SenderAddress: getEnv("SENDER_ADDRESS", "noreply@example.com"),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),

		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate reports the first setting that would keep the service from running.
func (c *Config) Validate() error {
	if c.CodeTTL < time.Second {
		return errors.New("CODE_TTL must be at least 1s")
	}
	if c.DeliveryTimeout < 0 {
		return errors.New("DELIVERY_TIMEOUT must not be negative")
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierSMTP:
		if c.SMTPHost == "" {
			return errors.New("SMTP_HOST is required for the smtp notifier")
		}
		if c.SenderAddress == "" {
			return errors.New("SENDER_ADDRESS is required for the smtp notifier")
		}
	case NotifierSNS:
		if c.SNSTopicARN == "" {
			return errors.New("SNS_TOPIC_ARN is required for the sns notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("5m", "90s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
