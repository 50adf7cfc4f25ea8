package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string        `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	EncryptionKey                    string        `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded, 32 bytes once decoded
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	GoogleMapsAPIKey                 string        `mapstructure:"GOOGLE_MAPS_API_KEY"`
	RedisAddr                        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int           `mapstructure:"REDIS_DB"`
	CacheTTL                         time.Duration `mapstructure:"CACHE_TTL"`
	RabbitMQURL                      string        `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue                    string        `mapstructure:"RABBITMQ_QUEUE"`
	SMTPHost                         string        `mapstructure:"SMTP_HOST"`
	SMTPPort                         int           `mapstructure:"SMTP_PORT"`
	SMTPUser                         string        `mapstructure:"SMTP_USER"`
	SMTPPass                         string        `mapstructure:"SMTP_PASS"`
	MailSender                       string        `mapstructure:"MAIL_SENDER"`
	PaymentAmount                    float64       `mapstructure:"PAYMENT_AMOUNT"`
	PaymentRatePerMinute             int           `mapstructure:"PAYMENT_RATE_PER_MINUTE"`
}

var keys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_STORAGE_BUCKET",
	"ENCRYPTION_KEY",
	"CLIENT_URL",
	"GOOGLE_MAPS_API_KEY",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"CACHE_TTL",
	"RABBITMQ_URL",
	"RABBITMQ_QUEUE",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"MAIL_SENDER",
	"PAYMENT_AMOUNT",
	"PAYMENT_RATE_PER_MINUTE",
}

// LoadConfig loads configuration from environment variables using Viper. PATH_CONFIG may
// point at a YAML file with the same keys.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_QUEUE", "payments.verified")
	v.SetDefault("SMTP_HOST", "smtp.mailtrap.io")
	v.SetDefault("SMTP_PORT", 2525)
	v.SetDefault("MAIL_SENDER", "no-reply@rentalhub.local")
	v.SetDefault("PAYMENT_AMOUNT", 5.00)
	v.SetDefault("PAYMENT_RATE_PER_MINUTE", 5)

	// An optional YAML file provides base values; environment variables win over it.
	if path := os.Getenv("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required settings are present and well formed.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
		return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if c.FirebaseStorageBucket == "" {
		return errors.New("FIREBASE_STORAGE_BUCKET is required")
	}
	if c.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required")
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return fmt.Errorf("ENCRYPTION_KEY must be base64: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.PaymentAmount <= 0 {
		return errors.New("PAYMENT_AMOUNT must be positive")
	}
	if c.PaymentRatePerMinute <= 0 {
		return errors.New("PAYMENT_RATE_PER_MINUTE must be positive")
	}
	return nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
