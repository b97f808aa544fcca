package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the account service.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	BaseURL string

	BcryptCost int

	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	RecoveryTokenTTL     time.Duration

	MailerFrom         string
	MailerSESRegion    string
	MailerSESAccessKey string
	MailerSESSecretKey string

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Mailer struct {
		From         string `yaml:"from"`
		SESRegion    string `yaml:"ses_region"`
		SESAccessKey string `yaml:"ses_access_key"`
		SESSecretKey string `yaml:"ses_secret_key"`
	} `yaml:"mailer"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing config file is not an error; env variables win over everything.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "user-account-service",
		HTTPPort:             8080,
		BaseURL:              "http://localhost:8080",
		BcryptCost:           10,
		AccessTokenTTL:       time.Hour,
		VerificationTokenTTL: 24 * time.Hour,
		RecoveryTokenTTL:     time.Hour,
		MailerSESRegion:      "us-east-1",
		MaxDBConns:           20,
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      50,
		OutboxClaimTTL:       30 * time.Second,
		OutboxMaxRetries:     5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.BaseURL != "" {
			cfg.BaseURL = f.Service.BaseURL
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Mailer.From != "" {
			cfg.MailerFrom = f.Mailer.From
		}
		if f.Mailer.SESRegion != "" {
			cfg.MailerSESRegion = f.Mailer.SESRegion
		}
		if f.Mailer.SESAccessKey != "" {
			cfg.MailerSESAccessKey = f.Mailer.SESAccessKey
		}
		if f.Mailer.SESSecretKey != "" {
			cfg.MailerSESSecretKey = f.Mailer.SESSecretKey
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.BaseURL = envOrDefault("BASE_URL", cfg.BaseURL)
	cfg.MailerFrom = envOrDefault("MAILER_FROM", cfg.MailerFrom)
	cfg.MailerSESRegion = envOrDefault("MAILER_AWS_SES_REGION", cfg.MailerSESRegion)
	cfg.MailerSESAccessKey = envOrDefault("MAILER_AWS_SES_ACCESS_KEY", cfg.MailerSESAccessKey)
	cfg.MailerSESSecretKey = envOrDefault("MAILER_AWS_SES_SECRET_KEY", cfg.MailerSESSecretKey)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_LIFE_TIME", int(cfg.AccessTokenTTL.Seconds()))) * time.Second
	cfg.VerificationTokenTTL = time.Duration(envInt("EMAIL_VERIFICATION_TOKEN_LIFE_TIME", int(cfg.VerificationTokenTTL.Seconds()))) * time.Second
	cfg.RecoveryTokenTTL = time.Duration(envInt("EMAIL_RECOVERY_TOKEN_LIFE_TIME", int(cfg.RecoveryTokenTTL.Seconds()))) * time.Second

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
