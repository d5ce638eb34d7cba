// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token issuer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Credential store backends selectable with CREDENTIAL_STORE.
const (
	CredentialStorePostgres = "postgres"
	CredentialStoreRedis    = "redis"
)

// Notifier modes selectable with NOTIFIER.
const (
	NotifierLog  = "log"
	NotifierLive = "live"
)

// # Configuration Schema

// Config holds all runtime configuration for the Storefront API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis), required only for the redis credential store
	RedisURL        string `env:"REDIS_URL"`
	CredentialStore string `env:"CREDENTIAL_STORE" envDefault:"postgres"`

	// Token signing: either a shared secret (HS256) or an RSA key pair (RS256)
	JWTSecret      string `env:"JWT_SECRET"`
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`
	JWTIssuer      string `env:"JWT_ISSUER" envDefault:"storefront"`

	// Token lifetimes
	AccessExpirationMinutes                       int `env:"JWT_ACCESS_EXPIRATION_MINUTES"                           envDefault:"30"`
	RefreshExpirationDays                         int `env:"JWT_REFRESH_EXPIRATION_DAYS"                             envDefault:"30"`
	VerifyMobileNumberExpirationMinutes           int `env:"JWT_VERIFY_MOBILE_NUMBER_EXPIRATION_MINUTES"             envDefault:"10"`
	VerifyEmailExpirationMinutes                  int `env:"JWT_VERIFY_EMAIL_EXPIRATION_MINUTES"                     envDefault:"10"`
	ResetPasswordViaMobileNumberExpirationMinutes int `env:"JWT_RESET_PASSWORD_VIA_MOBILE_NUMBER_EXPIRATION_MINUTES" envDefault:"10"`
	ResetPasswordViaEmailExpirationMinutes        int `env:"JWT_RESET_PASSWORD_VIA_EMAIL_EXPIRATION_MINUTES"         envDefault:"10"`

	// Outbound delivery
	Notifier                string `env:"NOTIFIER"                  envDefault:"log"`
	KavenegarAPIKey         string `env:"KAVENEGAR_APIKEY"`
	KavenegarVerifyTemplate string `env:"KAVENEGAR_VERIFY_TEMPLATE" envDefault:"verifyPhone"`
	EmailHost               string `env:"EMAIL_HOST"`
	EmailPort               int    `env:"EMAIL_PORT"                envDefault:"587"`
	EmailUsername           string `env:"EMAIL_USERNAME"`
	EmailPassword           string `env:"EMAIL_PASSWORD"`
	EmailFrom               string `env:"EMAIL_FROM"`

	// AppBaseURL prefixes the links sent in verification and reset emails.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses the process environment into a [Config] struct.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFromMap parses the given variables instead of the process environment.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// validate enforces rules spanning several variables.
func (c *Config) validate() error {
	var errs []error

	if c.JWTSecret == "" && (c.JWTPrivKeyPath == "" || c.JWTPubKeyPath == "") {
		errs = append(errs, errors.New("JWT_SECRET or both JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set"))
	}

	switch c.CredentialStore {
	case CredentialStorePostgres:
	case CredentialStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when CREDENTIAL_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CREDENTIAL_STORE %q", c.CredentialStore))
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierLive:
		if c.KavenegarAPIKey == "" {
			errs = append(errs, errors.New("KAVENEGAR_APIKEY is required when NOTIFIER=live"))
		}
		if c.EmailHost == "" || c.EmailFrom == "" {
			errs = append(errs, errors.New("EMAIL_HOST and EMAIL_FROM are required when NOTIFIER=live"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q", c.Notifier))
	}

	lifetimes := []int{
		c.AccessExpirationMinutes,
		c.RefreshExpirationDays,
		c.VerifyMobileNumberExpirationMinutes,
		c.VerifyEmailExpirationMinutes,
		c.ResetPasswordViaMobileNumberExpirationMinutes,
		c.ResetPasswordViaEmailExpirationMinutes,
	}
	for _, lifetime := range lifetimes {
		if lifetime <= 0 {
			errs = append(errs, errors.New("token expirations must be positive"))
			break
		}
	}

	return errors.Join(errs...)
}

// # Derived Values

// AccessTTL returns the access token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessExpirationMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpirationDays) * 24 * time.Hour
}

// VerifyMobileNumberTTL returns the six-digit verification code lifetime.
func (c *Config) VerifyMobileNumberTTL() time.Duration {
	return time.Duration(c.VerifyMobileNumberExpirationMinutes) * time.Minute
}

// VerifyEmailTTL returns the email verification link lifetime.
func (c *Config) VerifyEmailTTL() time.Duration {
	return time.Duration(c.VerifyEmailExpirationMinutes) * time.Minute
}

// ResetPasswordViaMobileNumberTTL returns the mobile reset token lifetime.
func (c *Config) ResetPasswordViaMobileNumberTTL() time.Duration {
	return time.Duration(c.ResetPasswordViaMobileNumberExpirationMinutes) * time.Minute
}

// ResetPasswordViaEmailTTL returns the email reset link lifetime.
func (c *Config) ResetPasswordViaEmailTTL() time.Duration {
	return time.Duration(c.ResetPasswordViaEmailExpirationMinutes) * time.Minute
}

// UsesRSAKeys reports whether tokens are signed with the RSA key pair.
func (c *Config) UsesRSAKeys() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
