package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	DatabaseURL string
	Port        string

	// Token signing
	JWTSecret          string
	JWTAlgorithm       string
	TokenExpiryMinutes int

	// External geocoding provider (optional; fallback table covers absence)
	GeocodingAPIKey string

	// Filesystem root for uploaded photos, logo and backups
	UploadDir string
}

var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("config: JWT_SECRET is required")
)

// LoadFromEnv loads service configuration from environment variables.
//
// Environment variables:
//   - DATABASE_URL: postgres DSN (required)
//   - PORT: listen port (default "5050")
//   - JWT_SECRET: HMAC signing secret (required)
//   - JWT_ALGORITHM: signing algorithm (default "HS256")
//   - TOKEN_EXPIRY_MINUTES: bearer token lifetime (default 480)
//   - GEOCODING_API_KEY: external geocoder key (optional)
//   - UPLOAD_DIR: directory for uploads (default "./uploads")
func LoadFromEnv() Config {
	expiry := 480
	if v := strings.TrimSpace(os.Getenv("TOKEN_EXPIRY_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			expiry = n
		}
	}

	alg := strings.TrimSpace(os.Getenv("JWT_ALGORITHM"))
	if alg == "" {
		alg = "HS256"
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5050"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	return Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               port,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTAlgorithm:       alg,
		TokenExpiryMinutes: expiry,
		GeocodingAPIKey:    os.Getenv("GEOCODING_API_KEY"),
		UploadDir:          uploadDir,
	}
}

// Validate checks that the configuration can boot the service.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
