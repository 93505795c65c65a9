package testutils

import (
	"time"

	"github.com/Triet1705/client-hub-backend/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!",
			Issuer:       "test-issuer",
			AccessExpiry: 15 * time.Minute,
		},
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:     32,
			Expiry:          7 * 24 * time.Hour,
			CleanupInterval: 0,
		},
		Auth: config.AuthConfig{
			MinLength:         8,
			RequireUpper:      true,
			RequireLower:      true,
			RequireNumber:     true,
			RequireSpecial:    false,
			BcryptCost:        bcrypt.MinCost,
			MaxFailedAttempts: 5,
			LockDuration:      15 * time.Minute,
		},
		Tenant: config.TenantConfig{
			Header:        "X-Tenant-ID",
			DefaultID:     "default",
			RequireHeader: false,
		},
		Async: config.AsyncConfig{
			Workers:   2,
			QueueSize: 16,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}

var TestPasswords = struct {
	Valid    string
	TooShort string
	NoUpper  string
	NoNumber string
}{
	Valid:    "Password123",
	TooShort: "Pass1",
	NoUpper:  "password123",
	NoNumber: "PasswordABC",
}
