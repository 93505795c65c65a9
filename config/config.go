package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"CLIENTHUB_APP_"`
	Server       ServerConfig       `envPrefix:"CLIENTHUB_SERVER_"`
	Log          LogConfig          `envPrefix:"CLIENTHUB_LOG_"`
	Database     DatabaseConfig     `envPrefix:"CLIENTHUB_DATABASE_"`
	JWT          JWTConfig          `envPrefix:"CLIENTHUB_JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"CLIENTHUB_REFRESH_TOKEN_"`
	Auth         AuthConfig         `envPrefix:"CLIENTHUB_AUTH_"`
	Tenant       TenantConfig       `envPrefix:"CLIENTHUB_TENANT_"`
	Async        AsyncConfig        `envPrefix:"CLIENTHUB_ASYNC_"`
	Mail         MailConfig         `envPrefix:"CLIENTHUB_MAIL_"`
	RateLimit    RateLimitConfig    `envPrefix:"CLIENTHUB_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"client-hub"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"clienthub.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY,required"`
	Issuer       string        `env:"ISSUER" envDefault:"client-hub"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type RefreshTokenConfig struct {
	TokenLength     int           `env:"TOKEN_LENGTH" envDefault:"32"`
	Expiry          time.Duration `env:"EXPIRY" envDefault:"168h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type AuthConfig struct {
	MinLength         int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper      bool          `env:"PASSWORD_REQUIRE_UPPER" envDefault:"true"`
	RequireLower      bool          `env:"PASSWORD_REQUIRE_LOWER" envDefault:"true"`
	RequireNumber     bool          `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial    bool          `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"false"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	MaxFailedAttempts int           `env:"MAX_FAILED_ATTEMPTS" envDefault:"5"`
	LockDuration      time.Duration `env:"LOCK_DURATION" envDefault:"15m"`
}

type TenantConfig struct {
	Header        string `env:"HEADER" envDefault:"X-Tenant-ID"`
	DefaultID     string `env:"DEFAULT_ID" envDefault:"default"`
	RequireHeader bool   `env:"REQUIRE_HEADER" envDefault:"false"`
}

type AsyncConfig struct {
	Workers   int `env:"WORKERS" envDefault:"5"`
	QueueSize int `env:"QUEUE_SIZE" envDefault:"25"`
}

type MailConfig struct {
	Enabled       bool   `env:"ENABLED" envDefault:"false"`
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          int    `env:"PORT" envDefault:"587"`
	Username      string `env:"USERNAME"`
	Password      string `env:"PASSWORD"`
	Encryption    string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress   string `env:"FROM_ADDRESS"`
	FromName      string `env:"FROM_NAME" envDefault:"Client Hub Security"`
	SecurityAlert string `env:"SECURITY_ALERT_ADDRESS"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"10"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
