// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Session   SessionConfig
	Storage   StorageConfig
	Mail      MailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env        string
	Dev        bool
	Migrations bool
	Seed       bool
	SiteURL    string
}

// SessionConfig holds cookie signing settings.
type SessionConfig struct {
	Secret string
	Secure bool
}

// StorageConfig selects and configures the document object store.
type StorageConfig struct {
	Backend       string // "local" or "cloudinary"
	LocalDir      string
	SigningSecret string
	URLTTL        time.Duration
	CloudName     string
	APIKey        string
	APISecret     string
	Folder        string
}

// MailConfig holds SMTP settings. An empty Host selects the logging sender.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// RedisConfig holds the optional Redis URL used by the rate limiter.
type RedisConfig struct {
	URL string
}

// RateLimitConfig caps requests per client IP on login and public forms.
type RateLimitConfig struct {
	PerMinute int
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Production reports whether the app runs with production settings.
func (c *Config) Production() bool { return c.App.Env == "production" }

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	env := strings.ToLower(getEnv("APP_ENV", "development"))
	prod := env == "production"
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "agence"),
			Password: getEnv("DB_PASSWORD", "agence"),
			DBName:   getEnv("DB_NAME", "agence"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Env:        env,
			Dev:        getEnvBool("DEV", !prod),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", !prod),
			SiteURL:    strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			Secure: getEnvBool("COOKIE_SECURE", prod),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
			LocalDir:      getEnv("STORAGE_DIR", "data/documents"),
			SigningSecret: getEnv("STORAGE_SIGNING_SECRET", ""),
			URLTTL:        time.Duration(getEnvInt("STORAGE_URL_TTL_SECONDS", 60)) * time.Second,
			CloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:        getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:     getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:        getEnv("CLOUDINARY_FOLDER", "agence"),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "Agence <no-reply@localhost>"),
		},
		Redis:     RedisConfig{URL: getEnv("REDIS_URL", "")},
		RateLimit: RateLimitConfig{PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20)},
	}
}

const minSecretLen = 32

// Validate rejects settings that are unsafe in production and fills
// development defaults otherwise.
func (c *Config) Validate() error {
	var problems []string
	if len(c.Session.Secret) < minSecretLen {
		if c.Production() {
			problems = append(problems, "SESSION_SECRET must be at least 32 characters")
		} else {
			c.Session.Secret = "dev-session-secret-change-me-0123456789"
		}
	}
	if c.Storage.SigningSecret == "" {
		c.Storage.SigningSecret = c.Session.Secret
	}
	switch c.Storage.Backend {
	case "local":
	case "cloudinary":
		if c.Storage.CloudName == "" || c.Storage.APIKey == "" || c.Storage.APISecret == "" {
			problems = append(problems, "cloudinary storage needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Storage.URLTTL <= 0 {
		c.Storage.URLTTL = 60 * time.Second
	}
	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = 20
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
