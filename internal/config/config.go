package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		PublicBaseURL  string   `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		MinIdleConns    int    `yaml:"min_idle_conns" env:"DB_MIN_IDLE_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Driver         string `yaml:"driver" env:"STORAGE_DRIVER"`
		Path           string `yaml:"path" env:"STORAGE_PATH"`
		SigningSecret  string `yaml:"signing_secret" env:"STORAGE_SIGNING_SECRET"`
		SignedURLTTL   string `yaml:"signed_url_ttl" env:"STORAGE_SIGNED_URL_TTL"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES"`
		Bucket         string `yaml:"bucket" env:"STORAGE_BUCKET"`
		Region         string `yaml:"region" env:"STORAGE_REGION"`
		Endpoint       string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
		AccessKeyID    string `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
		SecretKey      string `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	} `yaml:"storage"`

	Redis struct {
		Addr      string `yaml:"addr" env:"REDIS_ADDR"`
		Password  string `yaml:"password" env:"REDIS_PASSWORD"`
		DB        int    `yaml:"db" env:"REDIS_DB"`
		LookupTTL string `yaml:"lookup_ttl" env:"REDIS_LOOKUP_TTL"`
	} `yaml:"redis"`

	Email struct {
		Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
		From           string `yaml:"from" env:"EMAIL_FROM"`
		FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SendgridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	} `yaml:"email"`

	Rollbar struct {
		Token       string `yaml:"token" env:"ROLLBAR_TOKEN"`
		Environment string `yaml:"environment" env:"ROLLBAR_ENVIRONMENT"`
		CodeVersion string `yaml:"code_version" env:"ROLLBAR_CODE_VERSION"`
	} `yaml:"rollbar"`

	Admin struct {
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Wizard struct {
		RequireDocuments bool `yaml:"require_documents" env:"WIZARD_REQUIRE_DOCUMENTS"`
	} `yaml:"wizard"`

	Jobs struct {
		MaintenanceInterval string `yaml:"maintenance_interval" env:"JOBS_MAINTENANCE_INTERVAL"`
		StaleDraftAge       string `yaml:"stale_draft_age" env:"JOBS_STALE_DRAFT_AGE"`
	} `yaml:"jobs"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// .env is optional; only a malformed file is an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "admissions"
	config.Database.SSLMode = "disable"
	config.Database.MaxOpenConns = 20
	config.Database.MinIdleConns = 2
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "admissions"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Storage.Driver = "local"
	config.Storage.Path = "./uploads"
	config.Storage.SignedURLTTL = "60s"
	config.Storage.MaxUploadBytes = 10 << 20
	config.Storage.Region = "us-east-1"

	config.Redis.LookupTTL = "5m"

	config.Email.Provider = "log"
	config.Email.FromName = "Admissions Office"
	config.Email.SMTPPort = 587

	config.Rollbar.Environment = "development"

	config.Wizard.RequireDocuments = true

	config.Jobs.MaintenanceInterval = "1h"
	config.Jobs.StaleDraftAge = "168h"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"storage signed URL TTL":       config.Storage.SignedURLTTL,
		"redis lookup TTL":             config.Redis.LookupTTL,
		"jobs maintenance interval":    config.Jobs.MaintenanceInterval,
		"jobs stale draft age":         config.Jobs.StaleDraftAge,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Storage.Driver) {
	case "local":
		if config.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the local driver")
		}
	case "s3":
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage max upload bytes must be positive")
	}

	switch strings.ToLower(config.Email.Provider) {
	case "log":
	case "smtp":
		if config.Email.SMTPHost == "" {
			return fmt.Errorf("smtp host is required for the smtp email provider")
		}
	case "sendgrid":
		if config.Email.SendgridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required for the sendgrid email provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string. Credentials
// are escaped, so passwords may contain URL delimiters.
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// StorageSigningSecret falls back to the JWT secret when no dedicated secret is set.
func (c *Config) StorageSigningSecret() string {
	if c.Storage.SigningSecret != "" {
		return c.Storage.SigningSecret
	}
	return c.JWT.Secret
}

// BaseURL is the externally reachable address used in signed links.
func (c *Config) BaseURL() string {
	if c.Server.PublicBaseURL != "" {
		return strings.TrimRight(c.Server.PublicBaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
