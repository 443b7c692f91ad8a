package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Database drivers the server can run on.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the catalog server
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string
	LogLevel   string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Empty host and URL disables redis.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Bartender account provisioned at startup when both are set
	AdminEmail    string
	AdminPassword string

	// Recipe images. Empty bucket disables uploads.
	S3Bucket     string
	AWSRegion    string
	ImageBaseURL string

	CORSOrigins []string
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// PostgresDSN builds a lib/pq keyword DSN.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// A missing .env is normal outside a checkout.
		_ = godotenv.Load()
	}

	var lookup func(envName, secretName string) string
	switch env {
	case CI:
		lookup = func(envName, _ string) string { return os.Getenv(envName) }
	case Development, Test:
		lookup = func(envName, secretName string) string {
			if v := os.Getenv(envName); v != "" {
				return v
			}
			return readSecret(secretName)
		}
	case Production:
		lookup = func(envName, secretName string) string {
			if v := readSecret(secretName); v != "" {
				return v
			}
			return os.Getenv(envName)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg := load(env, lookup)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment, lookup func(envName, secretName string) string) *Config {
	get := func(envName, secretName, def string) string {
		if v := lookup(envName, secretName); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Environment:   env,
		ServerPort:    get("SERVER_PORT", "server_port", "8080"),
		ServerHost:    get("SERVER_HOST", "server_host", "0.0.0.0"),
		LogLevel:      get("LOG_LEVEL", "log_level", "info"),
		DBDriver:      get("DB_DRIVER", "db_driver", DriverPostgres),
		DBHost:        get("DB_HOST", "db_host", "localhost"),
		DBPort:        get("DB_PORT", "db_port", "5432"),
		DBUser:        get("DB_USER", "db_user", ""),
		DBPassword:    get("DB_PASSWORD", "db_password", ""),
		DBName:        get("DB_NAME", "db_name", "drinkbook"),
		DBSSLMode:     get("DB_SSL_MODE", "db_ssl_mode", "disable"),
		SQLitePath:    get("SQLITE_PATH", "sqlite_path", "drinkbook.db"),
		RedisHost:     get("REDIS_HOST", "redis_host", ""),
		RedisPort:     get("REDIS_PORT", "redis_port", "6379"),
		RedisPassword: get("REDIS_PASSWORD", "redis_password", ""),
		RedisURL:      get("REDIS_URL", "redis_url", ""),
		JWTSecret:     get("JWT_SECRET", "jwt_secret", ""),
		AdminEmail:    get("ADMIN_EMAIL", "admin_email", ""),
		AdminPassword: get("ADMIN_PASSWORD", "admin_password", ""),
		S3Bucket:      get("S3_BUCKET_NAME", "s3_bucket_name", ""),
		AWSRegion:     get("AWS_REGION", "aws_region", ""),
		ImageBaseURL:  get("IMAGE_BASE_URL", "image_base_url", ""),
	}

	if n, err := strconv.Atoi(get("REDIS_DB", "redis_db", "0")); err == nil {
		cfg.RedisDB = n
	} else {
		cfg.RedisDB = -1
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", "cors_origins", "http://localhost:8081"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	if data, err := os.ReadFile(filepath.Join(secretsDir(), name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
