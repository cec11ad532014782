package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Aggregator AggregatorConfig
	OCR        OCRConfig
	Sync       SyncConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	TokenSecret   string
	TokenDuration time.Duration
	Issuer        string
}

// AggregatorConfig holds credentials for the external bank-data aggregator.
// Environment selects the aggregator host (sandbox by default).
type AggregatorConfig struct {
	ClientID    string
	Secret      string
	Environment string
	RedirectURI string
	ClientName  string
	Timeout     time.Duration
}

// OCRConfig configures the receipt extraction model
type OCRConfig struct {
	APIKey string
	Model  string
}

// SyncConfig bounds the aggregator sync loops
type SyncConfig struct {
	PollInterval time.Duration
	MaxPolls     int
	PageTimeout  time.Duration
}

type SecurityConfig struct {
	BCryptCost         int
	RateLimitPerSecond int
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "centsible_user"),
			Password:        getEnv("DB_PASSWORD", "centsible_password"),
			Name:            getEnv("DB_NAME", "centsible_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Auth: AuthConfig{
			TokenSecret:   getEnv("AUTH_TOKEN_SECRET", ""),
			TokenDuration: getDurationEnv("AUTH_TOKEN_DURATION", 24*time.Hour),
			Issuer:        getEnv("AUTH_TOKEN_ISSUER", "centsible-api"),
		},
		Aggregator: AggregatorConfig{
			ClientID:    getEnv("PLAID_CLIENT_ID", ""),
			Secret:      getEnv("PLAID_SECRET", ""),
			Environment: getEnv("PLAID_ENV", "sandbox"),
			RedirectURI: getEnv("PLAID_REDIRECT_URI", ""),
			ClientName:  getEnv("APPLICATION_NAME", "Centsible"),
			Timeout:     getDurationEnv("PLAID_TIMEOUT", 30*time.Second),
		},
		OCR: OCRConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Sync: SyncConfig{
			PollInterval: getDurationEnv("SYNC_POLL_INTERVAL", 2*time.Second),
			MaxPolls:     getIntEnv("SYNC_MAX_POLLS", 10),
			PageTimeout:  getDurationEnv("SYNC_PAGE_TIMEOUT", 5*time.Minute),
		},
		Security: SecurityConfig{
			BCryptCost:         getIntEnv("BCRYPT_COST", 12),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	if config.Auth.TokenSecret == "" {
		if config.IsProduction() {
			log.Fatal("AUTH_TOKEN_SECRET must be set in production environments")
		}
		log.Println("Development environment: using insecure default token secret (set AUTH_TOKEN_SECRET to override)")
		config.Auth.TokenSecret = "centsible-dev-secret"
	}

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// BaseURL resolves the aggregator API host for the configured environment
func (c *AggregatorConfig) BaseURL() string {
	switch c.Environment {
	case "production":
		return "https://production.plaid.com"
	case "development":
		return "https://development.plaid.com"
	default:
		return "https://sandbox.plaid.com"
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	return origins
}
