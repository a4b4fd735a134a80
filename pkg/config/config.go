package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Wix      WixConfig
	Identity IdentityConfig
	Catalog  CatalogConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// IsProduction reports whether the service runs in production mode
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// StoreConfig selects the settings store backend
type StoreConfig struct {
	Driver string // memory or postgres
}

// WixConfig holds the external platform configuration
type WixConfig struct {
	APIBaseURL       string
	OAuthURL         string
	InstallerURL     string
	CloseWindowURL   string
	AppID            string
	AppSecret        string
	RedirectURL      string
	DataCollectionID string
	Timeout          time.Duration
}

// Enabled reports whether gateway calls should be made at all
func (w WixConfig) Enabled() bool {
	return w.AppID != "" && w.AppSecret != "" && w.APIBaseURL != ""
}

// IdentityConfig holds the development fallback tenant
type IdentityConfig struct {
	DefaultInstanceID    string
	AllowDefaultInstance bool
}

// CatalogConfig holds product catalog settings
type CatalogConfig struct {
	CacheTTL     time.Duration
	CacheMaxCost int64
	QueryLimit   int
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "shippingbar_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "memory"),
		},
		Wix: WixConfig{
			APIBaseURL:       strings.TrimRight(getEnv("WIX_API_BASE_URL", "https://www.wixapis.com"), "/"),
			OAuthURL:         getEnv("WIX_OAUTH_URL", "https://www.wixapis.com/oauth/access"),
			InstallerURL:     getEnv("WIX_INSTALLER_URL", "https://www.wix.com/installer/install"),
			CloseWindowURL:   getEnv("WIX_CLOSE_WINDOW_URL", "https://www.wix.com/installer/close-window"),
			AppID:            getEnv("WIX_APP_ID", ""),
			AppSecret:        getEnv("WIX_APP_SECRET", ""),
			RedirectURL:      getEnv("WIX_REDIRECT_URL", ""),
			DataCollectionID: getEnv("WIX_DATA_COLLECTION_ID", "ShippingBarSettings"),
			Timeout:          getEnvAsDuration("WIX_TIMEOUT", 10*time.Second),
		},
		Identity: IdentityConfig{
			DefaultInstanceID:    getEnv("DEFAULT_INSTANCE_ID", ""),
			AllowDefaultInstance: getEnvAsBool("ALLOW_DEFAULT_INSTANCE", false),
		},
		Catalog: CatalogConfig{
			CacheTTL:     getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),
			CacheMaxCost: int64(getEnvAsInt("CATALOG_CACHE_MAX_COST", 10000)),
			QueryLimit:   getEnvAsInt("CATALOG_QUERY_LIMIT", 50),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{
				"https://manage.wix.com",
				"https://editor.wix.com",
				"https://www.wix.com",
			}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "shippingbar"),
		},
	}, nil
}

// DefaultInstance returns the fallback tenant, or "" when it must not be used.
// The fallback is never honored in production.
func (c *Config) DefaultInstance() string {
	if !c.Identity.AllowDefaultInstance || c.Server.IsProduction() {
		return ""
	}
	return c.Identity.DefaultInstanceID
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
