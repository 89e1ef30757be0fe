// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type string // "mongo" or "memory"
	URI  string
	Name string
}

// FeedConfig holds settings specific to the community feed.
type FeedConfig struct {
	// Number of distinct reporters that triggers automatic post removal.
	ReportThreshold int
	// Default page size for post listings and broker snapshots.
	PageSize int
	// Secret key for deriving anonymous handles. Must stay stable across
	// restarts or existing members would receive new identities.
	HandleSecret string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Feed           *FeedConfig
	JWTSecret      string
	ImageHostURL   string
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: "mongo",
		URI:  "mongodb://localhost:27017",
		Name: "whisper_feed",
	}
}

// DefaultFeedConfig provides default feed settings
func DefaultFeedConfig() *FeedConfig {
	return &FeedConfig{
		ReportThreshold: 50,
		PageSize:        20,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the current directory or the project root when
	// running from cmd/server. Missing files are fine.
	envLocations := []string{".env", "../../.env"}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := DefaultDatabaseConfig()

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		dbConfig.Type = dbType
	}
	switch dbConfig.Type {
	case "mongo":
		if uri := os.Getenv("MONGODB_URI"); uri != "" {
			dbConfig.URI = uri
		}
		if name := os.Getenv("DB_NAME"); name != "" {
			dbConfig.Name = name
		}
	case "memory":
		// In-memory store, used for local development and tests.
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q (want mongo or memory)", dbConfig.Type)
	}

	feedConfig := DefaultFeedConfig()

	if thresholdStr := os.Getenv("REPORT_THRESHOLD"); thresholdStr != "" {
		threshold, err := strconv.Atoi(thresholdStr)
		if err != nil || threshold < 1 {
			return nil, fmt.Errorf("invalid REPORT_THRESHOLD %q", thresholdStr)
		}
		feedConfig.ReportThreshold = threshold
	}

	if pageSizeStr := os.Getenv("PAGE_SIZE"); pageSizeStr != "" {
		if pageSize, err := strconv.Atoi(pageSizeStr); err == nil && pageSize > 0 {
			feedConfig.PageSize = pageSize
		}
	}

	feedConfig.HandleSecret = os.Getenv("HANDLE_SECRET")
	if feedConfig.HandleSecret == "" {
		return nil, fmt.Errorf("HANDLE_SECRET environment variable is required")
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Feed:           feedConfig,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ImageHostURL:   os.Getenv("IMAGE_HOST_URL"),
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}
