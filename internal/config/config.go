// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback)
//
// A .env file in the working directory, if present, is loaded into the
// environment first.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Export  ExportConfig  `yaml:"export"`
	Render  RenderConfig  `yaml:"render"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port       int    `yaml:"port"`
	StaticPath string `yaml:"static_path"`
}

// StorageConfig holds the export ledger database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ExportConfig holds download settings
type ExportConfig struct {
	// Dir is where downloads are saved by the CLI.
	Dir string `yaml:"dir"`
}

// RenderConfig holds summary image settings.
// Empty font paths select the built-in Go fonts.
type RenderConfig struct {
	FontRegular string `yaml:"font_regular"`
	FontBold    string `yaml:"font_bold"`
}

// SessionConfig holds session expiry settings
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultPort          = 8080
	defaultStaticPath    = "./static"
	defaultDatabasePath  = "./data/exports.db"
	defaultExportDir     = "."
	defaultSessionTTL    = 2 * time.Hour
	defaultSweepInterval = 5 * time.Minute
)

// Load reads and parses the config file. Missing keys take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       getEnvInt("PORT", defaultPort),
			StaticPath: getEnv("STATIC_PATH", defaultStaticPath),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DB_PATH", defaultDatabasePath),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", defaultExportDir),
		},
		Render: RenderConfig{
			FontRegular: os.Getenv("FONT_REGULAR"),
			FontBold:    os.Getenv("FONT_BOLD"),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", defaultSessionTTL),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", defaultSweepInterval),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	// .env is optional
	_ = godotenv.Load()

	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.StaticPath == "" {
		c.Server.StaticPath = defaultStaticPath
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = defaultDatabasePath
	}
	if c.Export.Dir == "" {
		c.Export.Dir = defaultExportDir
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = defaultSessionTTL
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = defaultSweepInterval
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvDuration retrieves a duration environment variable ("90m", "2h") with a fallback default
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
