package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Local    LocalConfig    `json:"local"`
	Remote   RemoteConfig   `json:"remote"`
	Security SecurityConfig `json:"security"`
	Sync     SyncConfig     `json:"sync"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LocalConfig represents the embedded key-value store configuration
type LocalConfig struct {
	Path string `json:"path"`
}

// RemoteConfig represents the remote document store configuration. An
// empty URI runs the service in local-only mode.
type RemoteConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// SyncConfig tunes the sync engine
type SyncConfig struct {
	Timeout        time.Duration `json:"timeout"`
	ResyncSchedule string        `json:"resync_schedule"` // cron spec, empty disables
	ResyncTimeout  time.Duration `json:"resync_timeout"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Local: LocalConfig{
			Path: "data/fields",
		},
		Remote: RemoteConfig{
			Database: "agro_fields",
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Sync: SyncConfig{
			Timeout:       10 * time.Second,
			ResyncTimeout: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if path := os.Getenv("LOCAL_STORE_PATH"); path != "" {
		config.Local.Path = path
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		config.Remote.URI = uri
	}
	if db := os.Getenv("MONGODB_DATABASE"); db != "" {
		config.Remote.Database = db
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if schedule := os.Getenv("RESYNC_SCHEDULE"); schedule != "" {
		config.Sync.ResyncSchedule = schedule
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
