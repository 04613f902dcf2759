package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
	Push     PushConfig     `yaml:"push"`
	Engine   EngineConfig   `yaml:"engine"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// PostgresConfig holds the notification archive database configuration
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// PushConfig holds push gateway configuration
type PushConfig struct {
	ExpoURL        string `yaml:"expo_url"`
	APNsKeyFile    string `yaml:"apns_key_file"`
	APNsKeyID      string `yaml:"apns_key_id"`
	APNsTeamID     string `yaml:"apns_team_id"`
	APNsTopic      string `yaml:"apns_topic"`
	APNsProduction bool   `yaml:"apns_production"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EngineConfig holds the matching and feed engine knobs
type EngineConfig struct {
	// FeedRadiusMiles is the single "nearby" boundary every feed path uses.
	FeedRadiusMiles     float64 `yaml:"feed_radius_miles"`
	FeedLimit           int     `yaml:"feed_limit"`
	SnapshotSize        int     `yaml:"snapshot_size"`
	ExpiryBufferMinutes int     `yaml:"expiry_buffer_minutes"`
	FanoutWorkers       int     `yaml:"fanout_workers"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies defaults for
// engine knobs so a partial file stays usable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.FeedRadiusMiles <= 0 {
		c.Engine.FeedRadiusMiles = 40
	}
	if c.Engine.FeedLimit <= 0 {
		c.Engine.FeedLimit = 3
	}
	if c.Engine.SnapshotSize <= 0 {
		c.Engine.SnapshotSize = 5
	}
	if c.Engine.ExpiryBufferMinutes <= 0 {
		c.Engine.ExpiryBufferMinutes = 30
	}
	if c.Engine.FanoutWorkers <= 0 {
		c.Engine.FanoutWorkers = 8
	}
	if c.Push.ExpoURL == "" {
		c.Push.ExpoURL = "https://exp.host/--/api/v2/push/send"
	}
	if c.Push.TimeoutSeconds <= 0 {
		c.Push.TimeoutSeconds = 10
	}
}

// DSN returns the PostgreSQL connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
