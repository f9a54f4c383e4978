package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "xuibot/core/config"
	coredatabase "xuibot/core/database"
)

// Config couples the core configuration with the application's database
// section, loaded from the same YAML file.
type Config struct {
	Core     *coreconfig.Config
	Database coredatabase.Config
}

// CoreConfig satisfies the runner's config carrier contract.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return c.Core
}

// LoadConfig reads the YAML file and environment overrides for both the core
// sections and the database section.
func LoadConfig(path string) (*Config, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}

	var wrap struct {
		Database coredatabase.Config `yaml:"database"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &wrap); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &wrap.Database); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	db := wrap.Database
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 5
	}
	if db.User == "" || db.Name == "" {
		return nil, fmt.Errorf("database.user and database.name are required")
	}

	return &Config{Core: core, Database: db}, nil
}
