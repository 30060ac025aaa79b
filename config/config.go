/*
Package config loads the server configuration.

PURPOSE:
  One yaml file plus environment overrides (prefix SENOTO, e.g.
  SENOTO_SERVER_PORT=9000). Every key has a sensible default; a missing
  config file is not an error, so the dev loop is just "go run".
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type StoreConfig struct {
	// Driver selects the document store: memory, sqlite, or postgres.
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	PostgresDN string `mapstructure:"postgres_dsn"`
}

type ClinicConfig struct {
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Clinic ClinicConfig `mapstructure:"clinic"`
	Log    LogConfig    `mapstructure:"log"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Load reads configuration from path (default "config.yaml" in the working
// directory) with environment overrides. A missing file falls back to
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "clinic.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("clinic.name", "Senoto Dental Care")
	v.SetDefault("log.level", "info")

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SENOTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return &c, nil
}
