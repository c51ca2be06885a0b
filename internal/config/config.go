package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	Email    EmailConfig    `mapstructure:"email"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Prefix       string        `mapstructure:"prefix"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the key-value backend.
// Type is one of memory, sqlite, postgres or mysql.
type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// CatalogConfig points at an optional YAML file replacing the embedded catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EmailConfig configures the SES welcome mail. An empty FromEmail disables it.
type EmailConfig struct {
	Region     string `mapstructure:"region"`
	FromEmail  string `mapstructure:"from_email"`
	FromName   string `mapstructure:"from_name"`
	AppBaseURL string `mapstructure:"app_base_url"`
	Debug      bool   `mapstructure:"debug"`
}

// Load reads configuration from an optional file and WISION_* environment
// variables, falling back to defaults for every key
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wision")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "memory", "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for database type %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	if c.Server.Prefix != "" && !strings.HasPrefix(c.Server.Prefix, "/") {
		c.Server.Prefix = "/" + c.Server.Prefix
	}
	c.Server.Prefix = strings.TrimSuffix(c.Server.Prefix, "/")

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.prefix", "/api")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./wision.db")
	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("auth.rate_window", time.Minute)

	v.SetDefault("catalog.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Wision")
	v.SetDefault("email.app_base_url", "http://localhost:8080")
	v.SetDefault("email.debug", false)
}
