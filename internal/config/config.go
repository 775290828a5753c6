// Package config loads server settings from an optional YAML file and the
// environment. Environment variables always win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const devJWTSecret = "splitr-dev-secret-change-me"

type Config struct {
	Env         string            `yaml:"env"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Notify      NotifyConfig      `yaml:"notify"`
	Splits      SplitsConfig      `yaml:"splits"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type InterpreterConfig struct {
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type NotifyConfig struct {
	// ResendAPIKey enables email notifications when set.
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
}

type SplitsConfig struct {
	// AssignRemainderToPayer makes the payer's share absorb the rounding
	// remainder so equal splits sum exactly to the amount.
	AssignRemainderToPayer bool   `yaml:"assign_remainder_to_payer"`
	CurrencySymbol         string `yaml:"currency_symbol"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: "dev",
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/splitr.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Interpreter: InterpreterConfig{
			URL:     "http://localhost:11434",
			Model:   "mistral",
			Timeout: 30 * time.Second,
		},
		Notify: NotifyConfig{
			From: "splitr <noreply@splitr.app>",
		},
		Splits: SplitsConfig{
			CurrencySymbol: "₹",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults, then
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" && cfg.Env == "dev" {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by SPLITR_CONFIG, if any.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("SPLITR_CONFIG"))
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "SPLITR_ENV")
	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if err := setDuration(&c.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}
	setString(&c.Interpreter.URL, "OLLAMA_URL")
	setString(&c.Interpreter.Model, "OLLAMA_MODEL")
	if err := setDuration(&c.Interpreter.Timeout, "OLLAMA_TIMEOUT"); err != nil {
		return err
	}
	setString(&c.Notify.ResendAPIKey, "RESEND_API_KEY")
	setString(&c.Notify.From, "NOTIFY_FROM")
	if err := setBool(&c.Splits.AssignRemainderToPayer, "ASSIGN_REMAINDER_TO_PAYER"); err != nil {
		return err
	}
	setString(&c.Splits.CurrencySymbol, "CURRENCY_SYMBOL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url (DATABASE_URL) is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required outside dev")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Interpreter.URL == "" || c.Interpreter.Model == "" {
		return fmt.Errorf("interpreter url and model are required")
	}
	if c.Interpreter.Timeout <= 0 {
		return fmt.Errorf("interpreter.timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
