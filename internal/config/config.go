// Package config loads runtime settings. Precedence: flags > PETCARE_* env vars >
// YAML file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type StorageConfig struct {
	// Backend is sqlite, badger or memory.
	Backend    string `mapstructure:"backend"`
	BadgerPath string `mapstructure:"badger_path"`
	// Passphrase enables record encryption when non-empty.
	Passphrase string `mapstructure:"passphrase"`
}

type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"`
}

type DispatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Port     string `mapstructure:"port"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is text or json.
	LogFormat string         `mapstructure:"log_format"`
	Timezone  string         `mapstructure:"timezone"`
	Storage   StorageConfig  `mapstructure:"storage"`
	Push      PushConfig     `mapstructure:"push"`
	Dispatch  DispatchConfig `mapstructure:"dispatch"`
	// AllowedOrigins are websocket origin patterns besides same-host.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Defaults() Config {
	return Config{
		Port:      "8080",
		DBPath:    "petcare.db",
		LogLevel:  "info",
		LogFormat: "text",
		Timezone:  "Local",
		Storage: StorageConfig{
			Backend:    "sqlite",
			BadgerPath: "petcare-badger",
		},
		Push: PushConfig{
			Subscriber: "petcare@localhost",
		},
		Dispatch: DispatchConfig{Interval: 30 * time.Second},
	}
}

// Load reads the configuration. An empty path skips the file; an explicit path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PETCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can find it during Unmarshal.
	d := Defaults()
	v.SetDefault("port", d.Port)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.badger_path", d.Storage.BadgerPath)
	v.SetDefault("storage.passphrase", d.Storage.Passphrase)
	v.SetDefault("push.vapid_public_key", d.Push.VAPIDPublicKey)
	v.SetDefault("push.vapid_private_key", d.Push.VAPIDPrivateKey)
	v.SetDefault("push.subscriber", d.Push.Subscriber)
	v.SetDefault("dispatch.interval", d.Dispatch.Interval)
	v.SetDefault("allowed_origins", d.AllowedOrigins)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("storage.backend must be sqlite, badger or memory, got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "badger" && c.Storage.BadgerPath == "" {
		return errors.New("storage.badger_path is required for the badger backend")
	}
	if c.Dispatch.Interval <= 0 {
		return errors.New("dispatch.interval must be positive")
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return errors.New("push.vapid_public_key and push.vapid_private_key must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PushEnabled reports whether VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.Push.VAPIDPublicKey != "" && c.Push.VAPIDPrivateKey != ""
}
