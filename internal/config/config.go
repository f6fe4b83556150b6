// Package config loads the CLI configuration from a YAML file, CANCELFLOW_*
// environment variables and an optional .env file, in increasing priority
// of env over file over defaults.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CANCELFLOW_STORE_TYPE.
const EnvPrefix = "CANCELFLOW"

// DefaultConfigName is looked up in the working directory when no file is given.
const DefaultConfigName = "cancelflow"

// Store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the full CLI configuration.
type Config struct {
	Flow      FlowConfig      `mapstructure:"flow"`
	Session   string          `mapstructure:"session"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Privacy   PrivacyConfig   `mapstructure:"privacy"`
	Account   AccountConfig   `mapstructure:"account"`
}

// FlowConfig selects the registry. File wins over Name.
type FlowConfig struct {
	Name string `mapstructure:"name"`
	File string `mapstructure:"file"`
}

type StoreConfig struct {
	Type     string        `mapstructure:"type"`
	Path     string        `mapstructure:"path"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// AnalyticsConfig enables the SQLite event log when Path is set.
type AnalyticsConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig serves Prometheus metrics on Addr when it is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// PrivacyConfig configures the store middleware.
// Keys are hex encoded 32 byte AES keys.
type PrivacyConfig struct {
	PIIKeys       []string `mapstructure:"pii_keys"`
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

// AccountConfig overrides the placeholder account shown in prompts.
type AccountConfig struct {
	FirstName   string `mapstructure:"first_name"`
	Trial       bool   `mapstructure:"trial"`
	TrialDays   int    `mapstructure:"trial_days"`
	RenewalDays int    `mapstructure:"renewal_days"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Flow:    FlowConfig{Name: "cancel"},
		Session: "cancelflow",
		Store: StoreConfig{
			Type:   StoreFile,
			Path:   ".cancelflow/sessions",
			Addr:   "localhost:6379",
			Prefix: "cancelflow:session:",
		},
		Log: LogConfig{Level: "warn"},
		Account: AccountConfig{
			FirstName:   "Alex",
			Trial:       true,
			TrialDays:   7,
			RenewalDays: 30,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("flow.name", d.Flow.Name)
	v.SetDefault("flow.file", d.Flow.File)
	v.SetDefault("session", d.Session)
	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.addr", d.Store.Addr)
	v.SetDefault("store.password", d.Store.Password)
	v.SetDefault("store.db", d.Store.DB)
	v.SetDefault("store.prefix", d.Store.Prefix)
	v.SetDefault("store.ttl", d.Store.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("analytics.path", d.Analytics.Path)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("privacy.pii_keys", []string{})
	v.SetDefault("privacy.encryption_key", "")
	v.SetDefault("privacy.fallback_keys", []string{})
	v.SetDefault("account.first_name", d.Account.FirstName)
	v.SetDefault("account.trial", d.Account.Trial)
	v.SetDefault("account.trial_days", d.Account.TrialDays)
	v.SetDefault("account.renewal_days", d.Account.RenewalDays)
}

// Options tune Load.
type Options struct {
	// File is an explicit config path. Missing explicit files are an error.
	File string
	// Dir is searched for cancelflow.yaml when File is empty.
	Dir string
	// EnvFiles are loaded into the process environment first. A missing
	// file is skipped. Variables already set are never overwritten.
	EnvFiles []string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.File, err)
		}
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
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

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("env file not found", "path", f)
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreSQLite, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("store.type: unknown store %q", c.Store.Type))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl: must not be negative"))
	}
	if c.Session == "" {
		errs = append(errs, errors.New("session: must not be empty"))
	}
	if c.Privacy.EncryptionKey != "" {
		if _, err := DecodeKey(c.Privacy.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("privacy.encryption_key: %w", err))
		}
	}
	for i, k := range c.Privacy.FallbackKeys {
		if _, err := DecodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("privacy.fallback_keys[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// DecodeKey parses a hex encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("key is not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
