package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the vici CLI.
type ClientConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	UserID    string        `mapstructure:"user_id"`
	Token     string        `mapstructure:"token"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (c ClientConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("invalid api_url %q: must start with http:// or https://", c.APIURL)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("invalid cache_size %d: must be positive", c.CacheSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid cache_ttl %s: must be positive", c.CacheTTL)
	}
	return nil
}

// DefaultClientPath returns ~/.config/vici/config.yaml.
func DefaultClientPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vici", "config.yaml")
}

// NewClientViper returns a viper instance with the client defaults and the
// VICI_ environment prefix. Flags may be bound to it before LoadClient.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("user_id", "")
	v.SetDefault("token", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("cache_size", 100)
	v.SetDefault("timeout", "10s")

	v.SetEnvPrefix("VICI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadClient reads path into v when the file exists and decodes the merged
// settings. A missing file is not an error.
func LoadClient(v *viper.Viper, path string) (ClientConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return ClientConfig{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("decoding client config: %w", err)
	}
	return cfg, nil
}

// SaveClientToken stores token in the config file at path, keeping the
// other settings already in v.
func SaveClientToken(v *viper.Viper, path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	v.Set("token", token)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
