// Package config loads gosass.yml and GOSASS_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/gosass/internal/compiler/output"
)

// FileNames are the config files looked up, in order.
var FileNames = []string{"gosass.yml", "gosass.yaml"}

// Config represents the gosass configuration
type Config struct {
	Style        string       `mapstructure:"style"`
	Precision    int          `mapstructure:"precision"`
	IncludePaths []string     `mapstructure:"include_paths"`
	SourceMap    bool         `mapstructure:"source_map"`
	Minify       bool         `mapstructure:"minify"`
	InputDir     string       `mapstructure:"input_dir"`
	OutputDir    string       `mapstructure:"output_dir"`
	Cache        CacheConfig  `mapstructure:"cache"`
	Watch        WatchConfig  `mapstructure:"watch"`
	Server       ServerConfig `mapstructure:"server"`
}

// CacheConfig represents compiled-CSS cache configuration
type CacheConfig struct {
	Size     int           `mapstructure:"size"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Patterns []string      `mapstructure:"patterns"`
	Ignored  []string      `mapstructure:"ignored"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ServerConfig represents dev server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("style", output.Nested.String())
	v.SetDefault("precision", 5)
	v.SetDefault("include_paths", []string{})
	v.SetDefault("source_map", false)
	v.SetDefault("minify", false)
	v.SetDefault("input_dir", "scss")
	v.SetDefault("output_dir", "css")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("watch.patterns", []string{"*.scss", "*.sass"})
	v.SetDefault("watch.ignored", []string{".git", "node_modules"})
	v.SetDefault("watch.debounce", 100*time.Millisecond)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")

	v.SetEnvPrefix("GOSASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads the configuration from gosass.yml or gosass.yaml in the
// working directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads the configuration from a config file in dir. Missing files
// yield the defaults.
func LoadFrom(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName("gosass")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Write saves cfg as YAML to path.
func Write(path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	v := viper.New()
	v.Set("style", cfg.Style)
	v.Set("precision", cfg.Precision)
	v.Set("include_paths", cfg.IncludePaths)
	v.Set("source_map", cfg.SourceMap)
	v.Set("minify", cfg.Minify)
	v.Set("input_dir", cfg.InputDir)
	v.Set("output_dir", cfg.OutputDir)
	v.Set("cache.size", cfg.Cache.Size)
	v.Set("cache.ttl", cfg.Cache.TTL.String())
	if cfg.Cache.RedisURL != "" {
		v.Set("cache.redis_url", cfg.Cache.RedisURL)
	}
	v.Set("watch.patterns", cfg.Watch.Patterns)
	v.Set("watch.ignored", cfg.Watch.Ignored)
	v.Set("watch.debounce", cfg.Watch.Debounce.String())
	v.Set("server.port", cfg.Server.Port)
	v.Set("server.host", cfg.Server.Host)
	return v.WriteConfigAs(path)
}

// Defaults returns the configuration used when no file is present,
// including GOSASS_ environment overrides.
func Defaults() (*Config, error) {
	var config Config
	if err := newViper().Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// OutputStyle returns the parsed output style.
func (c *Config) OutputStyle() output.Style {
	s, err := output.ParseStyle(c.Style)
	if err != nil {
		return output.Nested
	}
	return s
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// GetProjectRoot finds the nearest directory at or above the working
// directory that holds a config file
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a gosass project (no gosass.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := output.ParseStyle(cfg.Style); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if cfg.Precision < 0 {
		return fmt.Errorf("precision must not be negative, got: %d", cfg.Precision)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got: %d", cfg.Server.Port)
	}
	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got: %d", cfg.Cache.Size)
	}
	if cfg.Cache.RedisURL != "" && !strings.HasPrefix(cfg.Cache.RedisURL, "redis://") && !strings.HasPrefix(cfg.Cache.RedisURL, "rediss://") {
		return fmt.Errorf("cache.redis_url must use redis:// or rediss://, got: %s", cfg.Cache.RedisURL)
	}
	return nil
}
