// Package config loads veloxext settings from YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/dialect"
)

// EnvPrefix prefixes environment overrides, e.g. VELOXEXT_SOFT_DELETION_ENABLED.
const EnvPrefix = "VELOXEXT"

// Config is the full configuration.
type Config struct {
	SoftDeletion SoftDeletion     `mapstructure:"soft_deletion"`
	Metadata     Metadata         `mapstructure:"metadata"`
	Stores       map[string]Store `mapstructure:"stores"`
	// Debug logs every statement sent to a store.
	Debug bool `mapstructure:"debug"`
	// SlowThreshold enables statement statistics and slow query warnings
	// when positive.
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

// SoftDeletion toggles the soft deletion filters.
type SoftDeletion struct {
	Enabled bool `mapstructure:"enabled"`
}

// Metadata lists the entity definition files.
type Metadata struct {
	Paths []string `mapstructure:"paths"`
}

// Store is a data store connection.
type Store struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SoftDeletion: SoftDeletion{Enabled: true},
		Stores:       map[string]Store{},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("soft_deletion.enabled", true)
	v.SetDefault("debug", false)
	v.SetDefault("slow_threshold", time.Duration(0))
	// AutomaticEnv only applies to keys viper knows about.
	_ = v.BindEnv("metadata.paths")
	return v
}

// Load reads the YAML file at path. An empty path yields the defaults
// plus environment overrides.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Stores == nil {
		cfg.Stores = map[string]Store{}
	}
	return cfg, nil
}

// StoreNames returns the configured store names, sorted.
func (c *Config) StoreNames() []string {
	names := make([]string, 0, len(c.Stores))
	for name := range c.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every store. All problems are reported, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.SlowThreshold < 0 {
		errs = append(errs, NewConfigError("slow_threshold", c.SlowThreshold, "must not be negative"))
	}
	for _, name := range c.StoreNames() {
		s := c.Stores[name]
		key := "stores." + name
		if err := dialect.Validate(s.Dialect); err != nil {
			errs = append(errs, NewConfigError(key+".dialect", s.Dialect, err.Error()))
		}
		if s.DSN == "" {
			errs = append(errs, NewConfigError(key+".dsn", nil, "missing data source name"))
		}
	}
	return errors.Join(errs...)
}

// ConfigError reports an invalid option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("veloxext: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("veloxext: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches veloxext.ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == veloxext.ErrConfiguration
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}
