package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxext"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "veloxext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
metadata:
  paths: [shop.yaml, crm.json]
stores:
  main:
    dialect: postgres
    dsn: postgres://localhost/shop
  legacy:
    dialect: mysql
    dsn: user:pw@/legacy
debug: true
slow_threshold: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.SoftDeletion.Enabled)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, []string{"shop.yaml", "crm.json"}, cfg.Metadata.Paths)
	assert.Equal(t, []string{"legacy", "main"}, cfg.StoreNames())
	assert.Equal(t, Store{Dialect: "postgres", DSN: "postgres://localhost/shop"}, cfg.Stores["main"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SoftDeletion.Enabled)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Stores)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "soft_deletion:\n  enabled: true\n")
	t.Setenv("VELOXEXT_SOFT_DELETION_ENABLED", "false")
	t.Setenv("VELOXEXT_METADATA_PATHS", "a.yaml,b.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.SoftDeletion.Enabled)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Metadata.Paths)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config: read")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *Config
		errors []string
	}{
		{
			name: "unknown_dialect",
			cfg:  &Config{Stores: map[string]Store{"main": {Dialect: "oracle", DSN: "x"}}},
			errors: []string{
				`config error for "stores.main.dialect" (value: oracle)`,
			},
		},
		{
			name: "missing_dsn",
			cfg:  &Config{Stores: map[string]Store{"crm": {Dialect: "sqlite"}}},
			errors: []string{
				`config error for "stores.crm.dsn": missing data source name`,
			},
		},
		{
			name: "negative_threshold",
			cfg:  &Config{SlowThreshold: -time.Second},
			errors: []string{
				`"slow_threshold"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, veloxext.ErrConfiguration)
			var cerr *ConfigError
			assert.ErrorAs(t, err, &cerr)
			for _, msg := range tt.errors {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}
