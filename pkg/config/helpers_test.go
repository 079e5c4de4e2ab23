package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, c *Config)
	}{
		{"log_level", "warn", func(t *testing.T, c *Config) { assert.Equal(t, "warn", c.LogLevel) }},
		{"fetch.max_attempts", "7", func(t *testing.T, c *Config) { assert.Equal(t, 7, c.Fetch.MaxAttempts) }},
		{"fetch.attempt_timeout", "750ms", func(t *testing.T, c *Config) { assert.Equal(t, 750*time.Millisecond, c.Fetch.AttemptTimeout) }},
		{"export.archive_folder", "true", func(t *testing.T, c *Config) { assert.True(t, c.Export.ArchiveFolder) }},
		{"storage.dir", "/srv/out", func(t *testing.T, c *Config) { assert.Equal(t, "/srv/out", c.Storage.Dir) }},
		{"recipe_service.base_url", "https://x", func(t *testing.T, c *Config) { assert.Equal(t, "https://x", c.RecipeService.BaseURL) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.SetValue(tt.key, tt.value))
			tt.check(t, cfg)
		})
	}
}

func TestSetValue_Errors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.SetValue("nope", "x"))
	assert.Error(t, cfg.SetValue("fetch.max_attempts", "three"))
	assert.Error(t, cfg.SetValue("export.batch_timeout", "soon"))
	assert.Error(t, cfg.SetValue("export.archive_folder", "maybe"))
}

func TestGetValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.AllowedHosts = []string{"a.example.com", "b.example.com"}

	v, err := cfg.GetValue("fetch.attempt_timeout")
	require.NoError(t, err)
	assert.Equal(t, "5s", v)

	v, err = cfg.GetValue("fetch.allowed_hosts")
	require.NoError(t, err)
	assert.Equal(t, "a.example.com,b.example.com", v)

	v, err = cfg.GetValue("export.max_concurrent")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	_, err = cfg.GetValue("settings.cache_dir")
	assert.Error(t, err)
}

func TestToMap_RedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecipeService.APIKey = "super-secret"
	cfg.Storage.S3.SecretKey = "also-secret"
	cfg.Fetch.Headers = map[string]string{"X-Api-Key": "cdn-secret"}

	m, err := cfg.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "********", m["recipe_service.api_key"])
	assert.Equal(t, "********", m["storage.s3.secret_key"])
	assert.Equal(t, "********", m["fetch.headers.X-Api-Key"])
	assert.Equal(t, "info", m["log_level"])

	keys := SortedKeys(m)
	assert.IsIncreasing(t, keys)
}
