package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/auth"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.ConfigVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Fetch.AttemptTimeout)
	assert.Equal(t, time.Second, cfg.Fetch.BackoffUnit)
	assert.Equal(t, int64(32<<20), cfg.Fetch.MaxImageBytes)
	assert.Zero(t, cfg.Export.MaxConcurrent)
	assert.Zero(t, cfg.Export.BatchTimeout)
	assert.False(t, cfg.Export.ArchiveFolder)
	assert.Equal(t, StorageDir, cfg.Storage.Type)
	assert.NotEmpty(t, cfg.Storage.Dir)
	assert.Equal(t, 60*time.Second, cfg.RecipeService.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `config_version: "1.2"
fetch:
  max_attempts: 5
  attempt_timeout: 2s
  allowed_hosts:
    - images.example.com
export:
  max_concurrent: 4
  batch_timeout: 1m
  archive_folder: true
storage:
  type: s3
  s3:
    endpoint: localhost:9000
    bucket: recipes
    prefix: exports
recipe_service:
  base_url: https://api.example.com/functions/v1
hooks:
  post_export: /etc/recipe-gen/post.tengo
log_level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "1.2", cfg.ConfigVersion)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Fetch.AttemptTimeout)
	assert.Equal(t, time.Second, cfg.Fetch.BackoffUnit, "defaults are applied")
	assert.Equal(t, []string{"images.example.com"}, cfg.Fetch.AllowedHosts)
	assert.Equal(t, 4, cfg.Export.MaxConcurrent)
	assert.Equal(t, time.Minute, cfg.Export.BatchTimeout)
	assert.True(t, cfg.Export.ArchiveFolder)
	assert.Equal(t, StorageS3, cfg.Storage.Type)
	assert.Equal(t, "recipes", cfg.Storage.S3.Bucket)
	assert.Equal(t, "https://api.example.com/functions/v1", cfg.RecipeService.BaseURL)
	assert.Equal(t, "/etc/recipe-gen/post.tengo", cfg.Hooks.PostExport)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.OutputFormat)

	policy := cfg.FetchPolicy()
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, int64(32<<20), policy.MaxBytes)
	assert.Equal(t, []string{"images.example.com"}, policy.AllowedHosts)

	opts := cfg.ExportOptions()
	assert.Equal(t, 4, opts.MaxConcurrent)
	assert.True(t, opts.ArchiveFolder)

	obj := cfg.ObjectConfig()
	assert.Equal(t, "localhost:9000", obj.Endpoint)
	assert.Equal(t, "exports", obj.Prefix)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Fetch, cfg.Fetch)
	assert.Equal(t, "from-env", cfg.RecipeService.APIKey)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errutils.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Env(t *testing.T) {
	t.Setenv(EnvS3AccessKey, "AKIA")
	t.Setenv(EnvS3SecretKey, "secret")
	cfg, err := LoadConfigFromReader(strings.NewReader("storage:\n  type: s3\n  s3:\n    endpoint: e\n    bucket: b\n"))
	require.NoError(t, err)
	assert.Equal(t, "AKIA", cfg.Storage.S3.AccessKey)
	assert.Equal(t, "secret", cfg.Storage.S3.SecretKey)
}

func TestLoadConfigFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "malformed yaml", content: "fetch: [", wantErr: errutils.ErrConfigParse},
		{name: "negative attempts", content: "fetch:\n  max_attempts: -1\n", wantErr: errutils.ErrMaxAttemptsInvalid},
		{name: "negative backoff", content: "fetch:\n  backoff_unit: -1s\n", wantErr: errutils.ErrBackoffUnitNegative},
		{name: "negative concurrency", content: "export:\n  max_concurrent: -2\n", wantErr: errutils.ErrMaxConcurrentInvalid},
		{name: "negative batch timeout", content: "export:\n  batch_timeout: -1s\n", wantErr: errutils.ErrBatchTimeoutNegative},
		{name: "unknown storage", content: "storage:\n  type: ftp\n", wantErr: errutils.ErrInvalidStorageType},
		{name: "s3 without bucket", content: "storage:\n  type: s3\n  s3:\n    endpoint: e\n", wantErr: errutils.ErrStorageBucketEmpty},
		{name: "s3 without endpoint", content: "storage:\n  type: s3\n", wantErr: errutils.ErrStorageEndpointEmpty},
		{name: "bad output format", content: "output_format: xml\n", wantErr: errutils.ErrInvalidOutputFormat},
		{name: "bad log level", content: "log_level: loud\n", wantErr: errutils.ErrInvalidLogLevel},
		{name: "future version", content: "config_version: \"2.0\"\n", wantErr: errutils.ErrConfigVersion},
		{name: "garbage version", content: "config_version: banana\n", wantErr: errutils.ErrConfigVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Export.ArchiveFolder = true
	cfg.RecipeService.APIKey = "key"

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(fsutil.FileModeSecure), info.Mode().Perm())
	}

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "attempt_timeout: 5s")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveConfig_EmptyPath(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().SaveConfig(""), errutils.ErrEmptyConfigPath)
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), errutils.ErrConfigValidation)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}

func TestFetchAuthenticator(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.FetchAuthenticator())

	cfg, err := LoadConfigFromReader(strings.NewReader(`
fetch:
  headers:
    X-Api-Key: cdn-key
`))
	require.NoError(t, err)
	a := cfg.FetchAuthenticator()
	require.NotNil(t, a)
	assert.Equal(t, auth.HeaderAuthType, a.Type())
	assert.Equal(t, auth.HeaderAuth{Headers: map[string]string{"X-Api-Key": "cdn-key"}}, a)
}
