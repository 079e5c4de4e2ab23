// Package config provides configuration management for recipe-gen.
// It handles loading, validating and saving the YAML configuration file and
// converts settings into the options used by the fetcher, exporter and save
// targets. Secrets may be supplied through environment variables instead of
// the file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rokon-556/recipe-gen/pkg/auth"
	"github.com/Rokon-556/recipe-gen/pkg/download"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/export"
	"github.com/Rokon-556/recipe-gen/pkg/fsutil"
	"github.com/Rokon-556/recipe-gen/pkg/save"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	ConfigVersion string `yaml:"config_version"`

	Fetch         FetchConfig         `yaml:"fetch"`
	Export        ExportConfig        `yaml:"export"`
	Storage       StorageConfig       `yaml:"storage"`
	RecipeService RecipeServiceConfig `yaml:"recipe_service"`
	Hooks         HooksConfig         `yaml:"hooks,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // auto, text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// FetchConfig controls how remote images are downloaded.
type FetchConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	BackoffUnit    time.Duration `yaml:"backoff_unit"`
	MaxImageBytes  int64         `yaml:"max_image_bytes"`
	UserAgent      string        `yaml:"user_agent,omitempty"`
	AllowedHosts   []string      `yaml:"allowed_hosts,omitempty"`

	// Headers are sent with every image request, for hosts behind an API key.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ExportConfig controls batch exports.
type ExportConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	BatchTimeout  time.Duration `yaml:"batch_timeout"`
	ArchiveFolder bool          `yaml:"archive_folder"`
}

// StorageConfig selects where exports are saved.
type StorageConfig struct {
	Type string   `yaml:"type"` // dir, s3
	Dir  string   `yaml:"dir,omitempty"`
	S3   S3Config `yaml:"s3,omitempty"`
}

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// RecipeServiceConfig points at the recipe-content generation service.
type RecipeServiceConfig struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	APIKey  string        `yaml:"api_key,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// HooksConfig lists optional Tengo scripts run around batch exports.
type HooksConfig struct {
	PreExport  string `yaml:"pre_export,omitempty"`
	PostExport string `yaml:"post_export,omitempty"`
}

// Storage types.
const (
	StorageDir = "dir"
	StorageS3  = "s3"
)

// Environment variables that override secrets from the file.
const (
	EnvAPIKey      = "RECIPE_GEN_API_KEY"
	EnvS3AccessKey = "RECIPE_GEN_S3_ACCESS_KEY"
	EnvS3SecretKey = "RECIPE_GEN_S3_SECRET_KEY"
)

// Default configuration values.
const (
	// CurrentConfigVersion is written into new configuration files.
	CurrentConfigVersion = "1.0"

	// SupportedConfigVersions is the range of config_version values this build reads.
	SupportedConfigVersions = ">= 1.0, < 2.0"

	// DefaultRecipeServiceTimeout bounds one call to the recipe service.
	DefaultRecipeServiceTimeout = 60 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	exportDir, err := fsutil.GetExportDir()
	if err != nil {
		exportDir = "exports"
	}

	return &Config{
		ConfigVersion: CurrentConfigVersion,
		Fetch: FetchConfig{
			MaxAttempts:    download.DefaultMaxAttempts,
			AttemptTimeout: download.DefaultAttemptTimeout,
			BackoffUnit:    download.DefaultBackoffUnit,
			MaxImageBytes:  download.DefaultMaxBytes,
			UserAgent:      download.DefaultUserAgent,
		},
		Storage: StorageConfig{
			Type: StorageDir,
			Dir:  exportDir,
			S3:   S3Config{UseSSL: true},
		},
		RecipeService: RecipeServiceConfig{
			Timeout: DefaultRecipeServiceTimeout,
		},
		OutputFormat: "auto",
		LogLevel:     "info",
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errutils.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, errutils.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errutils.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration atomically. The file may hold secrets,
// so it is readable by the owner only.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errutils.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errutils.Wrap(errutils.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errutils.Wrap(errutils.ErrConfigDirectory, err.Error())
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return errutils.Wrap(errutils.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()

	if err := fsutil.WriteFileAtomic(absPath, buf.Bytes(), fsutil.FileModeSecure); err != nil {
		return errutils.Wrap(errutils.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errutils.Wrap(errutils.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errutils.ErrConfigValidation
	}
	if err := validateVersion(c.ConfigVersion); err != nil {
		return err
	}
	if err := validateFetch(c.Fetch); err != nil {
		return err
	}
	if err := validateExport(c.Export); err != nil {
		return err
	}
	if err := validateStorage(c.Storage); err != nil {
		return err
	}
	return validateOutput(c.OutputFormat, c.LogLevel)
}

func validateVersion(v string) error {
	got, err := version.NewVersion(v)
	if err != nil {
		return errutils.ErrConfigVersionWithDetails(v, SupportedConfigVersions)
	}
	constraints, err := version.NewConstraint(SupportedConfigVersions)
	if err != nil {
		return err
	}
	if !constraints.Check(got) {
		return errutils.ErrConfigVersionWithDetails(v, SupportedConfigVersions)
	}
	return nil
}

func validateFetch(f FetchConfig) error {
	if f.MaxAttempts < 1 {
		return errutils.ErrMaxAttemptsInvalid
	}
	if f.AttemptTimeout <= 0 {
		return errutils.ErrAttemptTimeoutInvalid
	}
	if f.BackoffUnit < 0 {
		return errutils.ErrBackoffUnitNegative
	}
	if f.MaxImageBytes <= 0 {
		return errutils.ErrMaxImageBytesInvalid
	}
	return nil
}

func validateExport(e ExportConfig) error {
	if e.MaxConcurrent < 0 {
		return errutils.ErrMaxConcurrentInvalid
	}
	if e.BatchTimeout < 0 {
		return errutils.ErrBatchTimeoutNegative
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Type {
	case StorageDir:
		return nil
	case StorageS3:
		if s.S3.Endpoint == "" {
			return errutils.ErrStorageEndpointEmpty
		}
		if s.S3.Bucket == "" {
			return errutils.ErrStorageBucketEmpty
		}
		return nil
	default:
		return errutils.ErrInvalidStorageTypeWithDetails(s.Type)
	}
}

func validateOutput(format, level string) error {
	validFormats := map[string]bool{"auto": true, "text": true, "json": true}
	if !validFormats[format] {
		return errutils.ErrInvalidOutputFormatWithDetails(format)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(level)] {
		return errutils.ErrInvalidLogLevelWithDetails(level)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults. A zero max_concurrent or
// batch_timeout means "no limit" and is kept.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.ConfigVersion == "" {
		c.ConfigVersion = defaults.ConfigVersion
	}
	if c.Fetch.MaxAttempts == 0 {
		c.Fetch.MaxAttempts = defaults.Fetch.MaxAttempts
	}
	if c.Fetch.AttemptTimeout == 0 {
		c.Fetch.AttemptTimeout = defaults.Fetch.AttemptTimeout
	}
	if c.Fetch.BackoffUnit == 0 {
		c.Fetch.BackoffUnit = defaults.Fetch.BackoffUnit
	}
	if c.Fetch.MaxImageBytes == 0 {
		c.Fetch.MaxImageBytes = defaults.Fetch.MaxImageBytes
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaults.Fetch.UserAgent
	}
	if c.Storage.Type == "" {
		c.Storage.Type = defaults.Storage.Type
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaults.Storage.Dir
	}
	if c.RecipeService.Timeout == 0 {
		c.RecipeService.Timeout = defaults.RecipeService.Timeout
	}
	if c.OutputFormat == "" {
		c.OutputFormat = defaults.OutputFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.RecipeService.APIKey = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.Storage.S3.AccessKey = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.Storage.S3.SecretKey = v
	}
}

// FetchPolicy converts the fetch settings into a download policy.
func (c *Config) FetchPolicy() download.Policy {
	return download.Policy{
		MaxAttempts:    c.Fetch.MaxAttempts,
		AttemptTimeout: c.Fetch.AttemptTimeout,
		BackoffUnit:    c.Fetch.BackoffUnit,
		MaxBytes:       c.Fetch.MaxImageBytes,
		AllowedHosts:   c.Fetch.AllowedHosts,
	}
}

// FetchAuthenticator returns the credentials applied to image requests, or nil
// when no headers are configured.
func (c *Config) FetchAuthenticator() auth.Authenticator {
	if len(c.Fetch.Headers) == 0 {
		return nil
	}
	return auth.HeaderAuth{Headers: c.Fetch.Headers}
}

// ExportOptions converts the export settings into exporter options.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		MaxConcurrent: c.Export.MaxConcurrent,
		BatchTimeout:  c.Export.BatchTimeout,
		ArchiveFolder: c.Export.ArchiveFolder,
	}
}

// ObjectConfig converts the S3 settings into a save target configuration.
func (c *Config) ObjectConfig() save.ObjectConfig {
	return save.ObjectConfig{
		Endpoint:  c.Storage.S3.Endpoint,
		AccessKey: c.Storage.S3.AccessKey,
		SecretKey: c.Storage.S3.SecretKey,
		Bucket:    c.Storage.S3.Bucket,
		Region:    c.Storage.S3.Region,
		UseSSL:    c.Storage.S3.UseSSL,
		Prefix:    c.Storage.S3.Prefix,
	}
}
