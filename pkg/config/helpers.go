package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// redactedKeys are masked by ToMap.
var redactedKeys = map[string]bool{
	"recipe_service.api_key": true,
	"storage.s3.access_key":  true,
	"storage.s3.secret_key":  true,
}

// SetValue sets a configuration value by dotted key.
// Supported keys:
//   - log_level, output_format: string
//   - fetch.max_attempts: int
//   - fetch.attempt_timeout, fetch.backoff_unit: duration
//   - export.max_concurrent: int
//   - export.batch_timeout: duration
//   - export.archive_folder: bool
//   - storage.type, storage.dir: string
//   - recipe_service.base_url, recipe_service.api_key: string
func (c *Config) SetValue(key, value string) error {
	var err error
	switch key {
	case "log_level":
		c.LogLevel = value
	case "output_format":
		c.OutputFormat = value
	case "fetch.max_attempts":
		c.Fetch.MaxAttempts, err = strconv.Atoi(value)
	case "fetch.attempt_timeout":
		c.Fetch.AttemptTimeout, err = time.ParseDuration(value)
	case "fetch.backoff_unit":
		c.Fetch.BackoffUnit, err = time.ParseDuration(value)
	case "export.max_concurrent":
		c.Export.MaxConcurrent, err = strconv.Atoi(value)
	case "export.batch_timeout":
		c.Export.BatchTimeout, err = time.ParseDuration(value)
	case "export.archive_folder":
		c.Export.ArchiveFolder, err = strconv.ParseBool(value)
	case "storage.type":
		c.Storage.Type = value
	case "storage.dir":
		c.Storage.Dir = value
	case "recipe_service.base_url":
		c.RecipeService.BaseURL = value
	case "recipe_service.api_key":
		c.RecipeService.APIKey = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %s", key, value)
	}
	return nil
}

// GetValue returns the value of a dotted key as a string.
func (c *Config) GetValue(key string) (string, error) {
	values, err := c.flatten()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return v, nil
}

// ToMap flattens the configuration into dotted keys. Secrets are masked.
// This is useful for displaying the configuration.
func (c *Config) ToMap() (map[string]string, error) {
	values, err := c.flatten()
	if err != nil {
		return nil, err
	}
	for key, v := range values {
		if (redactedKeys[key] || strings.HasPrefix(key, "fetch.headers.")) && v != "" {
			values[key] = "********"
		}
	}
	return values, nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) flatten() (map[string]string, error) {
	data, err := c.ToYAML()
	if err != nil {
		return nil, err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	out := make(map[string]string)
	flattenInto(out, "", tree)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(out, key, child)
		}
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(val)
	}
}
