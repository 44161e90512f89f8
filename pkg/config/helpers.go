package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Keys lists the settings addressable through GetValue and SetValue.
func Keys() []string {
	keys := []string{"registry_url"}
	settingsType := reflect.TypeOf(Settings{})
	for i := 0; i < settingsType.NumField(); i++ {
		if key := yamlKey(settingsType.Field(i)); key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a configuration value by key. The result is not validated;
// call Validate before saving.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "registry_url":
		c.Registry.URL = value
	case "cache_dir":
		c.Settings.CacheDir = expandHome(value)
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "user_agent":
		c.Settings.UserAgent = value
	case "log_level":
		c.Settings.LogLevel = strings.ToLower(value)
	case "log_format":
		c.Settings.LogFormat = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// ToMap flattens the configuration into key/value strings for display.
func (c *Config) ToMap() map[string]string {
	result := map[string]string{"registry_url": c.Registry.URL}

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()
	for i := 0; i < settingsValue.NumField(); i++ {
		key := yamlKey(settingsType.Field(i))
		if key == "" {
			continue
		}
		result[key] = fmt.Sprint(settingsValue.Field(i).Interface())
	}
	return result
}

// yamlKey handles tags with options, e.g. "cache_dir,omitempty".
func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}
