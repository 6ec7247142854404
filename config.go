// FILE: config.go
package sqllog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all sqllog configuration values
type Config struct {
	// File layout
	Directory  string `toml:"directory"`   // Base directory, one subdirectory per target
	FilePrefix string `toml:"file_prefix"` // Leading component of every log file name

	// Rotation and caching
	RotateSize     int64 `toml:"rotate_size"`      // Bytes since rotation that trigger a new file (0=never)
	WriterPoolSize int64 `toml:"writer_pool_size"` // Idle cached writers kept per logger

	// Diagnostics
	DiagLevel              string `toml:"diag_level"`                // debug, info, warn, error
	InternalErrorsToStderr bool   `toml:"internal_errors_to_stderr"` // Default diagnostics go to stderr
	HeartbeatIntervalS     int64  `toml:"heartbeat_interval_s"`      // Registry stats heartbeat (0=disabled)

	// Ingest daemon
	HTTPListen string `toml:"http_listen"`
	TCPListen  string `toml:"tcp_listen"` // Empty disables TCP ingest
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Directory:  "./sql_log",
	FilePrefix: "sql",

	RotateSize:     100 * 1024 * 1024,
	WriterPoolSize: 64,

	DiagLevel:              "info",
	InternalErrorsToStderr: true,
	HeartbeatIntervalS:     0,

	HTTPListen: ":8080",
	TCPListen:  "",
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("sqllog.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "sqllog.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		tomlTag := t.Field(i).Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty")
	}

	if strings.TrimSpace(c.FilePrefix) == "" {
		return fmtErrorf("file_prefix cannot be empty")
	}
	if strings.ContainsAny(c.FilePrefix, `/\`) {
		return fmtErrorf("file_prefix cannot contain path separators: %s", c.FilePrefix)
	}

	if c.RotateSize < 0 {
		return fmtErrorf("rotate_size cannot be negative: %d", c.RotateSize)
	}

	if c.WriterPoolSize < 0 {
		return fmtErrorf("writer_pool_size cannot be negative: %d", c.WriterPoolSize)
	}

	if _, err := Level(c.DiagLevel); err != nil {
		return err
	}

	if c.HeartbeatIntervalS < 0 {
		return fmtErrorf("heartbeat_interval_s cannot be negative: %d", c.HeartbeatIntervalS)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
