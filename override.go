// FILE: override.go
package sqllog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride returns a validated copy of the configuration with string
// key-value overrides applied. Each override should be in the format "key=value".
//
// Example:
//
//	cfg, err := sqllog.DefaultConfig().ApplyOverride(
//	    "directory=/var/log/dbproxy",
//	    "rotate_size=1048576",
//	)
func (c *Config) ApplyOverride(overrides ...string) (*Config, error) {
	cfg := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, combineConfigErrors(errors)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("sqllog: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "sqllog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// File layout
	case "directory":
		cfg.Directory = value
	case "file_prefix":
		cfg.FilePrefix = value

	// Rotation and caching
	case "rotate_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for rotate_size '%s': %w", value, err)
		}
		cfg.RotateSize = intVal
	case "writer_pool_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for writer_pool_size '%s': %w", value, err)
		}
		cfg.WriterPoolSize = intVal

	// Diagnostics
	case "diag_level":
		if _, err := Level(value); err != nil {
			return err
		}
		cfg.DiagLevel = strings.ToLower(value)
	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal
	case "heartbeat_interval_s":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for heartbeat_interval_s '%s': %w", value, err)
		}
		cfg.HeartbeatIntervalS = intVal

	// Ingest daemon
	case "http_listen":
		cfg.HTTPListen = value
	case "tcp_listen":
		cfg.TCPListen = value

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
