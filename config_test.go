// FILE: lixenwraith/sqllog/config_test.go
package sqllog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "./sql_log", cfg.Directory)
	assert.Equal(t, "sql", cfg.FilePrefix)
	assert.Equal(t, int64(100*1024*1024), cfg.RotateSize)
	assert.Equal(t, int64(64), cfg.WriterPoolSize)
	assert.Equal(t, "info", cfg.DiagLevel)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.Zero(t, cfg.HeartbeatIntervalS)
	assert.Equal(t, ":8080", cfg.HTTPListen)
	assert.Empty(t, cfg.TCPListen)

	// Callers get independent copies
	cfg.Directory = "/changed"
	assert.Equal(t, "./sql_log", DefaultConfig().Directory)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.RotateSize = 42
	cfg1.Directory = "/custom/path"

	cfg2 := cfg1.Clone()
	assert.Equal(t, cfg1.RotateSize, cfg2.RotateSize)
	assert.Equal(t, cfg1.Directory, cfg2.Directory)

	cfg1.RotateSize = 7
	assert.Equal(t, int64(42), cfg2.RotateSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "zero rotate size disables rotation",
			modify:    func(c *Config) { c.RotateSize = 0 },
			wantError: "",
		},
		{
			name:      "empty directory",
			modify:    func(c *Config) { c.Directory = " " },
			wantError: "directory cannot be empty",
		},
		{
			name:      "empty prefix",
			modify:    func(c *Config) { c.FilePrefix = "" },
			wantError: "file_prefix cannot be empty",
		},
		{
			name:      "prefix with separator",
			modify:    func(c *Config) { c.FilePrefix = "a/b" },
			wantError: "file_prefix cannot contain path separators",
		},
		{
			name:      "negative rotate size",
			modify:    func(c *Config) { c.RotateSize = -1 },
			wantError: "rotate_size cannot be negative",
		},
		{
			name:      "negative pool size",
			modify:    func(c *Config) { c.WriterPoolSize = -1 },
			wantError: "writer_pool_size cannot be negative",
		},
		{
			name:      "invalid diag level",
			modify:    func(c *Config) { c.DiagLevel = "loud" },
			wantError: "invalid level string",
		},
		{
			name:      "negative heartbeat",
			modify:    func(c *Config) { c.HeartbeatIntervalS = -5 },
			wantError: "heartbeat_interval_s cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"directory":   "/var/log/sql",
		"rotate_size": 2048,
		"diag_level":  "warn",
	})
	require.NoError(t, err)
	assert.Equal(t, "/var/log/sql", cfg.Directory)
	assert.Equal(t, int64(2048), cfg.RotateSize)
	assert.Equal(t, "warn", cfg.DiagLevel)

	_, err = NewConfigFromDefaults(map[string]any{"no_such_key": 1})
	assert.ErrorContains(t, err, "unknown config key")

	_, err = NewConfigFromDefaults(map[string]any{"rotate_size": "big"})
	assert.ErrorContains(t, err, "expected int64")

	_, err = NewConfigFromDefaults(map[string]any{"rotate_size": int64(-1)})
	assert.ErrorContains(t, err, "rotate_size cannot be negative")
}

func TestNewConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sqllog.toml")
	content := `
[sqllog]
directory = "/data/sql_log"
file_prefix = "query"
rotate_size = 4096
internal_errors_to_stderr = false
tcp_listen = ":9099"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/sql_log", cfg.Directory)
	assert.Equal(t, "query", cfg.FilePrefix)
	assert.Equal(t, int64(4096), cfg.RotateSize)
	assert.False(t, cfg.InternalErrorsToStderr)
	assert.Equal(t, ":9099", cfg.TCPListen)

	// Unset keys keep defaults
	assert.Equal(t, int64(64), cfg.WriterPoolSize)
	assert.Equal(t, ":8080", cfg.HTTPListen)
}

func TestNewConfigFromFileMissing(t *testing.T) {
	cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyOverride(t *testing.T) {
	base := DefaultConfig()

	cfg, err := base.ApplyOverride(
		"directory=/tmp/sql",
		"rotate_size = 1048576",
		"writer_pool_size=8",
		"diag_level=DEBUG",
		"internal_errors_to_stderr=false",
		"heartbeat_interval_s=30",
		"tcp_listen=:7000",
	)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sql", cfg.Directory)
	assert.Equal(t, int64(1048576), cfg.RotateSize)
	assert.Equal(t, int64(8), cfg.WriterPoolSize)
	assert.Equal(t, "debug", cfg.DiagLevel)
	assert.False(t, cfg.InternalErrorsToStderr)
	assert.Equal(t, int64(30), cfg.HeartbeatIntervalS)
	assert.Equal(t, ":7000", cfg.TCPListen)

	// Receiver untouched
	assert.Equal(t, "./sql_log", base.Directory)
}

func TestApplyOverrideErrors(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		_, err := DefaultConfig().ApplyOverride("rotate_size=abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid integer value for rotate_size")
	})

	t.Run("multiple errors combined", func(t *testing.T) {
		_, err := DefaultConfig().ApplyOverride("bogus=1", "noequals", "internal_errors_to_stderr=maybe")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple configuration errors")
		assert.Contains(t, err.Error(), "unknown configuration key 'bogus'")
		assert.Contains(t, err.Error(), "expected key=value")
		assert.Contains(t, err.Error(), "invalid boolean value")
	})

	t.Run("validation after apply", func(t *testing.T) {
		_, err := DefaultConfig().ApplyOverride("rotate_size=-10")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rotate_size cannot be negative")
	})
}
