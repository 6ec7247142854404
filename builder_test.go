// FILE: lixenwraith/sqllog/builder_test.go
package sqllog

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("successful build returns configured logger", func(t *testing.T) {
		tmpDir := t.TempDir()

		logger, err := NewBuilder().
			Directory(tmpDir).
			FilePrefix("q").
			RotateSizeMB(2).
			WriterPoolSize(4).
			DiagLevelString("debug").
			InternalErrorsToStderr(false).
			Build(Target{Alias: "shard01"})
		if logger != nil {
			defer logger.Close()
		}

		require.NoError(t, err)
		require.NotNil(t, logger)

		cfg := logger.GetConfig()
		assert.Equal(t, tmpDir, cfg.Directory)
		assert.Equal(t, "q", cfg.FilePrefix)
		assert.Equal(t, int64(2*1024*1024), cfg.RotateSize)
		assert.Equal(t, int64(4), cfg.WriterPoolSize)
		assert.Equal(t, "debug", cfg.DiagLevel)
		assert.Equal(t, "shard01", logger.Target().Alias)
	})

	t.Run("builder error accumulation", func(t *testing.T) {
		logger, err := NewBuilder().
			DiagLevelString("invalid-level-string").
			Directory("/some/dir").
			Build(Target{Alias: "a"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid level string")
		assert.Nil(t, logger)
	})

	t.Run("invalid target", func(t *testing.T) {
		logger, err := NewBuilder().Directory(t.TempDir()).Build(Target{})
		assert.ErrorIs(t, err, ErrEmptyTarget)
		assert.Nil(t, logger)
	})

	t.Run("validation error", func(t *testing.T) {
		logger, err := NewBuilder().RotateSize(-1).Build(Target{Alias: "a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Nil(t, logger)
	})
}

func TestBuilder_BuildRegistry(t *testing.T) {
	rec := &recordingDiagnostics{}
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	b := NewBuilder().
		Directory(t.TempDir()).
		RotateSize(1).
		Diagnostics(rec).
		Metrics(metrics)

	registry, err := b.BuildRegistry()
	require.NoError(t, err)
	defer registry.Close()

	require.NoError(t, registry.Write(Target{Alias: "a"}, "SELECT 1;\n"))

	assert.NotEmpty(t, rec.messages("sql log rotated"))
	assert.Equal(t, int64(1), b.Config().RotateSize)
}
