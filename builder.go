// FILE: lixenwraith/sqllog/builder.go
package sqllog

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a Logger for target with the accumulated configuration.
func (b *Builder) Build(target Target) (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(target, b.cfg, b.opts...)
}

// BuildRegistry creates a Registry whose loggers share the accumulated configuration.
func (b *Builder) BuildRegistry() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewRegistry(b.cfg, b.opts...)
}

// Config returns a copy of the accumulated configuration.
func (b *Builder) Config() *Config {
	return b.cfg.Clone()
}

// Directory sets the base log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// FilePrefix sets the leading component of log file names.
func (b *Builder) FilePrefix(prefix string) *Builder {
	b.cfg.FilePrefix = prefix
	return b
}

// RotateSize sets the rotation threshold in bytes.
func (b *Builder) RotateSize(size int64) *Builder {
	b.cfg.RotateSize = size
	return b
}

// RotateSizeMB sets the rotation threshold in MiB. Convenience.
func (b *Builder) RotateSizeMB(size int64) *Builder {
	b.cfg.RotateSize = size * 1024 * 1024
	return b
}

// WriterPoolSize sets how many idle cached writers each logger keeps.
func (b *Builder) WriterPoolSize(size int64) *Builder {
	b.cfg.WriterPoolSize = size
	return b
}

// DiagLevelString sets the default diagnostics level from a string.
func (b *Builder) DiagLevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := Level(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.DiagLevel = level
	return b
}

// InternalErrorsToStderr toggles the default stderr diagnostics sink.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Diagnostics sets an explicit diagnostics sink.
func (b *Builder) Diagnostics(d Diagnostics) *Builder {
	b.opts = append(b.opts, WithDiagnostics(d))
	return b
}

// Metrics sets the Prometheus counters.
func (b *Builder) Metrics(m *Metrics) *Builder {
	b.opts = append(b.opts, WithMetrics(m))
	return b
}

// Example usage:
// logger, err := sqllog.NewBuilder().
//
//	Directory("/var/log/dbproxy/sql").
//	RotateSizeMB(256).
//	DiagLevelString("warn").
//	Build(sqllog.Target{Alias: "shard01"})
//
// if err == nil {
//
//	 defer logger.Close()
//	 logger.WriteString("SELECT 1;\n")
//
// }
