package sqllog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Diagnostics receives structured records about rotation, write failures and
// rotation races. Arguments are a message followed by alternating key/value pairs.
type Diagnostics interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// zerologDiagnostics adapts a zerolog.Logger to Diagnostics
type zerologDiagnostics struct {
	log zerolog.Logger
}

// NewDiagnostics wraps a zerolog logger
func NewDiagnostics(zl zerolog.Logger) Diagnostics {
	return &zerologDiagnostics{log: zl}
}

// NewWriterDiagnostics emits JSON diagnostics to w at or above the given level
func NewWriterDiagnostics(w io.Writer, level int64) Diagnostics {
	zl := zerolog.New(w).
		Level(zerologLevel(level)).
		With().
		Timestamp().
		Str("component", "sqllog").
		Logger()
	return NewDiagnostics(zl)
}

// NopDiagnostics discards every record
func NopDiagnostics() Diagnostics {
	return NewDiagnostics(zerolog.Nop())
}

// defaultDiagnostics builds the diagnostics sink implied by a configuration
func defaultDiagnostics(cfg *Config) Diagnostics {
	if !cfg.InternalErrorsToStderr {
		return NopDiagnostics()
	}
	level, err := Level(cfg.DiagLevel)
	if err != nil {
		level = LevelInfo
	}
	return NewWriterDiagnostics(os.Stderr, level)
}

func (d *zerologDiagnostics) Debug(args ...any) { emit(d.log.Debug(), args) }
func (d *zerologDiagnostics) Info(args ...any)  { emit(d.log.Info(), args) }
func (d *zerologDiagnostics) Warn(args ...any)  { emit(d.log.Warn(), args) }
func (d *zerologDiagnostics) Error(args ...any) { emit(d.log.Error(), args) }

// emit converts message plus key/value arguments into zerolog fields
func emit(ev *zerolog.Event, args []any) {
	if ev == nil {
		return // Level disabled
	}

	msg := ""
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			msg = s
			args = args[1:]
		}
	}

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = appendField(ev, key, args[i+1])
	}
	if len(args)%2 == 1 {
		ev = appendField(ev, "extra", args[len(args)-1])
	}

	ev.Msg(msg)
}

// appendField adds one typed field, delegating unknown types to spew
func appendField(ev *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return ev.Str(key, v)
	case error:
		return ev.AnErr(key, v)
	case bool:
		return ev.Bool(key, v)
	case int:
		return ev.Int(key, v)
	case int64:
		return ev.Int64(key, v)
	case uint64:
		return ev.Uint64(key, v)
	case time.Duration:
		return ev.Dur(key, v)
	case nil:
		return ev.Str(key, "nil")
	case fmt.Stringer:
		return ev.Stringer(key, v)
	default:
		return ev.Str(key, identityDumper.Sprintf("%v", v))
	}
}

// zerologLevel maps numeric diagnostic levels onto zerolog levels
func zerologLevel(level int64) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
