// FILE: lixenwraith/sqllog/compat/emit.go
package compat

import (
	"github.com/lixenwraith/sqllog"
	"github.com/lixenwraith/sqllog/sanitizer"
)

// maxMessageRunes bounds library messages forwarded to diagnostics
const maxMessageRunes = 1024

// messageSanitizer neutralizes control bytes that libraries echo from peers
// (request lines, protocol errors) before they reach diagnostics
var messageSanitizer = sanitizer.New().Policy(sanitizer.PolicyJSON).Policy(sanitizer.PolicyTxt)

// emitAt forwards a library message to d at level, tagged with its source
func emitAt(d sqllog.Diagnostics, level int64, source, msg string, fields ...any) {
	args := make([]any, 0, 3+len(fields))
	args = append(args, messageSanitizer.Preview(msg, maxMessageRunes), "source", source)
	args = append(args, fields...)

	switch {
	case level <= sqllog.LevelDebug:
		d.Debug(args...)
	case level <= sqllog.LevelInfo:
		d.Info(args...)
	case level <= sqllog.LevelWarn:
		d.Warn(args...)
	default:
		d.Error(args...)
	}
}
