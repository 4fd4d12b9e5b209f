package aru

import "github.com/joeycumines/logiface"

// NewLogifaceLogger adapts a [logiface.Logger] as an aru [Logger], so
// structured-logging users can pass a Coordinator's diagnostics straight
// through their existing logiface pipeline (zerolog, slog, stumpy, or any
// other logiface backend) instead of aru's own plain-text writer.
func NewLogifaceLogger(l *logiface.Logger[logiface.Event]) Logger {
	return &logifaceLogger{l: l}
}

type logifaceLogger struct {
	l *logiface.Logger[logiface.Event]
}

func (a *logifaceLogger) Log(level LogLevel, category, message string) {
	var b *logiface.Builder[logiface.Event]
	switch level {
	case LevelDebug:
		b = a.l.Debug()
	case LevelWarn:
		b = a.l.Warning()
	case LevelError:
		b = a.l.Err()
	default:
		b = a.l.Notice()
	}
	b.Str("category", category).Log(message)
}
