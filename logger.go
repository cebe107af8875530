package sftp

import (
	"github.com/sirupsen/logrus"
)

// Level is a logging verbosity level.
type Level int

// Log levels, least verbose first.
const (
	LevelFatal Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger is the leveled diagnostic sink consumed by the protocol
// engine. A no-op implementation is substitutable with zero behavioral
// change; the engine only ever writes to it, and consults Level to skip
// building expensive trace records.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Level() Level
}

type nopLogger struct{}

func (nopLogger) Tracef(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Level() Level                  { return LevelFatal }

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger adapts a logrus.Logger to the Logger interface.
// The logrus level controls what the engine emits.
func NewLogrusLogger(l *logrus.Logger) Logger {
	return &logrusLogger{l: l}
}

func (a *logrusLogger) Tracef(format string, args ...interface{}) { a.l.Tracef(format, args...) }
func (a *logrusLogger) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }
func (a *logrusLogger) Infof(format string, args ...interface{})  { a.l.Infof(format, args...) }
func (a *logrusLogger) Warnf(format string, args ...interface{})  { a.l.Warnf(format, args...) }
func (a *logrusLogger) Errorf(format string, args ...interface{}) { a.l.Errorf(format, args...) }

func (a *logrusLogger) Level() Level {
	switch a.l.GetLevel() {
	case logrus.TraceLevel:
		return LevelTrace
	case logrus.DebugLevel:
		return LevelDebug
	case logrus.InfoLevel:
		return LevelInfo
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.ErrorLevel:
		return LevelError
	default:
		return LevelFatal
	}
}
