package turn

import (
	"fmt"
	"strings"

	"github.com/pion/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a relay debug level name (OFF, FATAL, ERROR, WARN, INFO,
// DEBUG, TRACE, ALL) to a pion log level.
func ParseLevel(name string) (logging.LogLevel, error) {
	switch strings.ToUpper(name) {
	case "", "OFF":
		return logging.LogLevelDisabled, nil
	case "FATAL", "ERROR":
		return logging.LogLevelError, nil
	case "WARN":
		return logging.LogLevelWarn, nil
	case "INFO":
		return logging.LogLevelInfo, nil
	case "DEBUG":
		return logging.LogLevelDebug, nil
	case "TRACE", "ALL":
		return logging.LogLevelTrace, nil
	}
	return logging.LogLevelDisabled, fmt.Errorf("unknown relay debug level %q", name)
}

// LoggerFactory routes pion log output into the global zerolog logger.
type LoggerFactory struct {
	Level logging.LogLevel
}

func (f LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &leveledLogger{
		level: f.Level,
		z:     log.With().Str("module", "turn").Str("scope", scope).Logger(),
	}
}

type leveledLogger struct {
	level logging.LogLevel
	z     zerolog.Logger
}

func (l *leveledLogger) event(level logging.LogLevel) *zerolog.Event {
	if l.level < level {
		return nil
	}
	switch level {
	case logging.LogLevelError:
		return l.z.Error()
	case logging.LogLevelWarn:
		return l.z.Warn()
	case logging.LogLevelInfo:
		return l.z.Info()
	case logging.LogLevelDebug:
		return l.z.Debug()
	default:
		return l.z.Trace()
	}
}

// zerolog events are nil-safe, so a disabled level is a no-op.
func (l *leveledLogger) Trace(msg string) { l.event(logging.LogLevelTrace).Msg(msg) }
func (l *leveledLogger) Tracef(format string, args ...any) {
	l.event(logging.LogLevelTrace).Msgf(format, args...)
}
func (l *leveledLogger) Debug(msg string) { l.event(logging.LogLevelDebug).Msg(msg) }
func (l *leveledLogger) Debugf(format string, args ...any) {
	l.event(logging.LogLevelDebug).Msgf(format, args...)
}
func (l *leveledLogger) Info(msg string) { l.event(logging.LogLevelInfo).Msg(msg) }
func (l *leveledLogger) Infof(format string, args ...any) {
	l.event(logging.LogLevelInfo).Msgf(format, args...)
}
func (l *leveledLogger) Warn(msg string) { l.event(logging.LogLevelWarn).Msg(msg) }
func (l *leveledLogger) Warnf(format string, args ...any) {
	l.event(logging.LogLevelWarn).Msgf(format, args...)
}
func (l *leveledLogger) Error(msg string) { l.event(logging.LogLevelError).Msg(msg) }
func (l *leveledLogger) Errorf(format string, args ...any) {
	l.event(logging.LogLevelError).Msgf(format, args...)
}
