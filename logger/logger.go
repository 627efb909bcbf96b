package logger

import (
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface used across the bot. Kept as an
// interface so tests can swap in a recording implementation.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields carries structured log fields such as request_id and scraper.
type Fields map[string]any

// Log is the process-wide logger. It works at info level until Init is
// called with the configured level.
var Log Logger = New("info")

// Init replaces the global logger with one at the given level. Unknown or
// empty levels fall back to info.
func Init(level string) {
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	Log = New(level)
}

// New builds a gookit/slog console logger emitting every level up to and
// including the named one.
func New(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	h.SetFormatter(slog.NewTextFormatter())

	return slog.NewWithHandlers(h)
}

// InfoWithFields logs msg with structured top-level fields.
func InfoWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	Log.Info(msg)
}

// ErrorWithFields logs msg at error level with structured top-level fields.
func ErrorWithFields(msg string, fields Fields) {
	if lg, ok := Log.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	Log.Error(msg)
}
