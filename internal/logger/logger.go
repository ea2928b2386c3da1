package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Init initializes the global logger. DEBUG=true enables debug level logging.
// Calling it more than once has no effect.
func Init() {
	InitWith(os.Stdout)
}

// InitWith is the same as Init, but writes the records into w.
func InitWith(w io.Writer) {
	once.Do(func() {
		level := slog.LevelInfo
		if os.Getenv("DEBUG") == "true" {
			level = slog.LevelDebug
		}

		handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
		defaultLogger = slog.New(handler)
	})
}

func get() *slog.Logger {
	Init()
	return defaultLogger
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// With returns a new logger with the given attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
