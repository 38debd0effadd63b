package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog levels so callers don't import zerolog directly.
type Level int8

const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// SetLevel adjusts the global log level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Level(zerolog.Level(l))
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = zerolog.New(w).With().Timestamp().Logger().Level(root.GetLevel())
}

func emit(level zerolog.Level, component, msg string, fields map[string]any) {
	mu.RLock()
	l := root
	mu.RUnlock()
	ev := l.WithLevel(level).Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// DebugC logs a debug message scoped to a component.
func DebugC(component, msg string) { emit(zerolog.DebugLevel, component, msg, nil) }

// DebugCF logs a debug message with structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	emit(zerolog.DebugLevel, component, msg, fields)
}

// InfoC logs an info message scoped to a component.
func InfoC(component, msg string) { emit(zerolog.InfoLevel, component, msg, nil) }

// InfoCF logs an info message with structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	emit(zerolog.InfoLevel, component, msg, fields)
}

// WarnC logs a warning scoped to a component.
func WarnC(component, msg string) { emit(zerolog.WarnLevel, component, msg, nil) }

// WarnCF logs a warning with structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	emit(zerolog.WarnLevel, component, msg, fields)
}

// ErrorC logs an error scoped to a component.
func ErrorC(component, msg string) { emit(zerolog.ErrorLevel, component, msg, nil) }

// ErrorCF logs an error with structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	emit(zerolog.ErrorLevel, component, msg, fields)
}
