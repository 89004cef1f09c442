// Package logger provides structured logging using Zap.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// ServiceName is attached to every production log line.
const ServiceName = "fittrack"

var (
	sugar *zap.SugaredLogger
	once  sync.Once
	mu    sync.RWMutex
)

// Init initializes the global logger for the given environment.
// "production" emits JSON tagged with the service name, "test" discards
// everything, and all other environments use a human-readable console
// encoder. LOG_LEVEL overrides the default level when it parses.
func Init(env string) {
	once.Do(func() {
		base, err := build(env, os.Getenv("LOG_LEVEL"))
		if err != nil {
			// Fallback to nop logger if initialization fails.
			base = zap.NewNop()
		}
		Set(base.Sugar())
	})
}

func build(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "test":
		return zap.NewNop(), nil
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.InitialFields = map[string]interface{}{"service": ServiceName}
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			cfg.Level = lvl
		}
	}
	return cfg.Build()
}

// Set replaces the global logger. Tests use it to capture output.
func Set(l *zap.SugaredLogger) {
	mu.Lock()
	sugar = l
	mu.Unlock()
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = sugar
		mu.RUnlock()
	}
	return l
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if l := Get(); l != nil {
		_ = l.Sync()
	}
}
