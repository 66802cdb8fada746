// Package logger provides a process-wide structured logger shared by every
// package in the module, so each caller doesn't build its own zap config.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once sync.Once
	log  *zap.SugaredLogger
)

// Logger returns the shared sugared logger, building it on first use.
func Logger() *zap.SugaredLogger {
	once.Do(func() {
		z, err := zap.NewProduction()
		if err != nil {
			z = zap.NewNop()
		}
		log = z.Sugar()
	})
	return log
}

// SetLogger overrides the shared logger, for tests and for CLI entry points
// that want a development (console) encoder instead of the production JSON
// one.
func SetLogger(l *zap.SugaredLogger) {
	once.Do(func() {})
	log = l
}
