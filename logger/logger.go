// Package logger configures the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger builds a development logger at the given level and installs it
// as the global zap logger. Unknown levels fall back to info.
func InitLogger(logLevel string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = ParseLevel(logLevel)

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("build logger: %w", err))
	}

	zap.ReplaceGlobals(lgr)
}

// ParseLevel maps a level name onto a zap level
func ParseLevel(logLevel string) zap.AtomicLevel {
	switch logLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
