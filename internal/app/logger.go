package app

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger for the configured level. debug forces the
// debug level regardless of the configuration.
func CreateLogger(level string, debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug || level == "debug":
		cfg.Level = log.DebugLevel
	case level == "warn":
		cfg.Level = log.WarnLevel
	case level == "error":
		cfg.Level = log.ErrorLevel
	default:
		cfg.Level = log.InfoLevel
	}
	return log.NewWithConfig(cfg)
}
