package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// ConfigureLogging initialises the worker's global logger. An empty or
// unrecognised level falls back to info so a bare config still boots with
// usable output.
func ConfigureLogging(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}

	if err := logger.Init(level); err != nil {
		return err
	}

	logger.Debug("logging configured", zap.String("level", level))
	return nil
}
