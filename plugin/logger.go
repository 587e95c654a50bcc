package plugin

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the plugin package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the plugin package's logger.
// This must be called before any plugin operations.
func SetLogger(l *zap.Logger) {
	logger = l
}

func zapTags(plugins []Plugin) zap.Field {
	tags := make([]string, len(plugins))
	for i, p := range plugins {
		tags[i] = p.Tag()
	}
	return zap.Strings("tags", tags)
}
