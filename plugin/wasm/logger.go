package wasm

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the wasm package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the wasm package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

func zapExports(exports []Export) zap.Field {
	names := make([]string, len(exports))
	for i, e := range exports {
		names[i] = e.Name
	}
	return zap.Strings("exports", names)
}
