package wlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	mu         sync.RWMutex
)

// Logger returns the package-level logger. It defaults to a no-op logger
// until SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		mu.Lock()
		if logger == nil {
			logger = zap.NewNop()
		}
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger installs l as the package-level logger. Passing nil restores
// the no-op default.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

// Sugar returns the package-level logger's sugared form, for the
// printf-style call sites used throughout the instrumentation pass.
func Sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

// Debugf logs a per-instruction trace message.
func Debugf(format string, args ...any) {
	Sugar().Debugf(format, args...)
}

// Infof logs a pass-level milestone (hook counts, module byte sizes).
func Infof(format string, args ...any) {
	Sugar().Infof(format, args...)
}

// Warnf logs a recoverable anomaly that does not abort the pass.
func Warnf(format string, args ...any) {
	Sugar().Warnf(format, args...)
}
