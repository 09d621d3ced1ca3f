// internal/app/bootstrap/cleanup.go
package bootstrap

import (
	"sync"

	"go.uber.org/zap"
)

var (
	cleanupMu sync.Mutex
	cleanups  []func()
)

// onShutdown registers fn to run from Shutdown. BuildHandler uses it for
// background goroutines it starts (rate limiter and idle-session sweepers).
func onShutdown(fn func()) {
	cleanupMu.Lock()
	cleanups = append(cleanups, fn)
	cleanupMu.Unlock()
}

func runCleanups(logger *zap.Logger) {
	cleanupMu.Lock()
	fns := cleanups
	cleanups = nil
	cleanupMu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
	if len(fns) > 0 {
		logger.Info("background workers stopped", zap.Int("count", len(fns)))
	}
}
