// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/staydesk/internal/app/resources"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(handlerTimeouts(appCfg.APITimeout))
	logger.Info("handler timeouts configured", zap.Any("timeouts", timeouts.Current()))
	return nil
}

// handlerTimeouts stretches every budget that bounds an API call so a slow
// API can still answer inside it. Ping stays short for health checks.
func handlerTimeouts(api time.Duration) timeouts.Config {
	if api <= 0 {
		return timeouts.Config{}
	}
	return timeouts.Config{
		Short:  max(timeouts.DefaultShort, api),
		Medium: max(timeouts.DefaultMedium, api),
		Long:   max(timeouts.DefaultLong, 2*api),
	}
}
