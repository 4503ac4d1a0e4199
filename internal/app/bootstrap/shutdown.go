// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background refresher. An in-flight refresh is
// cancelled; the HTTP server has already drained by the time this runs.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Refresher != nil {
		logger.Info("stopping panorama refresher")
		deps.Refresher.Stop()
	}
	if deps.Engine != nil {
		deps.Engine.Stop()
	}
	return nil
}
