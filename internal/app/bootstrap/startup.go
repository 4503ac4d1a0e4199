// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/pactomapa/internal/app/system/timeouts"
	"github.com/dalemusser/pactomapa/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the back ends are built and
// before the HTTP handler exists: page chrome, the first data load, and
// the background refresher.
//
// A failed first load is logged, not returned. The map then shows every
// municipality as not participating until the refresher gets through.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	viewdata.Init(appCfg.SiteName)

	loadCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "first refresh")
	err := deps.State.Refresh(loadCtx)
	cancel()
	if err != nil {
		logger.Warn("first refresh failed; serving empty map until the next refresh", zap.Error(err))
	} else {
		st := deps.State.Status()
		logger.Info("first refresh done",
			zap.Int("municipalities", st.Municipalities),
			zap.Int("participating", st.Participating))
	}

	if deps.Refresher != nil {
		deps.Refresher.Start()
	}
	return nil
}
