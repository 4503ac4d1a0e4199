// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/store/staticdata"
	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/app/system/tasks"
	"github.com/dalemusser/pactomapa/internal/app/system/timeouts"
	"github.com/dalemusser/pactomapa/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB builds the back ends: the program API client, the static
// fallback source, and the municipality shapes. Only the shapes are
// required; an unreachable API is tolerated and retried by the refresher.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	client := upstream.New(appCfg.APIBaseURL, logger.Named("upstream"))
	static := staticdata.New(appCfg.FallbackDir)
	if static.Configured() {
		logger.Info("static fallback enabled", zap.String("dir", appCfg.FallbackDir))
	}

	loadCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "load geojson")
	defer cancel()
	ov, err := overlay.Load(loadCtx, appCfg.GeoJSONPath, appCfg.GeoJSONURL, &http.Client{}, logger)
	if err != nil {
		logger.Error("geojson load failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("load municipality shapes: %w", err)
	}
	logger.Info("municipality shapes loaded", zap.Int("shapes", ov.Len()))

	reg := registry.New()
	engine := coloring.New(reg, logger.Named("coloring"), coloring.WithDelay(appCfg.RecolorDelay))
	state := panorama.New(panorama.Deps{
		API:      client,
		Static:   static,
		Registry: reg,
		Engine:   engine,
		Overlay:  ov,
		Logger:   logger.Named("panorama"),
	})

	deps := DBDeps{
		Client:   client,
		Static:   static,
		Overlay:  ov,
		Registry: reg,
		Engine:   engine,
		State:    state,
	}
	if appCfg.RefreshInterval > 0 {
		job := tasks.RefreshJob(state, logger, appCfg.RefreshInterval)
		deps.Refresher = workers.NewRunner(job, logger, timeouts.Long())
	}
	return deps, nil
}

// EnsureSchema checks that the shapes can be colored. There is no schema
// to migrate; a shapes file without a single usable municipality id would
// leave every municipality permanently gray.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Overlay == nil || deps.Overlay.Len() == 0 {
		return fmt.Errorf("municipality shapes are empty")
	}
	usable := 0
	deps.Overlay.Each(func(s *overlay.Shape) {
		if s.ID() != "" {
			usable++
		}
	})
	if usable == 0 {
		return fmt.Errorf("no municipality shape carries a usable id")
	}
	logger.Debug("municipality shapes checked", zap.Int("usable", usable), zap.Int("total", deps.Overlay.Len()))
	return nil
}
