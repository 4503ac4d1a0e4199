// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	detailfeature "github.com/dalemusser/pactomapa/internal/app/features/detail"
	errorsfeature "github.com/dalemusser/pactomapa/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/pactomapa/internal/app/features/events"
	healthfeature "github.com/dalemusser/pactomapa/internal/app/features/health"
	mapviewfeature "github.com/dalemusser/pactomapa/internal/app/features/mapview"
	missionsfeature "github.com/dalemusser/pactomapa/internal/app/features/missions"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, back-end setup, and Startup have
// completed. The dashboard page is served at "/", its map data under
// /mapa, the detail panel under /municipios, the mission panorama under
// /missoes and the events feed under /eventos.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators.
	// Registered before CSRF so probes never need a token cookie.
	healthHandler := healthfeature.NewHandler(deps.Client, deps.State, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware(coreCfg, appCfg, logger)...)

		mapHandler := mapviewfeature.NewHandler(deps.State, errLog, logger)
		r.Mount("/", mapviewfeature.Routes(mapHandler))

		detailHandler := detailfeature.NewHandler(deps.State, appCfg.JoinURL, errLog, logger)
		r.Mount("/municipios", detailfeature.Routes(detailHandler))

		missionsHandler := missionsfeature.NewHandler(deps.State, errLog, logger)
		r.Mount("/missoes", missionsfeature.Routes(missionsHandler))
		r.Post("/filtros/limpar", missionsHandler.ServeReset)

		eventsHandler := eventsfeature.NewHandler(deps.State, appCfg.EventsPageSize, errLog, logger)
		r.Mount("/eventos", eventsfeature.Routes(eventsHandler))
	})

	return r, nil
}

// csrfMiddleware protects the filter POSTs. Outside prod the cookie is not
// Secure and plain-HTTP requests are marked as such so the same-origin
// check accepts http://localhost referers.
func csrfMiddleware(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) []func(http.Handler) http.Handler {
	secure := coreCfg.Env == "prod"
	protect := csrf.Protect([]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderFragment(w, http.StatusForbidden, "Sua sessão expirou. Recarregue a página.")
		})),
	)
	if secure {
		return []func(http.Handler) http.Handler{protect}
	}
	plaintext := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
	return []func(http.Handler) http.Handler{plaintext, protect}
}
