// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

const (
	minEventsPageSize = 1
	maxEventsPageSize = 50
	csrfKeyLen        = 32
)

// appConfigKeys defines the configuration keys for the dashboard.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, geojson_path, etc.
//   - Environment variables: PACTOMAPA_API_BASE_URL, PACTOMAPA_GEOJSON_PATH, etc.
//   - Command-line flags: --api_base_url, --geojson_path, etc.
var appConfigKeys = []config.AppKey{
	// Program API
	{Name: "api_base_url", Default: "https://primeira-infancia-backend.onrender.com/api", Desc: "Program API root used in production"},
	{Name: "api_base_url_local", Default: "http://localhost:3000/api", Desc: "Program API root used when public_host is localhost"},
	{Name: "public_host", Default: "", Desc: "Host name the dashboard is served under (blank uses the machine hostname)"},

	// Municipality shapes
	{Name: "geojson_url", Default: "https://raw.githubusercontent.com/tbrugz/geodata-br/refs/heads/master/geojson/geojs-23-mun.json", Desc: "URL of the Ceará municipalities GeoJSON"},
	{Name: "geojson_path", Default: "", Desc: "Local GeoJSON file (overrides geojson_url)"},

	// Static fallback snapshots
	{Name: "fallback_dir", Default: "", Desc: "Directory with static snapshot files used when the API fails (blank disables)"},

	// Background work
	{Name: "refresh_interval", Default: "5m", Desc: "How often to reload municipalities and the map panorama (0 disables)"},
	{Name: "recolor_delay", Default: "0s", Desc: "Wait before a scheduled recolor pass runs"},

	// Pages
	{Name: "events_page_size", Default: 10, Desc: "Events per page in the feed (1-50)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123", Desc: "32-byte key for CSRF tokens (must be changed in production)"},
	{Name: "site_name", Default: "Pacto Cearense pela Primeira Infância", Desc: "Site name shown in the page title"},
	{Name: "join_url", Default: "", Desc: "Link behind the 'Aderir agora' button (blank disables the button)"},

	// Upstream timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for upstream health checks"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-record upstream reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for upstream listings and panoramas"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for startup loads and scheduled refreshes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PACTOMAPA_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PACTOMAPA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURLRemote: appValues.String("api_base_url"),
		APIBaseURLLocal:  appValues.String("api_base_url_local"),
		PublicHost:       appValues.String("public_host"),

		GeoJSONURL:  appValues.String("geojson_url"),
		GeoJSONPath: appValues.String("geojson_path"),
		FallbackDir: appValues.String("fallback_dir"),

		RefreshInterval: appValues.Duration("refresh_interval", 5*time.Minute),
		RecolorDelay:    appValues.Duration("recolor_delay", 0),

		EventsPageSize: appValues.Int("events_page_size"),
		CSRFKey:        appValues.String("csrf_key"),
		SiteName:       appValues.String("site_name"),
		JoinURL:        appValues.String("join_url"),

		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	host := appCfg.PublicHost
	if host == "" {
		host, _ = os.Hostname()
	}
	appCfg.APIBaseURL = chooseAPIBase(host, appCfg.APIBaseURLRemote, appCfg.APIBaseURLLocal)
	logger.Info("program API selected",
		zap.String("host", host),
		zap.String("api_base_url", appCfg.APIBaseURL))

	return coreCfg, appCfg, nil
}

// chooseAPIBase returns local for localhost and 127.0.0.1, remote otherwise.
func chooseAPIBase(host, remote, local string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndex(h, ":"); i >= 0 && !strings.Contains(h[:i], ":") {
		h = h[:i] // drop a port
	}
	if h == "localhost" || h == "127.0.0.1" {
		return local
	}
	return remote
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// URLs are checked here so a typo fails fast instead of surfacing as a
// blank map after the first refresh.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if !urlutil.IsValidAbsHTTPURL(appCfg.APIBaseURL) {
		return fmt.Errorf("api_base_url %q is not an absolute http(s) URL", appCfg.APIBaseURL)
	}
	if strings.TrimSpace(appCfg.GeoJSONPath) == "" {
		if !urlutil.IsValidAbsHTTPURL(appCfg.GeoJSONURL) {
			return fmt.Errorf("geojson_url %q is not an absolute http(s) URL and geojson_path is blank", appCfg.GeoJSONURL)
		}
	}
	if appCfg.JoinURL != "" && !urlutil.IsValidAbsHTTPURL(appCfg.JoinURL) {
		return fmt.Errorf("join_url %q is not an absolute http(s) URL", appCfg.JoinURL)
	}
	if appCfg.EventsPageSize < minEventsPageSize || appCfg.EventsPageSize > maxEventsPageSize {
		return fmt.Errorf("events_page_size must be between %d and %d, got %d",
			minEventsPageSize, maxEventsPageSize, appCfg.EventsPageSize)
	}
	if len(appCfg.CSRFKey) != csrfKeyLen {
		return fmt.Errorf("csrf_key must be exactly %d bytes, got %d", csrfKeyLen, len(appCfg.CSRFKey))
	}
	if appCfg.RefreshInterval < 0 || appCfg.RecolorDelay < 0 {
		return fmt.Errorf("refresh_interval and recolor_delay must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.CSRFKey == defaultCSRFKey() {
		logger.Warn("csrf_key is the development default; set PACTOMAPA_CSRF_KEY in production")
	}
	return nil
}

func defaultCSRFKey() string {
	for _, k := range appConfigKeys {
		if k.Name == "csrf_key" {
			if s, ok := k.Default.(string); ok {
				return s
			}
		}
	}
	return ""
}
