// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to the dashboard: where the program
// API and the municipality shapes live, how often to refresh, and the
// knobs of the rendered pages.
type AppConfig struct {
	// Program REST API. APIBaseURL is the resolved root used by the client;
	// LoadConfig picks it from the two configured roots based on PublicHost.
	APIBaseURL       string
	APIBaseURLRemote string // production root (e.g., https://.../api)
	APIBaseURLLocal  string // root used when the dashboard runs on localhost
	PublicHost       string // host name the dashboard is served under (blank means machine hostname)

	// Municipality shapes: a local file wins over the URL.
	GeoJSONURL  string
	GeoJSONPath string

	// Directory of static snapshot files used when the API fails (blank disables).
	FallbackDir string

	// Background refresh of the municipality list and map panorama (0 disables).
	RefreshInterval time.Duration

	// Wait before a scheduled recolor pass runs (0 means next tick).
	RecolorDelay time.Duration

	// Events feed page size.
	EventsPageSize int

	// CSRF protection for the filter endpoints.
	CSRFKey string

	// Page chrome.
	SiteName string
	JoinURL  string // target of the "Aderir agora" button (blank disables it)

	// Upstream call timeouts (zero keeps the defaults).
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
