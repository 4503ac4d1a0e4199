// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/store/staticdata"
	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/app/system/workers"
)

// DBDeps holds the back-end dependencies for the app. The dashboard has no
// database; its "backends" are the program API, the static fallback
// snapshots, and the municipality shapes, plus the in-memory state built
// on top of them.
type DBDeps struct {
	Client   *upstream.Client
	Static   *staticdata.Source
	Overlay  *overlay.Overlay
	Registry *registry.Registry
	Engine   *coloring.Engine
	State    *panorama.Controller

	// Refresher reloads State in the background; nil when refresh_interval is 0.
	// Startup starts it and Shutdown stops it.
	Refresher *workers.Runner
}
