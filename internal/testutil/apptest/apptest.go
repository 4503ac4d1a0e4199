// Package apptest assembles a complete dashboard backend over the fake
// program API for handler tests. It lives outside testutil so the store
// packages' own tests can keep importing testutil.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/app/panorama"
	"github.com/dalemusser/pactomapa/internal/app/store/overlay"
	"github.com/dalemusser/pactomapa/internal/app/store/registry"
	"github.com/dalemusser/pactomapa/internal/app/store/staticdata"
	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/testutil"
	"go.uber.org/zap"
)

// App is a wired backend.
type App struct {
	API     *testutil.FakeAPI
	Client  *upstream.Client
	Reg     *registry.Registry
	Engine  *coloring.Engine
	Overlay *overlay.Overlay
	Ctrl    *panorama.Controller
}

// New builds the backend. Recolors only run when flushed, so tests never
// race the scheduler's timer.
func New(t *testing.T, static *staticdata.Source) *App {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	ov, err := overlay.Parse([]byte(testutil.GeoJSON), zap.NewNop())
	if err != nil {
		t.Fatalf("parse overlay: %v", err)
	}
	client := upstream.New(api.URL(), zap.NewNop())
	reg := registry.New()
	engine := coloring.New(reg, zap.NewNop(), coloring.WithDelay(time.Hour))
	ctrl := panorama.New(panorama.Deps{
		API:      client,
		Static:   static,
		Registry: reg,
		Engine:   engine,
		Overlay:  ov,
		Logger:   zap.NewNop(),
	})
	return &App{API: api, Client: client, Reg: reg, Engine: engine, Overlay: ov, Ctrl: ctrl}
}

// NewLoaded is New followed by a successful Refresh.
func NewLoaded(t *testing.T) *App {
	t.Helper()
	a := New(t, nil)
	if err := a.Ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return a
}

// Render calls fn and swallows a panic from the template engine, which is
// not booted in unit tests. Status codes and headers are set before any
// template runs, so they can still be asserted.
func Render(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
