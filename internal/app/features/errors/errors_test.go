package errors_test

import (
	"errors"
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/pactomapa/internal/app/features/errors"
	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/pactomapa/internal/testutil"
	"go.uber.org/zap"
)

// render runs fn and swallows a panic from the template engine, which is
// not booted in unit tests. Status and headers are written before the
// fragment, so they can still be checked.
func render(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestLogUpstreamError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &upstream.HTTPError{Status: http.StatusNotFound, URL: "x"}, http.StatusNotFound},
		{"unavailable", &upstream.HTTPError{Status: http.StatusServiceUnavailable, URL: "x"}, http.StatusServiceUnavailable},
		{"server error", &upstream.HTTPError{Status: http.StatusInternalServerError, URL: "x"}, http.StatusBadGateway},
		{"bad envelope", upstream.ErrBadEnvelope, http.StatusBadGateway},
	}
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			req := testutil.NewRequest("GET", "/municipios/2300101")
			render(func() { errLog.LogUpstreamError(rec, req, "load failed", tt.err, "") })
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestLogServerAndBadRequest(t *testing.T) {
	errLog := uierrors.NewErrorLogger(nil)

	rec := testutil.NewRecorder()
	render(func() {
		errLog.LogServerError(rec, testutil.NewRequest("GET", "/"), "boom", errors.New("boom"), "")
	})
	rec.AssertStatus(t, http.StatusInternalServerError)
	assertHTML(t, rec)

	rec = testutil.NewRecorder()
	render(func() {
		errLog.LogBadRequest(rec, testutil.NewRequest("GET", "/"), "bad", errors.New("bad"), "")
	})
	rec.AssertStatus(t, http.StatusBadRequest)
	assertHTML(t, rec)
}

// assertHTML checks the headers as sent with the status line. Result()
// snapshots them at WriteHeader, so later writes to the live map (the
// template engine's error path in unit tests) do not count.
func assertHTML(t *testing.T, rec *testutil.ResponseRecorder) {
	t.Helper()
	if ct := rec.Result().Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderNotFound(t *testing.T) {
	rec := testutil.NewRecorder()
	render(func() { uierrors.RenderNotFound(rec, "") })
	rec.AssertStatus(t, http.StatusNotFound)
}
