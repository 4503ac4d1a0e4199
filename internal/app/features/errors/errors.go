// internal/app/features/errors/errors.go
//
// Package errors renders the dashboard's error fragments. Every panel is
// loaded by an HTMX swap, so failures answer with a small localized
// fragment that takes the panel's place instead of a full error page.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/pactomapa/internal/app/store/upstream"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Messages shown to the user.
const (
	MsgUnavailable = "Não foi possível carregar os dados no momento. Tente novamente em instantes."
	MsgNotFound    = "Município não encontrado."
	MsgBadRequest  = "Requisição inválida."
	MsgInternal    = "Ocorreu um erro inesperado."
)

type fragmentData struct {
	Status  int
	Message string
}

// ErrorLogger logs a failure with request context and renders the matching
// fragment.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// LogUpstreamError handles a failed call to the program API: 404 for a
// record the API does not have, 502 otherwise.
func (e *ErrorLogger) LogUpstreamError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	if upstream.IsNotFound(err) {
		e.Log.Info(msg, zap.Error(err), zap.String("path", r.URL.Path))
		RenderFragment(w, http.StatusNotFound, MsgNotFound)
		return
	}
	e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
	if userMsg == "" {
		userMsg = MsgUnavailable
	}
	status := http.StatusBadGateway
	var he *upstream.HTTPError
	if stderrors.As(err, &he) && he.Status == http.StatusServiceUnavailable {
		status = http.StatusServiceUnavailable
	}
	RenderFragment(w, status, userMsg)
}

// LogServerError handles an internal failure.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	if userMsg == "" {
		userMsg = MsgInternal
	}
	RenderFragment(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest handles invalid input.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Debug(msg, zap.Error(err), zap.String("path", r.URL.Path))
	if userMsg == "" {
		userMsg = MsgBadRequest
	}
	RenderFragment(w, http.StatusBadRequest, userMsg)
}

// RenderNotFound renders the not-found fragment.
func RenderNotFound(w http.ResponseWriter, msg string) {
	if msg == "" {
		msg = MsgNotFound
	}
	RenderFragment(w, http.StatusNotFound, msg)
}

// RenderFragment writes status and the error fragment.
func RenderFragment(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.RenderSnippet(w, "erro_fragmento", fragmentData{Status: status, Message: msg})
}
