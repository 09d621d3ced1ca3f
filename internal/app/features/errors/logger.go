// internal/app/features/errors/logger.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and renders a
// friendly page in their place.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	_, _, uid, _ := authz.UserCtx(r)
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("user_id", uid),
		zap.Error(err),
	}
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, e.fields(r, err)...)
	RenderError(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	RenderError(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogUpstream handles a failed marketplace API call. Not-found and
// unauthorized answers map to their own pages; everything else is a 502
// carrying the API's message when it sent one.
func (e *ErrorLogger) LogUpstream(w http.ResponseWriter, r *http.Request, msg string, err error, backURL string) {
	switch {
	case stderrors.Is(err, apiclient.ErrNotFound):
		e.Log.Info(msg, e.fields(r, err)...)
		RenderError(w, r, http.StatusNotFound, "That record no longer exists.", backURL)
	case stderrors.Is(err, apiclient.ErrUnauthorized):
		e.Log.Warn(msg, e.fields(r, err)...)
		RenderForbidden(w, r, apiclient.Message(err, "The marketplace refused this action."), backURL)
	default:
		e.Log.Error(msg, e.fields(r, err)...)
		RenderError(w, r, http.StatusBadGateway, apiclient.Message(err, "The marketplace service is unavailable."), backURL)
	}
}
