// Package theme toggles the light/dark preference kept in the session.
package theme

import (
	"net/http"
	"net/url"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sm, Log: logger}
}

// Toggle flips the theme and sends the user back where they came from.
// POST /theme
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	next, err := h.SessionMgr.ToggleTheme(w, r)
	if err != nil {
		h.Log.Warn("theme toggle: save session", zap.Error(err))
	}
	w.Header().Set("X-Theme", next)

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	http.Redirect(w, r, urlutil.SafeReturn(backPath(r), "", "/"), http.StatusSeeOther)
}

// backPath prefers an explicit return field, then the same-host referer.
func backPath(r *http.Request) string {
	if ret := r.FormValue("return"); ret != "" {
		return ret
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return ""
	}
	return ref.RequestURI()
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Toggle)
	return r
}
