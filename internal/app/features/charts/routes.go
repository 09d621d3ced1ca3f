package charts

import (
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves the dashboard page under whatever mount point the top-level
// router chooses ("/admin/charts"). The JSON twin is registered by the
// caller next to it since it lives outside the mount prefix.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServePage)
	return r
}
