// internal/app/features/bookings/routes.go
package bookings

import (
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/{id}/delete", h.HandleDelete)
	})
	return r
}
