// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes serves /login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}

// RegisterRoutes serves /register. postMW wraps only the form POST, so
// viewing the form never spends a sign-up token.
func RegisterRoutes(h *Handler, postMW ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRegister)
	r.With(postMW...).Post("/", h.HandleRegisterPost)
	return r
}
