// internal/app/features/users/view.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type viewData struct {
	viewdata.BaseVM
	User    models.User
	History History
}

// ServeView shows one user's details.
// GET /admin/users/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.API.GetUser(ctx, id)
	if err != nil {
		h.ErrLog.LogUpstream(w, r, "get user failed", err, listPath)
		return
	}

	templates.Render(w, r, "admin_user_view", viewData{
		BaseVM:  viewdata.NewBaseVM(r, u.Name, listPath),
		User:    u,
		History: h.LoadHistory(ctx, u.ID),
	})
}
