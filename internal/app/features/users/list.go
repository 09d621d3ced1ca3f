// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type userRow struct {
	models.User
	IsSelf bool
}

// ServeList shows one page of marketplace users, optionally filtered by name.
// GET /admin/users
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := shared.ListVM[userRow]{
		BaseVM:   viewdata.NewBaseVM(r, "Users", "/"),
		BasePath: listPath,
		Flashes:  h.SessionMgr.Flashes(w, r),
	}

	rows, pager, err := shared.Search(ctx, p, h.API.SearchUsers)
	if err != nil {
		h.Log.Warn("search users failed", zap.Error(err))
		data.Error = "Users could not be loaded: " + shared.FailureText(err) + "."
	}
	data.Pager = pager
	data.Rows = make([]userRow, 0, len(rows))
	for _, u := range rows {
		data.Rows = append(data.Rows, userRow{User: u, IsSelf: u.ID == data.UserID})
	}

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "users-table-wrap" {
		templates.RenderSnippet(w, "users_table", data)
		return
	}
	templates.Render(w, r, "admin_users", data)
}
