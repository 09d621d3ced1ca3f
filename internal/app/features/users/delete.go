// internal/app/features/users/delete.go
package users

import (
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
)

// HandleDelete removes a marketplace user. Admins cannot delete themselves.
// POST /admin/users/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		h.Deleter.Reject(w, r, "Invalid user id.", listPath)
		return
	}
	if authz.IsSelf(r, id) {
		h.Deleter.Reject(w, r, "You cannot delete your own account.", listPath)
		return
	}
	h.Deleter.Handle(w, r, id, audit.EventUserDeleted, "user", listPath, h.API.DeleteUser)
}
