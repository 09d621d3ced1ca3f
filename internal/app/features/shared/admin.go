// Package shared holds the pieces every admin list has in common: paged
// search against the marketplace API and the delete-then-redirect flow.
package shared

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListVM is the view model of an admin list page.
type ListVM[T any] struct {
	viewdata.BaseVM
	Rows     []T
	Pager    paging.Pager
	BasePath string
	Flashes  []auth.Flash
	// Error is set when the API could not be reached; the table renders empty.
	Error string
}

// SearchFunc is one of the API's paginated search calls.
type SearchFunc[T any] func(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[T], error)

// Search runs a paged search. A page past the end is clamped to the last
// page and fetched again.
func Search[T any](ctx context.Context, p paging.Params, fn SearchFunc[T]) ([]T, paging.Pager, error) {
	page, err := fn(ctx, p.Page, p.Size, p.Keyword)
	if err != nil {
		return nil, paging.NewPager(p, 0), err
	}
	pg := paging.NewPager(p, page.TotalRow)
	if pg.Page != p.Page && page.TotalRow > 0 {
		p.Page = pg.Page
		if page, err = fn(ctx, p.Page, p.Size, p.Keyword); err != nil {
			return nil, paging.NewPager(p, 0), err
		}
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page.Data, pg, nil
}

// Deleter runs the admin delete flow: call the API with the admin's token,
// audit the outcome, flash it, and redirect back to the list.
type Deleter struct {
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

// DeleteFunc is one of the API's delete calls.
type DeleteFunc func(ctx context.Context, id int, token string) error

// IDParam reads the {id} URL parameter. ok is false for a non-positive or
// non-numeric id.
func IDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// Handle deletes record id. noun names the record in flash messages.
func (d *Deleter) Handle(w http.ResponseWriter, r *http.Request, id int, eventType, noun, listPath string, del DeleteFunc) {
	_, _, actorID, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := del(ctx, id, authz.Token(r))
	d.AuditLog.Deleted(ctx, r, actorID, eventType, id, err)

	if err != nil {
		d.Log.Warn("admin delete failed",
			zap.String("event", eventType),
			zap.Int("id", id),
			zap.Int("actor_id", actorID),
			zap.Error(err))
		d.flash(w, r, auth.FlashError, "Could not delete "+noun+" #"+strconv.Itoa(id)+": "+FailureText(err))
	} else {
		d.flash(w, r, auth.FlashSuccess, "Deleted "+noun+" #"+strconv.Itoa(id)+".")
	}

	ret := urlutil.SafeReturn(r.FormValue("return"), "", listPath)
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", ret)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

// Reject flashes msg and redirects to listPath without calling the API.
func (d *Deleter) Reject(w http.ResponseWriter, r *http.Request, msg, listPath string) {
	d.flash(w, r, auth.FlashError, msg)
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (d *Deleter) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := d.SessionMgr.AddFlash(w, r, kind, msg); err != nil {
		d.Log.Warn("flash save failed", zap.Error(err))
	}
}
