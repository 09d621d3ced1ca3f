// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/staydesk/internal/app/store/audit"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const basePath = "/admin/audit"

// FailedLoginWindow and failedLoginLimit bound the failed sign-in panel.
const (
	FailedLoginWindow = 24 * time.Hour
	failedLoginLimit  = 10
)

// Filters are the audit list's query-string filters.
type Filters struct {
	Category  string
	EventType string
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
}

// ParseFilters reads filters from the request. An event type that does not
// belong to the chosen category is dropped.
func ParseFilters(r *http.Request) Filters {
	f := Filters{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		StartDate: strings.TrimSpace(query.Get(r, "start_date")),
		EndDate:   strings.TrimSpace(query.Get(r, "end_date")),
	}
	if f.EventType != "" && !slices.Contains(EventTypesForCategory(f.Category), f.EventType) {
		f.EventType = ""
	}
	return f
}

// QueryFilter converts the filters and page into a store query. Unparsable
// dates are ignored; the end date covers the whole day.
func (f Filters) QueryFilter(p paging.Params) audit.QueryFilter {
	qf := audit.QueryFilter{
		Category:  f.Category,
		EventType: f.EventType,
		Limit:     int64(p.Size),
		Offset:    int64((p.Page - 1) * p.Size),
	}
	if t, err := time.Parse("2006-01-02", f.StartDate); err == nil {
		qf.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", f.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		qf.EndTime = &end
	}
	return qf
}

// ServeList handles GET /admin/audit - displays the audit log with filtering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	p := paging.Parse(r)
	f := ParseFilters(r)

	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit Log", "/admin/users"),
		Category:   f.Category,
		EventType:  f.EventType,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Categories: allCategories(),
		EventTypes: EventTypesForCategory(f.Category),
		BasePath:   basePath,
	}

	total, err := h.Store.CountByFilter(ctx, f.QueryFilter(p))
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/admin/users")
		return
	}

	// Count first so a page past the end can be clamped before querying.
	data.Pager = paging.NewPager(p, int(total))
	p.Page = data.Pager.Page

	events, err := h.Store.Query(ctx, f.QueryFilter(p))
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/admin/users")
		return
	}

	data.Items = toItems(events)
	data.FailedLogins = h.RecentFailedLogins(ctx)

	templates.Render(w, r, "audit_list", data)
}

// RecentFailedLogins returns failed sign-in events from the last
// FailedLoginWindow. A lookup failure is logged and yields nil; the panel
// is secondary to the main list.
func (h *Handler) RecentFailedLogins(ctx context.Context) []listItem {
	events, err := h.Store.GetFailedLogins(ctx, h.now().Add(-FailedLoginWindow), failedLoginLimit)
	if err != nil {
		h.Log.Warn("failed to load recent failed logins", zap.Error(err))
		return nil
	}
	return toItems(events)
}

func toItems(events []audit.Event) []listItem {
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			ActorID:   e.ActorID,
			UserID:    e.UserID,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		})
	}
	return items
}
