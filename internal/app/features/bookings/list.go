// internal/app/features/bookings/list.go
package bookings

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/app/system/paging"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type bookingRow struct {
	models.Booking
	CheckInLabel  string
	CheckOutLabel string
}

// Filter keeps the bookings whose room or user id equals a numeric
// keyword. Any other keyword matches nothing; blank matches everything.
func Filter(all []models.Booking, keyword string) []models.Booking {
	if keyword == "" {
		return all
	}
	n, err := strconv.Atoi(keyword)
	if err != nil {
		return []models.Booking{}
	}
	out := make([]models.Booking, 0)
	for _, b := range all {
		if b.RoomID == n || b.UserID == n {
			out = append(out, b)
		}
	}
	return out
}

// ServeList shows one page of bookings. The API only returns the full
// list, so paging happens here.
// GET /admin/bookings
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	data := shared.ListVM[bookingRow]{
		BaseVM:   viewdata.NewBaseVM(r, "Bookings", "/"),
		BasePath: listPath,
		Flashes:  h.SessionMgr.Flashes(w, r),
	}

	all, err := h.API.ListBookings(ctx)
	if err != nil {
		h.Log.Warn("list bookings failed", zap.Error(err))
		data.Error = "Bookings could not be loaded: " + shared.FailureText(err) + "."
	}
	rows, pager := paging.Slice(Filter(all, p.Keyword), p)
	data.Pager = pager
	data.Rows = make([]bookingRow, 0, len(rows))
	for _, b := range rows {
		data.Rows = append(data.Rows, bookingRow{
			Booking:       b,
			CheckInLabel:  aggregate.DayLabel(b.CheckIn),
			CheckOutLabel: aggregate.DayLabel(b.CheckOut),
		})
	}

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "bookings-table-wrap" {
		templates.RenderSnippet(w, "bookings_table", data)
		return
	}
	templates.Render(w, r, "admin_bookings", data)
}
