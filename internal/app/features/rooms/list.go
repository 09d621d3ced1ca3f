// internal/app/features/rooms/list.go
package rooms

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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

type roomRow struct {
	models.Room
	PriceLabel string
}

// FormatPrice renders a nightly price in dollars with digit grouping.
func FormatPrice(p int) string {
	return printer.Sprintf("$%d", p)
}

// ServeList shows one page of room listings.
// GET /admin/rooms
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := shared.ListVM[roomRow]{
		BaseVM:   viewdata.NewBaseVM(r, "Rooms", "/"),
		BasePath: listPath,
		Flashes:  h.SessionMgr.Flashes(w, r),
	}

	rows, pager, err := shared.Search(ctx, p, h.API.SearchRooms)
	if err != nil {
		h.Log.Warn("search rooms failed", zap.Error(err))
		data.Error = "Rooms could not be loaded: " + shared.FailureText(err) + "."
	}
	data.Pager = pager
	data.Rows = make([]roomRow, 0, len(rows))
	for _, rm := range rows {
		data.Rows = append(data.Rows, roomRow{Room: rm, PriceLabel: FormatPrice(rm.Price)})
	}

	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "rooms-table-wrap" {
		templates.RenderSnippet(w, "rooms_table", data)
		return
	}
	templates.Render(w, r, "admin_rooms", data)
}
