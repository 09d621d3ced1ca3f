// internal/app/features/rooms/view.go
package rooms

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/features/shared"
	"github.com/dalemusser/staydesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type viewData struct {
	viewdata.BaseVM
	Room        models.Room
	PriceLabel  string
	Description template.HTML
	Amenities   []string
	// Location is empty when the lookup failed; the page still renders.
	Location models.Location
}

// ServeView shows one room with its sanitized description.
// GET /admin/rooms/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	room, err := h.API.GetRoom(ctx, id)
	if err != nil {
		h.ErrLog.LogUpstream(w, r, "get room failed", err, listPath)
		return
	}

	data := viewData{
		BaseVM:      viewdata.NewBaseVM(r, room.Name, listPath),
		Room:        room,
		PriceLabel:  FormatPrice(room.Price),
		Description: htmlsanitize.PrepareForDisplay(room.Description),
		Amenities:   room.Amenities(),
	}
	if room.LocationID > 0 {
		loc, err := h.API.GetLocation(ctx, room.LocationID)
		if err != nil {
			h.Log.Warn("room location lookup failed", zap.Int("room_id", id), zap.Int("location_id", room.LocationID), zap.Error(err))
		} else {
			data.Location = loc
		}
	}

	templates.Render(w, r, "admin_room_view", data)
}
