package charts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Label and value field names of the chart rows.
const (
	valueField    = "count"
	roomsField    = "bedrooms"
	bookingsField = "month"
	locationField = "province"
)

type Handler struct {
	Builder *Builder
	Log     *zap.Logger
}

func NewHandler(b *Builder, logger *zap.Logger) *Handler {
	return &Handler{Builder: b, Log: logger}
}

type pageData struct {
	viewdata.BaseVM
	Cards  []Card
	Charts []BarChartVM
}

type jsonPayload struct {
	Users     int              `json:"users"`
	Rooms     []map[string]any `json:"rooms"`
	Bookings  []map[string]any `json:"bookings"`
	Locations []map[string]any `json:"locations"`
	Failed    []string         `json:"failed"`
}

func (h *Handler) build(r *http.Request) Result {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	return h.Builder.Build(ctx)
}

func charts(res Result) []BarChartVM {
	rooms := BarChart("Rooms by bedrooms", res.Rooms, roomsField, valueField)
	rooms.Failed = res.Failed(DimRooms)
	bookings := BarChart("Bookings by check-out month", res.Bookings, bookingsField, valueField)
	bookings.Failed = res.Failed(DimBookings)
	locations := BarChart("Locations by province", res.Locations, locationField, valueField)
	locations.Failed = res.Failed(DimLocations)
	return []BarChartVM{rooms, bookings, locations}
}

// ServePage renders the dashboard. Reloading the page refetches everything.
// GET /admin/charts
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	res := h.build(r)
	if r.Context().Err() != nil {
		// Client went away; drop the late result.
		return
	}

	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "Statistics", "/admin/users"),
		Cards:  Cards(res),
		Charts: charts(res),
	}

	h.Log.Debug("charts dashboard served",
		zap.Int("room_groups", len(res.Rooms)),
		zap.Int("booking_groups", len(res.Bookings)),
		zap.Int("location_groups", len(res.Locations)),
		zap.Int("failures", len(res.Failures)))

	templates.Render(w, r, "admin_charts", data)
}

// ServeJSON serves the same aggregates as rows.
// GET /admin/charts.json
func (h *Handler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	res := h.build(r)
	if r.Context().Err() != nil {
		return
	}

	out := jsonPayload{
		Users:     res.Users,
		Rooms:     res.Rooms.Rows(roomsField, valueField),
		Bookings:  res.Bookings.Rows(bookingsField, valueField),
		Locations: res.Locations.Rows(locationField, valueField),
		Failed:    []string{},
	}
	for _, dim := range []string{DimUsers, DimRooms, DimBookings, DimLocations} {
		if res.Failed(dim) {
			out.Failed = append(out.Failed, dim)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.Log.Warn("encode charts json failed", zap.Error(err))
	}
}
