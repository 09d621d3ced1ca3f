package home

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// featuredCount is how many destinations the landing page shows.
const featuredCount = 8

// LocationSearcher lists destinations for the landing page.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.Location], error)
}

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	API LocationSearcher
	Log *zap.Logger
}

func NewHandler(api LocationSearcher, logger *zap.Logger) *Handler {
	return &Handler{
		API: api,
		Log: logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	Destinations []models.Location
	Unavailable  bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page, err := h.API.SearchLocations(ctx, 1, featuredCount, "")
	if err != nil {
		// The landing page still renders without destinations.
		h.Log.Warn("home: list destinations failed", zap.Error(err))
		data.Unavailable = true
	} else {
		data.Destinations = page.Data
	}

	templates.Render(w, r, "home", data)
}
