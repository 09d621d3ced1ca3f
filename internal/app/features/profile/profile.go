// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"slices"
	"sync"

	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// roomFetchLimit caps concurrent GetRoom calls per page view.
const roomFetchLimit = 4

// Trip is one booking with its room. Room is nil when the room could not
// be fetched; the template shows it as unavailable.
type Trip struct {
	models.Booking
	Room          *models.Room
	CheckInLabel  string
	CheckOutLabel string
}

type profileData struct {
	viewdata.BaseVM
	User       models.User
	AvatarURL  string
	Trips      []Trip
	TripsError string
	Flashes    []auth.Flash
}

// ServeProfile shows the signed-in user's details and booked rooms.
// GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, err := h.API.GetUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogUpstream(w, r, "get profile user failed", err, "/")
		return
	}

	data := profileData{
		BaseVM:    viewdata.NewBaseVM(r, "Profile", "/"),
		User:      u,
		AvatarURL: AvatarOrDefault(u.Avatar),
		Flashes:   h.SessionMgr.Flashes(w, r),
	}

	trips, err := h.LoadTrips(ctx, uid)
	if err != nil {
		h.Log.Warn("bookings by user failed", zap.Int("user_id", uid), zap.Error(err))
		data.TripsError = "Your bookings could not be loaded right now."
	}
	data.Trips = trips

	templates.Render(w, r, "profile", data)
}

// AvatarOrDefault returns avatar, or DefaultAvatar when it is blank.
func AvatarOrDefault(avatar string) string {
	if avatar == "" {
		return DefaultAvatar
	}
	return avatar
}

// LoadTrips joins a user's bookings with their rooms. Each distinct room is
// fetched once, concurrently; a failed room fetch leaves Trip.Room nil and
// does not fail the whole list.
func (h *Handler) LoadTrips(ctx context.Context, userID int) ([]Trip, error) {
	bookings, err := h.API.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(bookings))
	for _, b := range bookings {
		if !slices.Contains(ids, b.RoomID) {
			ids = append(ids, b.RoomID)
		}
	}

	var (
		mu    sync.Mutex
		rooms = make(map[int]*models.Room, len(ids))
		g     errgroup.Group
	)
	g.SetLimit(roomFetchLimit)
	for _, id := range ids {
		g.Go(func() error {
			room, err := h.API.GetRoom(ctx, id)
			if err != nil {
				h.Log.Warn("room lookup failed", zap.Int("room_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			rooms[id] = &room
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	trips := make([]Trip, 0, len(bookings))
	for _, b := range bookings {
		trips = append(trips, Trip{
			Booking:       b,
			Room:          rooms[b.RoomID],
			CheckInLabel:  aggregate.DayLabel(b.CheckIn),
			CheckOutLabel: aggregate.DayLabel(b.CheckOut),
		})
	}
	return trips, nil
}
