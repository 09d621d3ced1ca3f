package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/domain/models"
)

// ListBookings returns every booking. The API has no paged variant.
func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/dat-phong", path: "/dat-phong"}, &out)
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, id int) (models.Booking, error) {
	var out models.Booking
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/dat-phong/{id}", path: idPath("/dat-phong", id)}, &out)
	return out, err
}

// BookingsByUser returns the bookings made by one account.
func (c *Client) BookingsByUser(ctx context.Context, userID int) ([]models.Booking, error) {
	var out []models.Booking
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/dat-phong/lay-theo-nguoi-dung/{id}",
		path:     idPath("/dat-phong/lay-theo-nguoi-dung", userID),
	}, &out)
	return out, err
}

func (c *Client) DeleteBooking(ctx context.Context, id int, token string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/dat-phong/{id}",
		path:     idPath("/dat-phong", id),
		token:    token,
	}, nil)
}
