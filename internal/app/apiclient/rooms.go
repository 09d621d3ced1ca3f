package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/domain/models"
)

// ListRooms returns every room listing.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/phong-thue", path: "/phong-thue"}, &out)
	return out, err
}

func (c *Client) SearchRooms(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.Room], error) {
	var out models.Page[models.Room]
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/phong-thue/phan-trang-tim-kiem",
		path:     "/phong-thue/phan-trang-tim-kiem",
		query:    pageQuery(pageIndex, pageSize, keyword),
	}, &out)
	return out, err
}

func (c *Client) GetRoom(ctx context.Context, id int) (models.Room, error) {
	var out models.Room
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/phong-thue/{id}", path: idPath("/phong-thue", id)}, &out)
	return out, err
}

func (c *Client) DeleteRoom(ctx context.Context, id int, token string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/phong-thue/{id}",
		path:     idPath("/phong-thue", id),
		token:    token,
	}, nil)
}
