package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/domain/models"
)

// ListLocations returns every location.
func (c *Client) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/vi-tri", path: "/vi-tri"}, &out)
	return out, err
}

func (c *Client) SearchLocations(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.Location], error) {
	var out models.Page[models.Location]
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/vi-tri/phan-trang-tim-kiem",
		path:     "/vi-tri/phan-trang-tim-kiem",
		query:    pageQuery(pageIndex, pageSize, keyword),
	}, &out)
	return out, err
}

func (c *Client) GetLocation(ctx context.Context, id int) (models.Location, error) {
	var out models.Location
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/vi-tri/{id}", path: idPath("/vi-tri", id)}, &out)
	return out, err
}

func (c *Client) DeleteLocation(ctx context.Context, id int, token string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/vi-tri/{id}",
		path:     idPath("/vi-tri", id),
		token:    token,
	}, nil)
}
