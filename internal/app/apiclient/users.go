package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/staydesk/internal/domain/models"
)

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users", path: "/users"}, &out)
	return out, err
}

// SearchUsers returns one page of accounts whose name matches keyword.
func (c *Client) SearchUsers(ctx context.Context, pageIndex, pageSize int, keyword string) (models.Page[models.User], error) {
	var out models.Page[models.User]
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/users/phan-trang-tim-kiem",
		path:     "/users/phan-trang-tim-kiem",
		query:    pageQuery(pageIndex, pageSize, keyword),
	}, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id int) (models.User, error) {
	var out models.User
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users/{id}", path: idPath("/users", id)}, &out)
	return out, err
}

// UpdateUser saves profile fields. token is the signed-in user's token.
func (c *Client) UpdateUser(ctx context.Context, id int, upd models.UserUpdate, token string) (models.User, error) {
	upd.ID = id
	var out models.User
	err := c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "/users/{id}",
		path:     idPath("/users", id),
		body:     upd,
		token:    token,
	}, &out)
	return out, err
}

// DeleteUser removes an account. The API takes the id as a query parameter.
func (c *Client) DeleteUser(ctx context.Context, id int, token string) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/users",
		path:     "/users",
		query:    url.Values{"id": {strconv.Itoa(id)}},
		token:    token,
	}, nil)
}
