package apiclient

import (
	"context"
	"net/http"

	"github.com/dalemusser/staydesk/internal/domain/models"
)

// SignIn exchanges credentials for a user token.
func (c *Client) SignIn(ctx context.Context, email, password string) (models.SignIn, error) {
	var out models.SignIn
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/auth/signin",
		path:     "/auth/signin",
		body:     map[string]string{"email": email, "password": password},
	}, &out)
	return out, err
}

// SignUp registers a new account. The API assigns the id; role defaults to
// USER when empty.
func (c *Client) SignUp(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	var out models.User
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/auth/signup",
		path:     "/auth/signup",
		body:     req,
	}, &out)
	return out, err
}

// Ping issues the cheapest read the API offers, once, without retries.
func (c *Client) Ping(ctx context.Context) error {
	var page models.Page[models.Location]
	return c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/vi-tri/phan-trang-tim-kiem",
		path:     "/vi-tri/phan-trang-tim-kiem",
		query:    pageQuery(1, 1, ""),
		once:     true,
	}, &page)
}
