package shared

import (
	"errors"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
)

// FailureText turns an API error into a short message for the page.
func FailureText(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		return "the marketplace refused the request; sign in again and retry"
	case errors.Is(err, apiclient.ErrNotFound):
		return "it no longer exists"
	}
	return apiclient.Message(err, "the marketplace service is unavailable")
}
