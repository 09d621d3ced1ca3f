// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), name, marketplace user id,
// and a found flag. Without a signed-in user it returns "visitor", "", 0, false.
func UserCtx(r *http.Request) (role string, name string, userID int, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID <= 0 {
		return "visitor", "", 0, false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// Token returns the marketplace API token of the signed-in user.
func Token(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Token
	}
	return ""
}

// IsSelf reports whether id is the signed-in user's own account.
func IsSelf(r *http.Request, id int) bool {
	_, _, uid, ok := UserCtx(r)
	return ok && uid == id
}
