// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is used until Init provides one.
const DefaultSiteName = "StayDesk"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserID     int
	UserName   string
	Avatar     string

	// Presentation
	Theme string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// ThemeResolver reads the theme preference for a request.
type ThemeResolver func(r *http.Request) string

var (
	siteName      = DefaultSiteName
	themeResolver ThemeResolver
)

// Init sets the site name and the theme source. Call once from bootstrap.
func Init(name string, themes ThemeResolver) {
	if name != "" {
		siteName = name
	}
	themeResolver = themes
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, id, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    siteName,
		IsLoggedIn:  signedIn,
		IsAdmin:     signedIn && role == "admin",
		Role:        role,
		UserID:      id,
		UserName:    name,
		Theme:       auth.ThemeLight,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.Avatar = u.Avatar
	}
	if themeResolver != nil {
		vm.Theme = themeResolver(r)
	}
	return vm
}
