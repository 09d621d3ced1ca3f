// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/store/sessions"
	"github.com/dalemusser/staydesk/internal/app/system/auditlog"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/inputval"
	"github.com/dalemusser/staydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Authenticator is the part of the marketplace API used by login and register.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (models.SignIn, error)
	SignUp(ctx context.Context, req models.RegisterRequest) (models.User, error)
}

type Handler struct {
	API        Authenticator
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Sessions   *sessions.Store         // Server-side session rows; nil disables them
	Limiter    *ratelimit.LoginLimiter // nil disables rate limiting
}

func NewHandler(
	api Authenticator,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	sessStore *sessions.Store,
	limiter *ratelimit.LoginLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		API:        api,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Sessions:   sessStore,
		Limiter:    limiter,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
	Flashes   []auth.Flash
}

type loginInput struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: query.Get(r, "return"),
		Flashes:   h.SessionMgr.Flashes(w, r),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	in := loginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	ret := strings.TrimSpace(r.FormValue("return"))

	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, http.StatusBadRequest, res.First(), in.Email, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginRateLimited(ctx, r, in.Email)
			h.renderFormWithError(w, r, http.StatusTooManyRequests, reason, in.Email, ret)
			return
		}
	}

	signIn, err := h.API.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		h.AuditLog.LoginFailed(ctx, r, in.Email, err.Error())

		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			h.renderFormWithError(w, r, http.StatusUnauthorized,
				apiclient.Message(err, "Incorrect email or password."), in.Email, ret)
			return
		}
		h.Log.Error("sign-in call failed", zap.Error(err))
		h.renderFormWithError(w, r, http.StatusBadGateway,
			"The sign-in service is unavailable. Please try again shortly.", in.Email, ret)
		return
	}

	h.createSessionAndRedirect(w, r, signIn, ret)
}

// createSessionAndRedirect stores the signed-in user in the cookie session,
// opens a server-side session row, and redirects to the destination.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, in models.SignIn, returnURL string) {
	u := in.User

	su := &auth.SessionUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
		Token:  in.Token,
	}
	if exp, err := auth.TokenExpiry(in.Token); err == nil {
		su.TokenExpiry = exp
	} else {
		h.Log.Debug("api token carries no readable expiry", zap.Int("user_id", u.ID), zap.Error(err))
	}

	if h.Sessions != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		row, err := h.Sessions.Create(ctx, u.ID, u.Email, ratelimit.ClientIP(r), r.UserAgent())
		if err != nil {
			h.Log.Warn("failed to create session row", zap.Error(err), zap.Int("user_id", u.ID))
		} else {
			su.SessionID = row.ID
		}
	}

	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.Int("user_id", u.ID))
		h.renderFormWithError(w, r, http.StatusInternalServerError,
			"Unable to create session. Please try again.", u.Email, returnURL)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(u.Email)
	}
	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, u.Email)

	def := "/"
	if u.IsAdmin() {
		def = "/admin/users"
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", def), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, email, returnURL string) {
	w.WriteHeader(status)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: returnURL,
	})
}
