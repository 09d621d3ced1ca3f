// internal/app/features/profile/edit.go
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	uierrors "github.com/dalemusser/staydesk/internal/app/features/errors"
	"github.com/dalemusser/staydesk/internal/app/features/login"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/authz"
	"github.com/dalemusser/staydesk/internal/app/system/inputval"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// EditInput is the profile form. The rules match registration.
type EditInput struct {
	Name     string `validate:"required,max=100" label:"Name"`
	DialCode string `validate:"required,dialcode" label:"Country code"`
	Phone    string `validate:"required,phone" label:"Phone"`
	Birthday string `validate:"required,pastdate" label:"Birthday"`
	Gender   string `validate:"required,gender" label:"Gender"`
}

type editData struct {
	viewdata.BaseVM
	Error     string
	Errors    *inputval.Result
	Form      EditInput
	DialCodes []string
	Genders   []string
}

func readEditForm(r *http.Request) EditInput {
	return EditInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		DialCode: strings.TrimSpace(r.FormValue("dial_code")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Birthday: strings.TrimSpace(r.FormValue("birthday")),
		Gender:   strings.ToLower(strings.TrimSpace(r.FormValue("gender"))),
	}
}

// formFromUser pre-fills the form. Birthdays may arrive as full
// timestamps; the date input only takes YYYY-MM-DD.
func formFromUser(u models.User) EditInput {
	bday := u.Birthday
	if len(bday) > len("2006-01-02") {
		bday = bday[:len("2006-01-02")]
	}
	return EditInput{
		Name:     u.Name,
		DialCode: inputval.DialCodes[0],
		Phone:    u.Phone,
		Birthday: bday,
		Gender:   login.GenderValue(u.Gender),
	}
}

// ServeEdit shows the profile form.
// GET /profile/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.API.GetUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogUpstream(w, r, "get profile user failed", err, "/profile")
		return
	}
	h.renderEdit(w, r, http.StatusOK, formFromUser(u), nil, "")
}

// HandleEditPost saves the profile through the API and refreshes the
// session's display fields.
// POST /profile/edit
func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile/edit")
		return
	}

	in := readEditForm(r)
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderEdit(w, r, http.StatusBadRequest, in, res, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Email and role are not editable here but the API expects them back.
	cur, err := h.API.GetUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogUpstream(w, r, "get profile user failed", err, "/profile")
		return
	}

	u, err := h.API.UpdateUser(ctx, uid, models.UserUpdate{
		Name:     in.Name,
		Email:    cur.Email,
		Phone:    in.Phone,
		Birthday: in.Birthday,
		Gender:   login.GenderFlag(in.Gender),
		Role:     cur.Role,
	}, authz.Token(r))
	if err != nil {
		h.AuditLog.ProfileUpdated(ctx, r, uid, false, err.Error())
		h.Log.Warn("update profile failed", zap.Int("user_id", uid), zap.Error(err))
		h.renderEdit(w, r, http.StatusBadGateway, in, nil,
			apiclient.Message(err, "Your profile could not be saved. Please try again."))
		return
	}

	h.AuditLog.ProfileUpdated(ctx, r, uid, true, "")
	if err := h.SessionMgr.UpdateProfile(w, r, u.Name, u.Email, u.Avatar); err != nil {
		h.Log.Warn("session profile refresh failed", zap.Error(err))
	}
	if err := h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Profile updated."); err != nil {
		h.Log.Warn("flash save failed", zap.Error(err))
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, status int, in EditInput, res *inputval.Result, msg string) {
	w.WriteHeader(status)
	templates.Render(w, r, "profile_edit", editData{
		BaseVM:    viewdata.NewBaseVM(r, "Edit profile", "/profile"),
		Error:     msg,
		Errors:    res,
		Form:      in,
		DialCodes: inputval.DialCodes,
		Genders:   inputval.Genders,
	})
}
