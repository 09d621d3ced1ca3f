package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/staydesk/internal/app/apiclient"
	"github.com/dalemusser/staydesk/internal/app/system/auth"
	"github.com/dalemusser/staydesk/internal/app/system/inputval"
	"github.com/dalemusser/staydesk/internal/app/system/timeouts"
	"github.com/dalemusser/staydesk/internal/app/system/viewdata"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// RegisterInput is the register form. Exported so the profile edit form
// can reuse the same rules.
type RegisterInput struct {
	Name     string `validate:"required,max=100" label:"Name"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required,hasletter" label:"Password"`
	DialCode string `validate:"required,dialcode" label:"Country code"`
	Phone    string `validate:"required,phone" label:"Phone"`
	Birthday string `validate:"required,pastdate" label:"Birthday"`
	Gender   string `validate:"required,gender" label:"Gender"`
}

type registerFormData struct {
	viewdata.BaseVM
	Error     string
	Errors    *inputval.Result
	Form      RegisterInput
	DialCodes []string
	Genders   []string
}

func readRegisterForm(r *http.Request) RegisterInput {
	return RegisterInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		DialCode: strings.TrimSpace(r.FormValue("dial_code")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Birthday: strings.TrimSpace(r.FormValue("birthday")),
		Gender:   strings.ToLower(strings.TrimSpace(r.FormValue("gender"))),
	}
}

// GenderFlag maps the form value onto the API's boolean. "other" has no
// API representation and is sent as false.
func GenderFlag(g string) bool {
	return strings.EqualFold(g, "male")
}

// GenderValue is the inverse of GenderFlag for pre-filling forms.
func GenderValue(flag bool) string {
	if flag {
		return "male"
	}
	return "female"
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, RegisterInput{DialCode: inputval.DialCodes[0]}, nil, "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	in := readRegisterForm(r)
	if res := inputval.Validate(in); res.HasErrors() {
		in.Password = ""
		h.renderRegister(w, r, http.StatusBadRequest, in, res, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.API.SignUp(ctx, models.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
		Birthday: in.Birthday,
		Gender:   GenderFlag(in.Gender),
		Role:     models.RoleUser,
	})
	if err != nil {
		h.AuditLog.RegisterFailed(ctx, r, in.Email, err.Error())
		h.Log.Info("register rejected", zap.String("email", in.Email), zap.Error(err))
		in.Password = ""
		h.renderRegister(w, r, http.StatusBadRequest, in, nil,
			apiclient.Message(err, "Registration failed. Please try again."))
		return
	}

	h.AuditLog.Registered(ctx, r, u.ID, u.Email)
	if err := h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, "Account created. Please sign in."); err != nil {
		h.Log.Warn("flash save failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, in RegisterInput, errs *inputval.Result, msg string) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "register", registerFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Create account", "/login"),
		Error:     msg,
		Errors:    errs,
		Form:      in,
		DialCodes: inputval.DialCodes,
		Genders:   inputval.Genders,
	})
}
