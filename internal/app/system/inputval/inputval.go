// Package inputval validates form input with struct tags.
//
//	type registerInput struct {
//	    Name  string `validate:"required,max=100" label:"Name"`
//	    Phone string `validate:"required,phone" label:"Phone"`
//	}
//
// Messages use the label tag, so they can go straight onto the page.
package inputval

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects every failed rule in field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for a field (by label), or "".
func (r *Result) For(label string) string {
	if r == nil {
		return ""
	}
	for _, e := range r.Errors {
		if e.Field == label {
			return e.Message
		}
	}
	return ""
}

// DialCodes are the country calling codes offered on the register form.
var DialCodes = []string{"+84", "+44", "+61"}

// Genders accepted by the register and profile forms.
var Genders = []string{"male", "female", "other"}

var (
	phoneRE = regexp.MustCompile(`^0\d{9}$`)

	// now is swapped in tests.
	now = time.Now

	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		mustRegister("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		mustRegister("hasletter", func(fl validator.FieldLevel) bool {
			return HasLetter(fl.Field().String())
		})
		mustRegister("pastdate", func(fl validator.FieldLevel) bool {
			return IsPastDate(fl.Field().String())
		})
		mustRegister("dialcode", func(fl validator.FieldLevel) bool {
			return contains(DialCodes, fl.Field().String())
		})
		mustRegister("gender", func(fl validator.FieldLevel) bool {
			return contains(Genders, strings.ToLower(fl.Field().String()))
		})
	})
	return v
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("inputval: register %s: %v", tag, err))
	}
}

// Validate checks s (a struct or pointer to one) against its validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "phone":
		return label + " must be 10 digits starting with 0."
	case "hasletter":
		return label + " must contain at least one letter."
	case "pastdate":
		return label + " must be a valid date that is not in the future."
	case "dialcode":
		return label + " must be one of " + strings.Join(DialCodes, ", ") + "."
	case "gender":
		return label + " must be male, female or other."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "url", "http_url":
		return label + " must be a valid URL."
	}
	return label + " is invalid."
}

// IsValidEmail reports whether s is a single bare address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && instance().Var(s, "email") == nil
}

// IsValidPhone reports whether s is a 10-digit local number starting with 0.
func IsValidPhone(s string) bool {
	return phoneRE.MatchString(strings.TrimSpace(s))
}

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// IsPastDate reports whether s is a YYYY-MM-DD date no later than today.
func IsPastDate(s string) bool {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return false
	}
	today := now()
	return !d.After(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
