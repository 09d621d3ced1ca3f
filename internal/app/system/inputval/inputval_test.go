package inputval

import (
	"testing"
	"time"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user123@example.co.uk", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"0912345678", true},
		{" 0912345678 ", true},
		{"912345678", false},
		{"09123456789", false},
		{"1912345678", false},
		{"09123a5678", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestHasLetter(t *testing.T) {
	if HasLetter("123456") {
		t.Error("digits only should fail")
	}
	if !HasLetter("12345a") || !HasLetter("mậtkhẩu") {
		t.Error("expected letters to be detected")
	}
}

func TestIsPastDate(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	tests := []struct {
		in   string
		want bool
	}{
		{"2000-01-31", true},
		{"2024-06-15", true},
		{"2024-06-16", false},
		{"15/06/2000", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsPastDate(tt.in); got != tt.want {
				t.Errorf("IsPastDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{"valid input", TestInput{Name: "John", Email: "john@example.com"}, false, ""},
		{"missing name", TestInput{Name: "", Email: "john@example.com"}, true, "Full name is required."},
		{"name too long", TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"}, true, "Full name must be at most 10 characters."},
		{"invalid email", TestInput{Name: "John", Email: "not-an-email"}, true, "A valid email address is required."},
		{"missing both", TestInput{}, true, "Full name is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.HasErrors() != tt.wantErrors {
				t.Errorf("HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type Input struct {
		Password string `validate:"required,hasletter" label:"Password"`
		DialCode string `validate:"required,dialcode" label:"Country code"`
		Phone    string `validate:"required,phone" label:"Phone"`
		Gender   string `validate:"required,gender" label:"Gender"`
	}

	ok := Input{Password: "abc123", DialCode: "+84", Phone: "0912345678", Gender: "Other"}
	if res := Validate(ok); res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.All())
	}

	bad := Input{Password: "123456", DialCode: "+1", Phone: "12345", Gender: "x"}
	res := Validate(bad)
	if len(res.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(res.Errors), res.All())
	}
	if got := res.For("Password"); got != "Password must contain at least one letter." {
		t.Errorf("Password message = %q", got)
	}
	if got := res.For("Country code"); got != "Country code must be one of +84, +44, +61." {
		t.Errorf("Country code message = %q", got)
	}
	if got := res.For("Phone"); got != "Phone must be 10 digits starting with 0." {
		t.Errorf("Phone message = %q", got)
	}
}

func TestResult(t *testing.T) {
	var nilRes *Result
	if nilRes.HasErrors() || nilRes.First() != "" || nilRes.All() != "" || nilRes.For("x") != "" {
		t.Error("nil Result should behave as empty")
	}

	r := &Result{Errors: []FieldError{{Field: "A", Message: "Error 1"}, {Field: "B", Message: "Error 2"}}}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q", r.First())
	}
	if r.For("B") != "Error 2" {
		t.Errorf("For(B) = %q", r.For("B"))
	}
}
