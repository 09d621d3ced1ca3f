// internal/domain/models/user.go
package models

import "strings"

// Roles issued by the marketplace API.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is a marketplace account as returned by the marketplace API.
// Gender is true for male and false otherwise; the API has no third value.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Avatar   string `json:"avatar"`
	Gender   bool   `json:"gender"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the account carries the ADMIN role.
func (u User) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(u.Role), RoleAdmin)
}

// GenderLabel returns the display label for the stored gender flag.
func (u User) GenderLabel() string {
	if u.Gender {
		return "Male"
	}
	return "Female"
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Gender   bool   `json:"gender"`
	Role     string `json:"role"`
}

// UserUpdate is the payload for editing a profile.
type UserUpdate struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Gender   bool   `json:"gender"`
	Role     string `json:"role"`
}

// SignIn is the content of a successful sign-in response.
type SignIn struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
