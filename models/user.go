// Package models defines the domain types and the request/response shapes
// the API exchanges.
//
// json tags decide how fields are serialised; `json:"-"` keeps a field out of
// every API response.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never sent to clients
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the body of POST /api/register.
// The service hashes Password; it is never stored as given.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate normalises and checks the request:
//   - name: required, at most 64 characters
//   - email: required, must contain "@", stored lower-case
//   - username: 3-32 characters, letters, digits and underscore
//   - password: at least 8 characters
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Username = strings.TrimSpace(r.Username)

	if r.Name == "" || r.Email == "" || r.Username == "" || r.Password == "" {
		return fmt.Errorf("name, email, username and password are required")
	}
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := validateUsername(r.Username); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

// LoginRequest is the body of POST /api/login.
// Either Email or Username identifies the account; Login is a single field
// alternative that is treated as an email when it contains "@".
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate normalises the identifier fields and checks presence.
func (r *LoginRequest) Validate() error {
	if login := strings.TrimSpace(r.Login); login != "" && r.Email == "" && r.Username == "" {
		if strings.Contains(login, "@") {
			r.Email = login
		} else {
			r.Username = login
		}
	}

	r.Email = normalizeEmail(r.Email)
	r.Username = strings.TrimSpace(r.Username)

	if r.Email == "" && r.Username == "" {
		return fmt.Errorf("email or username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest is the body of PUT /api/update-profile.
// nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Validate applies the same rules as registration to the fields that are set.
// A request with no fields at all is rejected.
func (r *UpdateProfileRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.Username == nil && r.Password == nil {
		return fmt.Errorf("at least one of name, email, username or password is required")
	}

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
		if name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		if err := validateName(name); err != nil {
			return err
		}
	}
	if r.Email != nil {
		email := normalizeEmail(*r.Email)
		r.Email = &email
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if r.Username != nil {
		username := strings.TrimSpace(*r.Username)
		r.Username = &username
		if err := validateUsername(username); err != nil {
			return err
		}
	}
	if r.Password != nil {
		if err := validatePassword(*r.Password); err != nil {
			return err
		}
	}
	return nil
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > 64 {
		return fmt.Errorf("name must be at most 64 characters")
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return fmt.Errorf("email is invalid")
	}
	if utf8.RuneCountInString(email) > 254 {
		return fmt.Errorf("email is too long")
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	for _, ch := range username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// isValidUsernameChar reports whether ch may appear in a username.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
