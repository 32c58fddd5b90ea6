package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreate carries sign-up credentials.
type UserCreate struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

func (c UserCreate) Validate() error {
	var v ValidationErrors
	c.validate(&v, "")
	return v.Err()
}

func (c UserCreate) validate(v *ValidationErrors, prefix string) {
	v.email(prefixed(prefix, "email"), c.Email)
	n := utf8.RuneCountInString(c.Password)
	switch {
	case n == 0:
		v.add(prefixed(prefix, "password"), "field required")
	case n < 8:
		v.add(prefixed(prefix, "password"), "ensure this value has at least 8 characters")
	case n > 40:
		v.add(prefixed(prefix, "password"), "ensure this value has at most 40 characters")
	}
	v.optionalText(prefixed(prefix, "full_name"), c.FullName, 255)
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccessToken is the login response.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
