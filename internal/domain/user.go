package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User represents an identity that can authenticate against the service.
// The ID is the username and is unique across the installation.
type User struct {
	ID           string
	Email        string // optional, unique when set
	FriendlyName string
	Source       string // "internal" or an external IdP issuer
	CreatedAt    time.Time
}

// CreateUserRequest holds parameters for creating a new user.
type CreateUserRequest struct {
	ID           string
	Email        string
	FriendlyName string
	Password     string // optional, enables username/password login
}

// Validate checks that the request is well-formed.
func (r *CreateUserRequest) Validate() error {
	if r.ID == "" {
		return ErrValidation("user id is required")
	}
	if strings.ContainsAny(r.ID, " /") {
		return ErrValidation("user id must not contain spaces or slashes")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return ErrValidation("invalid email address %q", r.Email)
		}
	}
	if r.Password != "" && len(r.Password) < 8 {
		return ErrValidation("password must be at least 8 characters")
	}
	return nil
}
