package domain

import (
	"strings"
	"time"
)

// Group is a named collection of users. Policies attached to a group apply
// to all of its members.
type Group struct {
	ID        string
	CreatedAt time.Time
}

// CreateGroupRequest holds parameters for creating a new group.
type CreateGroupRequest struct {
	ID string
}

// Validate checks that the request is well-formed.
func (r *CreateGroupRequest) Validate() error {
	if r.ID == "" {
		return ErrValidation("group id is required")
	}
	if strings.ContainsAny(r.ID, " /") {
		return ErrValidation("group id must not contain spaces or slashes")
	}
	return nil
}
