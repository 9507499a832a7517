package authclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers lists users ordered by ID.
func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*UserList, error) {
	var out UserList
	if err := c.doJSON(ctx, http.MethodGet, "/auth/users", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates a user.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/users", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser returns a user by ID.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/users/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user along with its memberships, policy attachments,
// and credentials.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/auth/users/"+url.PathEscape(userID), nil, nil, nil)
}

// ListUserGroups lists the groups the user belongs to.
func (c *Client) ListUserGroups(ctx context.Context, userID string, opts ListOptions) (*GroupList, error) {
	var out GroupList
	path := "/auth/users/" + url.PathEscape(userID) + "/groups"
	if err := c.doJSON(ctx, http.MethodGet, path, opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserPolicies lists policies attached to the user. With effective set,
// policies inherited through group membership are included.
func (c *Client) ListUserPolicies(ctx context.Context, userID string, effective bool, opts ListOptions) (*PolicyList, error) {
	q := opts.values()
	if effective {
		q.Set("effective", "true")
	}
	var out PolicyList
	path := "/auth/users/" + url.PathEscape(userID) + "/policies"
	if err := c.doJSON(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttachPolicyToUser attaches a policy directly to a user.
func (c *Client) AttachPolicyToUser(ctx context.Context, policyID, userID string) error {
	path := "/auth/users/" + url.PathEscape(userID) + "/policies/" + url.PathEscape(policyID)
	return c.doJSON(ctx, http.MethodPut, path, nil, nil, nil)
}

// DetachPolicyFromUser removes a direct policy attachment.
func (c *Client) DetachPolicyFromUser(ctx context.Context, policyID, userID string) error {
	path := "/auth/users/" + url.PathEscape(userID) + "/policies/" + url.PathEscape(policyID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
