package authclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListGroups lists groups ordered by ID.
func (c *Client) ListGroups(ctx context.Context, opts ListOptions) (*GroupList, error) {
	var out GroupList
	if err := c.doJSON(ctx, http.MethodGet, "/auth/groups", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGroup creates a group.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	var out Group
	if err := c.doJSON(ctx, http.MethodPost, "/auth/groups", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGroup returns a group by ID.
func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	var out Group
	if err := c.doJSON(ctx, http.MethodGet, "/auth/groups/"+url.PathEscape(groupID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGroup removes a group along with its memberships and policy
// attachments.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/auth/groups/"+url.PathEscape(groupID), nil, nil, nil)
}

// ListGroupMembers lists the users in a group.
func (c *Client) ListGroupMembers(ctx context.Context, groupID string, opts ListOptions) (*UserList, error) {
	var out UserList
	path := "/auth/groups/" + url.PathEscape(groupID) + "/members"
	if err := c.doJSON(ctx, http.MethodGet, path, opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddGroupMembership adds a user to a group.
func (c *Client) AddGroupMembership(ctx context.Context, groupID, userID string) error {
	path := "/auth/groups/" + url.PathEscape(groupID) + "/members/" + url.PathEscape(userID)
	return c.doJSON(ctx, http.MethodPut, path, nil, nil, nil)
}

// DeleteGroupMembership removes a user from a group.
func (c *Client) DeleteGroupMembership(ctx context.Context, groupID, userID string) error {
	path := "/auth/groups/" + url.PathEscape(groupID) + "/members/" + url.PathEscape(userID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// ListGroupPolicies lists policies attached to a group.
func (c *Client) ListGroupPolicies(ctx context.Context, groupID string, opts ListOptions) (*PolicyList, error) {
	var out PolicyList
	path := "/auth/groups/" + url.PathEscape(groupID) + "/policies"
	if err := c.doJSON(ctx, http.MethodGet, path, opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttachPolicyToGroup attaches a policy to a group.
func (c *Client) AttachPolicyToGroup(ctx context.Context, policyID, groupID string) error {
	path := "/auth/groups/" + url.PathEscape(groupID) + "/policies/" + url.PathEscape(policyID)
	return c.doJSON(ctx, http.MethodPut, path, nil, nil, nil)
}

// DetachPolicyFromGroup removes a policy attachment from a group.
func (c *Client) DetachPolicyFromGroup(ctx context.Context, policyID, groupID string) error {
	path := "/auth/groups/" + url.PathEscape(groupID) + "/policies/" + url.PathEscape(policyID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
