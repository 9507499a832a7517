package authclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListPolicies lists policies ordered by ID.
func (c *Client) ListPolicies(ctx context.Context, opts ListOptions) (*PolicyList, error) {
	var out PolicyList
	if err := c.doJSON(ctx, http.MethodGet, "/auth/policies", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePolicy creates a policy.
func (c *Client) CreatePolicy(ctx context.Context, policy Policy) (*Policy, error) {
	var out Policy
	if err := c.doJSON(ctx, http.MethodPost, "/auth/policies", nil, policy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPolicy returns a policy by ID.
func (c *Client) GetPolicy(ctx context.Context, policyID string) (*Policy, error) {
	var out Policy
	if err := c.doJSON(ctx, http.MethodGet, "/auth/policies/"+url.PathEscape(policyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePolicy replaces the statements of an existing policy. The policy ID
// in the body must match policyID.
func (c *Client) UpdatePolicy(ctx context.Context, policyID string, policy Policy) (*Policy, error) {
	var out Policy
	if err := c.doJSON(ctx, http.MethodPut, "/auth/policies/"+url.PathEscape(policyID), nil, policy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePolicy removes a policy and all its attachments.
func (c *Client) DeletePolicy(ctx context.Context, policyID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/auth/policies/"+url.PathEscape(policyID), nil, nil, nil)
}
