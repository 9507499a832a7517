package authclient

import (
	"context"
	"net/http"
	"net/url"
)

// ListCredentials lists the user's access key IDs.
func (c *Client) ListCredentials(ctx context.Context, userID string, opts ListOptions) (*CredentialsList, error) {
	var out CredentialsList
	path := "/auth/users/" + url.PathEscape(userID) + "/credentials"
	if err := c.doJSON(ctx, http.MethodGet, path, opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCredentials generates a new access key pair for the user. The secret
// is returned here and never again.
func (c *Client) CreateCredentials(ctx context.Context, userID string) (*CredentialsWithSecret, error) {
	var out CredentialsWithSecret
	path := "/auth/users/" + url.PathEscape(userID) + "/credentials"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCredentials returns credential metadata, without the secret.
func (c *Client) GetCredentials(ctx context.Context, userID, accessKeyID string) (*Credentials, error) {
	var out Credentials
	path := "/auth/users/" + url.PathEscape(userID) + "/credentials/" + url.PathEscape(accessKeyID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCredentials revokes an access key pair.
func (c *Client) DeleteCredentials(ctx context.Context, userID, accessKeyID string) error {
	path := "/auth/users/" + url.PathEscape(userID) + "/credentials/" + url.PathEscape(accessKeyID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
