package authclient

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a session token. On success the token is
// stored on the client and used for subsequent requests.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthenticationToken, error) {
	var out AuthenticationToken
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	c.Token = out.Token
	return &out, nil
}

// GetAuthCapabilities reports which optional auth flows the server supports.
// Requires no authentication.
func (c *Client) GetAuthCapabilities(ctx context.Context) (*AuthCapabilities, error) {
	var out AuthCapabilities
	if err := c.doJSON(ctx, http.MethodGet, "/auth/capabilities", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a password-reset email. Succeeds regardless of
// whether the address is known.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.doJSON(ctx, http.MethodPost, "/auth/password/forgot", nil, body, nil)
}

// UpdatePassword sets a new password using the reset token from the
// password-reset email. The token authorizes the request, not the session.
func (c *Client) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	body := struct {
		NewPassword string `json:"new_password"`
	}{NewPassword: newPassword}

	// The reset token replaces whatever auth the client carries.
	reset := *c
	reset.Token = resetToken
	reset.AccessKeyID = ""
	reset.SecretAccessKey = ""
	return reset.doJSON(ctx, http.MethodPost, "/auth/password", nil, body, nil)
}

// GetCurrentUser returns the user the client is authenticated as.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
