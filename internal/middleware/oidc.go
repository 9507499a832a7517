package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"lakeauth/internal/domain"
)

// OIDCResolver accepts bearer tokens issued by an external identity provider
// and maps them to existing users by subject. Users provisioned for external
// login carry the issuer as their Source.
type OIDCResolver struct {
	verifier *oidc.IDTokenVerifier
	issuer   string
	users    domain.UserRepository
}

// NewOIDCResolver discovers the provider configuration from the issuer URL.
func NewOIDCResolver(ctx context.Context, issuerURL, clientID string, users domain.UserRepository) (*OIDCResolver, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCResolver{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		issuer:   issuerURL,
		users:    users,
	}, nil
}

// ResolveUser verifies the token and looks up the user named by its subject.
// The user must already exist and must have been provisioned for this issuer.
func (o *OIDCResolver) ResolveUser(r *http.Request, token string) (*domain.User, error) {
	idToken, err := o.verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, domain.ErrAuthentication("invalid token")
	}
	u, err := o.users.GetByID(r.Context(), idToken.Subject)
	if err != nil {
		return nil, domain.ErrAuthentication("unknown external user")
	}
	if u.Source != o.issuer {
		return nil, domain.ErrAuthentication("user is not an external identity")
	}
	return u, nil
}
