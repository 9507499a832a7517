// Package middleware provides the HTTP middleware of the auth service:
// authentication, request ids, logging, and rate limiting.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"lakeauth/internal/domain"
	"lakeauth/internal/service"
)

// Authenticator resolves request credentials to a user and stores it in the
// request context. Two schemes are accepted: a Bearer session token, or HTTP
// basic auth carrying an access-key pair.
type Authenticator struct {
	sessions *service.SessionService
	oidc     OIDCUserResolver
	log      *slog.Logger
}

// OIDCUserResolver resolves an externally issued bearer token to a user.
// Optional; when nil only locally issued tokens are accepted.
type OIDCUserResolver interface {
	ResolveUser(r *http.Request, token string) (*domain.User, error)
}

// NewAuthenticator creates the authentication middleware. oidc may be nil.
func NewAuthenticator(sessions *service.SessionService, oidc OIDCUserResolver, log *slog.Logger) *Authenticator {
	return &Authenticator{sessions: sessions, oidc: oidc, log: log.With("component", "auth")}
}

// Middleware authenticates the request or responds 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.authenticate(r)
		if err != nil {
			a.log.DebugContext(r.Context(), "authentication failed", "error", err)
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), u)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (*domain.User, error) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		u, err := a.sessions.VerifySession(r.Context(), token)
		if err == nil {
			return u, nil
		}
		if a.oidc != nil {
			return a.oidc.ResolveUser(r, token)
		}
		return nil, err
	}

	if accessKeyID, secret, ok := r.BasicAuth(); ok {
		return a.sessions.VerifyKeyPair(r.Context(), accessKeyID, secret)
	}

	return nil, domain.ErrAuthentication("no credentials provided")
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "error authenticating request",
	})
}
