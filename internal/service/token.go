package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lakeauth/internal/domain"
)

// Token audiences. Session tokens authenticate API calls; reset tokens are
// only good for changing a password.
const (
	audienceLogin         = "login"
	audiencePasswordReset = "reset_password"
)

// TokenService issues and verifies the service's HS256 JWTs.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret []byte, sessionTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, sessionTTL: sessionTTL, resetTTL: resetTTL}
}

// IssueSession creates a login token for the given user.
func (s *TokenService) IssueSession(userID string) (*domain.Session, error) {
	expires := time.Now().Add(s.sessionTTL)
	token, err := s.sign(userID, audienceLogin, expires)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, TokenExpiration: expires}, nil
}

// IssueReset creates a short-lived password-reset token for the given user.
func (s *TokenService) IssueReset(userID string) (string, error) {
	return s.sign(userID, audiencePasswordReset, time.Now().Add(s.resetTTL))
}

// VerifySession validates a login token and returns the subject user id.
func (s *TokenService) VerifySession(token string) (string, error) {
	return s.verify(token, audienceLogin)
}

// VerifyReset validates a password-reset token and returns the subject user id.
func (s *TokenService) VerifyReset(token string) (string, error) {
	return s.verify(token, audiencePasswordReset)
}

func (s *TokenService) sign(userID, audience string, expires time.Time) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) verify(token, audience string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", domain.ErrAuthentication("invalid token")
	}
	if claims.Subject == "" {
		return "", domain.ErrAuthentication("invalid token")
	}
	return claims.Subject, nil
}
