package service

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"lakeauth/internal/domain"
)

// Mailer delivers password-reset email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// LoginRequest carries either an access-key pair or username/password.
type LoginRequest struct {
	AccessKeyID     string
	SecretAccessKey string
	Username        string
	Password        string
}

// SessionService authenticates callers and manages password lifecycle.
type SessionService struct {
	users  domain.UserRepository
	creds  domain.CredentialRepository
	tokens *TokenService
	mailer Mailer
	log    *slog.Logger
}

// NewSessionService creates a new SessionService. mailer may be nil, which
// disables forgot-password.
func NewSessionService(users domain.UserRepository, creds domain.CredentialRepository, tokens *TokenService, mailer Mailer, log *slog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		creds:  creds,
		tokens: tokens,
		mailer: mailer,
		log:    log.With("component", "session"),
	}
}

// Login verifies the supplied credentials and issues a session token.
// Verification failures all surface as the same AuthenticationError.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	switch {
	case req.AccessKeyID != "":
		return s.loginWithKeyPair(ctx, req.AccessKeyID, req.SecretAccessKey)
	case req.Username != "":
		return s.loginWithPassword(ctx, req.Username, req.Password)
	default:
		return nil, domain.ErrValidation("either an access key pair or username and password is required")
	}
}

func (s *SessionService) loginWithKeyPair(ctx context.Context, accessKeyID, secretAccessKey string) (*domain.Session, error) {
	creds, err := s.creds.GetWithSecret(ctx, accessKeyID)
	if err != nil {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	if subtle.ConstantTimeCompare([]byte(creds.SecretAccessKey), []byte(secretAccessKey)) != 1 {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	return s.tokens.IssueSession(creds.UserID)
}

func (s *SessionService) loginWithPassword(ctx context.Context, username, password string) (*domain.Session, error) {
	hash, err := s.users.HashedPassword(ctx, username)
	if err != nil || len(hash) == 0 {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	return s.tokens.IssueSession(username)
}

// VerifySession resolves a session token to its user.
func (s *SessionService) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.VerifySession(token)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// VerifyKeyPair resolves an access-key pair to its user. Used by the
// basic-auth middleware path.
func (s *SessionService) VerifyKeyPair(ctx context.Context, accessKeyID, secretAccessKey string) (*domain.User, error) {
	creds, err := s.creds.GetWithSecret(ctx, accessKeyID)
	if err != nil {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	if subtle.ConstantTimeCompare([]byte(creds.SecretAccessKey), []byte(secretAccessKey)) != 1 {
		return nil, domain.ErrAuthentication("invalid credentials")
	}
	return s.users.GetByID(ctx, creds.UserID)
}

// ForgotPassword issues a reset token for the account with the given email
// and mails it. It never reveals whether the email is registered.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) error {
	if s.mailer == nil {
		return domain.ErrValidation("password reset is not supported")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.log.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}
	token, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		s.log.ErrorContext(ctx, "failed to send password reset email", "error", err)
	}
	return nil
}

// UpdatePassword sets a new password for the user identified by the reset
// token.
func (s *SessionService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return domain.ErrValidation("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Capabilities reports the optional auth features this installation supports.
func (s *SessionService) Capabilities() domain.AuthCapabilities {
	return domain.AuthCapabilities{
		InviteUser:     false,
		ForgotPassword: s.mailer != nil,
	}
}
