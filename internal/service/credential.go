package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"fmt"

	"lakeauth/internal/domain"
)

// Access key ids carry an AWS-compatible prefix so generated pairs work with
// S3-style clients.
const accessKeyIDPrefix = "AKIA"

// CredentialService provides access-key pair management operations.
type CredentialService struct {
	creds domain.CredentialRepository
	authz *Authorizer
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(creds domain.CredentialRepository, authz *Authorizer) *CredentialService {
	return &CredentialService{creds: creds, authz: authz}
}

// Create generates a new access-key pair for the user. The secret access key
// is returned once and stored encrypted.
func (s *CredentialService) Create(ctx context.Context, userID string) (*domain.Credentials, error) {
	if err := s.authz.Authorize(ctx, domain.ActionCreateCredentials, domain.UserResource(userID)); err != nil {
		return nil, err
	}

	accessKeyID, err := generateAccessKeyID()
	if err != nil {
		return nil, err
	}
	secret, err := generateSecretAccessKey()
	if err != nil {
		return nil, err
	}

	return s.creds.Create(ctx, &domain.Credentials{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secret,
		UserID:          userID,
	})
}

// Get returns the metadata of a key pair owned by the user. The secret is
// never returned after creation.
func (s *CredentialService) Get(ctx context.Context, userID, accessKeyID string) (*domain.Credentials, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadCredentials, domain.UserResource(userID)); err != nil {
		return nil, err
	}
	return s.creds.Get(ctx, userID, accessKeyID)
}

// List returns a page of the user's key pairs ordered by access key id.
func (s *CredentialService) List(ctx context.Context, userID string, params domain.ListParams) ([]domain.Credentials, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionListCredentials, domain.UserResource(userID)); err != nil {
		return nil, false, err
	}
	return s.creds.ListForUser(ctx, userID, params)
}

// Delete revokes a key pair owned by the user.
func (s *CredentialService) Delete(ctx context.Context, userID, accessKeyID string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDeleteCredentials, domain.UserResource(userID)); err != nil {
		return err
	}
	return s.creds.Delete(ctx, userID, accessKeyID)
}

// generateAccessKeyID returns a 20-character key id in the AKIA... form.
func generateAccessKeyID() (string, error) {
	raw := make([]byte, 10)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate access key id: %w", err)
	}
	return accessKeyIDPrefix + base32.StdEncoding.EncodeToString(raw), nil
}

// generateSecretAccessKey returns a 40-character secret.
func generateSecretAccessKey() (string, error) {
	raw := make([]byte, 30)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate secret access key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
