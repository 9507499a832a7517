package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"lakeauth/internal/domain"
)

// UserService provides user management operations.
type UserService struct {
	users domain.UserRepository
	authz *Authorizer
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, authz *Authorizer) *UserService {
	return &UserService{users: users, authz: authz}
}

// Create validates and persists a new user. When a password is supplied it is
// bcrypt-hashed and enables username/password login.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := s.authz.Authorize(ctx, domain.ActionCreateUser, domain.UserResource(req.ID)); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var hash []byte
	if req.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	return s.users.Create(ctx, &domain.User{
		ID:           req.ID,
		Email:        req.Email,
		FriendlyName: req.FriendlyName,
	}, hash)
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := s.authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource(id)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// Current returns the authenticated caller. Any authenticated user may read
// their own record.
func (s *UserService) Current(ctx context.Context) (*domain.User, error) {
	return requireUser(ctx)
}

// List returns a page of users ordered by id.
func (s *UserService) List(ctx context.Context, params domain.ListParams) ([]domain.User, bool, error) {
	if err := s.authz.Authorize(ctx, domain.ActionListUsers, domain.AllResources); err != nil {
		return nil, false, err
	}
	return s.users.List(ctx, params)
}

// Delete removes a user. Credentials, group memberships, and policy
// attachments are removed with it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.authz.Authorize(ctx, domain.ActionDeleteUser, domain.UserResource(id)); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
