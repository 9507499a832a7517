package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "lakeauth/internal/db"
	"lakeauth/internal/db/crypto"
	"lakeauth/internal/db/repository"
	"lakeauth/internal/domain"
)

const testEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000001"

// testEnv wires the full service stack over a migrated temp database.
type testEnv struct {
	Users    *UserService
	Groups   *GroupService
	Policies *PolicyService
	Creds    *CredentialService
	Sessions *SessionService
	Tokens   *TokenService

	UserRepo   domain.UserRepository
	GroupRepo  domain.GroupRepository
	PolicyRepo domain.PolicyRepository
	CredRepo   domain.CredentialRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	require.NoError(t, err)

	userRepo := repository.NewUserRepo(writeDB, readDB)
	groupRepo := repository.NewGroupRepo(writeDB, readDB)
	policyRepo := repository.NewPolicyRepo(writeDB, readDB)
	credRepo := repository.NewCredentialRepo(writeDB, readDB, enc)

	authz := NewAuthorizer(policyRepo)
	tokens := NewTokenService([]byte("test-secret"), time.Hour, 10*time.Minute)
	log := slog.New(slog.DiscardHandler)

	return &testEnv{
		Users:    NewUserService(userRepo, authz),
		Groups:   NewGroupService(groupRepo, authz),
		Policies: NewPolicyService(policyRepo, authz),
		Creds:    NewCredentialService(credRepo, authz),
		Sessions: NewSessionService(userRepo, credRepo, tokens, nil, log),
		Tokens:   tokens,

		UserRepo:   userRepo,
		GroupRepo:  groupRepo,
		PolicyRepo: policyRepo,
		CredRepo:   credRepo,
	}
}

// adminContext creates an admin user with a full-access policy and returns a
// context authenticated as that user.
func (e *testEnv) adminContext(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()

	admin, err := e.UserRepo.Create(ctx, &domain.User{ID: "admin"}, nil)
	require.NoError(t, err)

	_, err = e.PolicyRepo.Create(ctx, &domain.Policy{
		ID: "FullAccess",
		Statement: []domain.Statement{
			{Effect: domain.EffectAllow, Resource: domain.AllResources, Action: []string{"*"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, e.PolicyRepo.AttachToUser(ctx, "FullAccess", "admin"))

	return domain.WithUser(ctx, admin)
}

// userContext creates a plain user with no policies attached and returns a
// context authenticated as that user.
func (e *testEnv) userContext(t *testing.T, id string) context.Context {
	t.Helper()
	ctx := context.Background()
	u, err := e.UserRepo.Create(ctx, &domain.User{ID: id}, nil)
	require.NoError(t, err)
	return domain.WithUser(ctx, u)
}
