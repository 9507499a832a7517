package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeauth/internal/domain"
)

func attachPolicy(t *testing.T, env *testEnv, userID string, statements ...domain.Statement) {
	t.Helper()
	ctx := context.Background()
	p := &domain.Policy{ID: "test-" + userID, Statement: statements}
	_, err := env.PolicyRepo.Create(ctx, p)
	require.NoError(t, err)
	require.NoError(t, env.PolicyRepo.AttachToUser(ctx, p.ID, userID))
}

func TestAuthorizer_Allow(t *testing.T) {
	env := setupEnv(t)
	authz := NewAuthorizer(env.PolicyRepo)
	ctx := env.userContext(t, "jane")
	attachPolicy(t, env, "jane", domain.Statement{
		Effect:   domain.EffectAllow,
		Resource: domain.UserResource("jane"),
		Action:   []string{domain.ActionReadUser},
	})

	assert.NoError(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("jane")))

	// Different resource or action is denied.
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("bob")), &denied)
	assert.ErrorAs(t, authz.Authorize(ctx, domain.ActionDeleteUser, domain.UserResource("jane")), &denied)
}

func TestAuthorizer_DenyWins(t *testing.T) {
	env := setupEnv(t)
	authz := NewAuthorizer(env.PolicyRepo)
	ctx := env.userContext(t, "jane")
	attachPolicy(t, env, "jane",
		domain.Statement{
			Effect:   domain.EffectAllow,
			Resource: domain.AllResources,
			Action:   []string{"auth:*"},
		},
		domain.Statement{
			Effect:   domain.EffectDeny,
			Resource: domain.AllResources,
			Action:   []string{domain.ActionDeleteUser},
		},
	)

	assert.NoError(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("bob")))

	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, authz.Authorize(ctx, domain.ActionDeleteUser, domain.UserResource("bob")), &denied)
}

func TestAuthorizer_WildcardPatterns(t *testing.T) {
	env := setupEnv(t)
	authz := NewAuthorizer(env.PolicyRepo)
	ctx := env.userContext(t, "jane")
	attachPolicy(t, env, "jane", domain.Statement{
		Effect:   domain.EffectAllow,
		Resource: "auth/user/dev-*",
		Action:   []string{"auth:Read*"},
	})

	assert.NoError(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("dev-bob")))

	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("ops-bob")), &denied)
	assert.ErrorAs(t, authz.Authorize(ctx, domain.ActionCreateUser, domain.UserResource("dev-bob")), &denied)
}

func TestAuthorizer_GroupPolicies(t *testing.T) {
	env := setupEnv(t)
	authz := NewAuthorizer(env.PolicyRepo)
	ctx := env.userContext(t, "jane")
	bg := context.Background()

	_, err := env.GroupRepo.Create(bg, &domain.Group{ID: "readers"})
	require.NoError(t, err)
	require.NoError(t, env.GroupRepo.AddMember(bg, "readers", "jane"))

	_, err = env.PolicyRepo.Create(bg, &domain.Policy{
		ID: "GroupRead",
		Statement: []domain.Statement{
			{Effect: domain.EffectAllow, Resource: domain.AllResources, Action: []string{"auth:Read*"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, env.PolicyRepo.AttachToGroup(bg, "GroupRead", "readers"))

	assert.NoError(t, authz.Authorize(ctx, domain.ActionReadUser, domain.UserResource("bob")))
}

func TestAuthorizer_Unauthenticated(t *testing.T) {
	env := setupEnv(t)
	authz := NewAuthorizer(env.PolicyRepo)

	err := authz.Authorize(context.Background(), domain.ActionReadUser, domain.AllResources)
	var authErr *domain.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}
