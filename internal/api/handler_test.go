package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "lakeauth/internal/db"
	"lakeauth/internal/db/crypto"
	"lakeauth/internal/db/repository"
	"lakeauth/internal/domain"
	"lakeauth/internal/middleware"
	"lakeauth/internal/service"
)

const testEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000001"

type testServer struct {
	*httptest.Server
	adminToken string
	tokens     *service.TokenService
	users      domain.UserRepository
	policies   domain.PolicyRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	require.NoError(t, err)
	log := slog.New(slog.DiscardHandler)

	userRepo := repository.NewUserRepo(writeDB, readDB)
	groupRepo := repository.NewGroupRepo(writeDB, readDB)
	policyRepo := repository.NewPolicyRepo(writeDB, readDB)
	credRepo := repository.NewCredentialRepo(writeDB, readDB, enc)

	authz := service.NewAuthorizer(policyRepo)
	tokens := service.NewTokenService([]byte("test-secret"), time.Hour, time.Minute)
	sessions := service.NewSessionService(userRepo, credRepo, tokens, nil, log)
	auth := middleware.NewAuthenticator(sessions, nil, log)

	handler := NewHandler(
		service.NewUserService(userRepo, authz),
		service.NewGroupService(groupRepo, authz),
		service.NewPolicyService(policyRepo, authz),
		service.NewCredentialService(credRepo, authz),
		sessions,
		auth,
		log,
	)

	ctx := context.Background()
	_, err = userRepo.Create(ctx, &domain.User{ID: "admin"}, nil)
	require.NoError(t, err)
	_, err = policyRepo.Create(ctx, &domain.Policy{
		ID: "FullAccess",
		Statement: []domain.Statement{
			{Effect: domain.EffectAllow, Resource: domain.AllResources, Action: []string{"*"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, policyRepo.AttachToUser(ctx, "FullAccess", "admin"))

	session, err := tokens.IssueSession("admin")
	require.NoError(t, err)

	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return &testServer{
		Server:     srv,
		adminToken: session.Token,
		tokens:     tokens,
		users:      userRepo,
		policies:   policyRepo,
	}
}

// do issues a request with the admin token and decodes the JSON response into
// out when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	return s.doWithToken(t, s.adminToken, method, path, body, out)
}

func (s *testServer) doWithToken(t *testing.T, token, method, path string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHandler_UserLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var created User
	status := srv.do(t, http.MethodPost, "/auth/users", CreateUserRequest{
		ID: "jane", Email: "jane@example.com", FriendlyName: "Jane Doe",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "jane", created.ID)
	assert.NotZero(t, created.CreationDate)

	// Duplicate id conflicts.
	status = srv.do(t, http.MethodPost, "/auth/users", CreateUserRequest{ID: "jane"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	var got User
	status = srv.do(t, http.MethodGet, "/auth/users/jane", nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jane@example.com", got.Email)

	status = srv.do(t, http.MethodGet, "/auth/users/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = srv.do(t, http.MethodDelete, "/auth/users/jane", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status = srv.do(t, http.MethodDelete, "/auth/users/jane", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_ListUsersPagination(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		status := srv.do(t, http.MethodPost, "/auth/users",
			CreateUserRequest{ID: fmt.Sprintf("user-%d", i)}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var page UserList
	status := srv.do(t, http.MethodGet, "/auth/users?amount=2&prefix=user-", nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, page.Pagination.HasMore)
	assert.Equal(t, 2, page.Pagination.Results)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "user-1", page.Pagination.NextOffset)

	var rest UserList
	status = srv.do(t, http.MethodGet, "/auth/users?amount=2&prefix=user-&after="+page.Pagination.NextOffset, nil, &rest)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, rest.Pagination.HasMore)
	require.Len(t, rest.Results, 1)
	assert.Equal(t, "user-2", rest.Results[0].ID)
}

func TestHandler_InvalidAmount(t *testing.T) {
	srv := newTestServer(t)
	status := srv.do(t, http.MethodGet, "/auth/users?amount=banana", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_AuthRequired(t *testing.T) {
	srv := newTestServer(t)

	status := srv.doWithToken(t, "", http.MethodGet, "/auth/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = srv.doWithToken(t, "garbage", http.MethodGet, "/auth/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandler_Forbidden(t *testing.T) {
	srv := newTestServer(t)

	// A user with no policies can authenticate but not act.
	_, err := srv.users.Create(context.Background(), &domain.User{ID: "nobody"}, nil)
	require.NoError(t, err)
	session, err := srv.tokens.IssueSession("nobody")
	require.NoError(t, err)

	status := srv.doWithToken(t, session.Token, http.MethodGet, "/auth/users", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// But it can still read itself.
	var me User
	status = srv.doWithToken(t, session.Token, http.MethodGet, "/user", nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "nobody", me.ID)
}

func TestHandler_GroupMembershipAndPolicies(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/auth/users", CreateUserRequest{ID: "jane"}, nil))
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/auth/groups", CreateGroupRequest{ID: "team"}, nil))

	assert.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPut, "/auth/groups/team/members/jane", nil, nil))
	assert.Equal(t, http.StatusConflict,
		srv.do(t, http.MethodPut, "/auth/groups/team/members/jane", nil, nil))
	assert.Equal(t, http.StatusNotFound,
		srv.do(t, http.MethodPut, "/auth/groups/ghost/members/jane", nil, nil))

	var members UserList
	require.Equal(t, http.StatusOK,
		srv.do(t, http.MethodGet, "/auth/groups/team/members", nil, &members))
	require.Len(t, members.Results, 1)
	assert.Equal(t, "jane", members.Results[0].ID)

	// Attach a policy to the group; it shows up in the user's effective set.
	policy := Policy{
		ID: "ReadOnly",
		Statement: []Statement{
			{Effect: "allow", Resource: "*", Action: []string{"auth:Read*"}},
		},
	}
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/auth/policies", policy, nil))
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPut, "/auth/groups/team/policies/ReadOnly", nil, nil))

	var direct PolicyList
	require.Equal(t, http.StatusOK,
		srv.do(t, http.MethodGet, "/auth/users/jane/policies", nil, &direct))
	assert.Empty(t, direct.Results)

	var effective PolicyList
	require.Equal(t, http.StatusOK,
		srv.do(t, http.MethodGet, "/auth/users/jane/policies?effective=true", nil, &effective))
	require.Len(t, effective.Results, 1)
	assert.Equal(t, "ReadOnly", effective.Results[0].ID)

	var userGroups GroupList
	require.Equal(t, http.StatusOK,
		srv.do(t, http.MethodGet, "/auth/users/jane/groups", nil, &userGroups))
	require.Len(t, userGroups.Results, 1)
	assert.Equal(t, "team", userGroups.Results[0].ID)

	assert.Equal(t, http.StatusNoContent,
		srv.do(t, http.MethodDelete, "/auth/groups/team/members/jane", nil, nil))
	assert.Equal(t, http.StatusNotFound,
		srv.do(t, http.MethodDelete, "/auth/groups/team/members/jane", nil, nil))
}

func TestHandler_PolicyValidation(t *testing.T) {
	srv := newTestServer(t)

	status := srv.do(t, http.MethodPost, "/auth/policies", Policy{
		ID: "bad",
		Statement: []Statement{
			{Effect: "maybe", Resource: "*", Action: []string{"auth:ReadUser"}},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = srv.do(t, http.MethodPut, "/auth/policies/one", Policy{
		ID: "other",
		Statement: []Statement{
			{Effect: "allow", Resource: "*", Action: []string{"auth:ReadUser"}},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_CredentialsFlow(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/auth/users", CreateUserRequest{ID: "jane"}, nil))

	var created CredentialsWithSecret
	status := srv.do(t, http.MethodPost, "/auth/users/jane/credentials", nil, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.AccessKeyID)
	require.NotEmpty(t, created.SecretAccessKey)

	// Reads never include the secret.
	var got Credentials
	status = srv.do(t, http.MethodGet, "/auth/users/jane/credentials/"+created.AccessKeyID, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.AccessKeyID, got.AccessKeyID)

	// The pair logs in.
	var token AuthenticationToken
	status = srv.doWithToken(t, "", http.MethodPost, "/auth/login", LoginRequest{
		AccessKeyID:     created.AccessKeyID,
		SecretAccessKey: created.SecretAccessKey,
	}, &token)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, token.Token)

	var me User
	status = srv.doWithToken(t, token.Token, http.MethodGet, "/user", nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jane", me.ID)

	assert.Equal(t, http.StatusNoContent,
		srv.do(t, http.MethodDelete, "/auth/users/jane/credentials/"+created.AccessKeyID, nil, nil))
	assert.Equal(t, http.StatusNotFound,
		srv.do(t, http.MethodGet, "/auth/users/jane/credentials/"+created.AccessKeyID, nil, nil))
}

func TestHandler_LoginFailures(t *testing.T) {
	srv := newTestServer(t)

	status := srv.doWithToken(t, "", http.MethodPost, "/auth/login", LoginRequest{
		AccessKeyID: "AKIAGHOST", SecretAccessKey: "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = srv.doWithToken(t, "", http.MethodPost, "/auth/login", LoginRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_Capabilities(t *testing.T) {
	srv := newTestServer(t)

	var caps AuthCapabilities
	status := srv.doWithToken(t, "", http.MethodGet, "/auth/capabilities", nil, &caps)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, caps.ForgotPassword)
}

func TestHandler_UpdatePasswordWithResetToken(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/auth/users", CreateUserRequest{ID: "jane", Password: "old-password"}, nil))

	reset, err := srv.tokens.IssueReset("jane")
	require.NoError(t, err)

	status := srv.doWithToken(t, reset, http.MethodPost, "/auth/password",
		UpdatePasswordRequest{NewPassword: "new-password"}, nil)
	require.Equal(t, http.StatusCreated, status)

	var token AuthenticationToken
	status = srv.doWithToken(t, "", http.MethodPost, "/auth/login", LoginRequest{
		Username: "jane", Password: "new-password",
	}, &token)
	assert.Equal(t, http.StatusOK, status)

	// A session token is not accepted as a reset token.
	status = srv.doWithToken(t, srv.adminToken, http.MethodPost, "/auth/password",
		UpdatePasswordRequest{NewPassword: "whatever-else"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
