package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000/", "tok")
	assert.Equal(t, "http://localhost:8000", c.BaseURL)
	assert.Equal(t, "tok", c.Token)
	require.NotNil(t, c.HTTPClient)
}

func TestClient_RequestShape(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UserList{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "session-token")
	_, err := c.ListUsers(context.Background(), ListOptions{Prefix: "dev-", After: "dev-3", Amount: 50})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/v1/auth/users", got.URL.Path)
	assert.Equal(t, "dev-", got.URL.Query().Get("prefix"))
	assert.Equal(t, "dev-3", got.URL.Query().Get("after"))
	assert.Equal(t, "50", got.URL.Query().Get("amount"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "Bearer session-token", got.Header.Get("Authorization"))
}

func TestClient_TokenTakesPrecedenceOverKeyPair(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(User{ID: "admin"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.AccessKeyID = "AKIAEXAMPLE"
	c.SecretAccessKey = "secret"

	_, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Contains(t, authHeader, "Basic ")

	c.Token = "session-token"
	_, err = c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", authHeader)
}

func TestClient_PathEscaping(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(User{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.GetUser(context.Background(), "user/with slash")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/auth/users/user%2Fwith%20slash", path)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := map[string]struct {
		status   int
		body     string
		sentinel error
		message  string
	}{
		"not found json":    {http.StatusNotFound, `{"message":"user not found"}`, ErrNotFound, "user not found"},
		"conflict":          {http.StatusConflict, `{"message":"user already exists"}`, ErrConflict, "user already exists"},
		"unauthorized":      {http.StatusUnauthorized, `{"message":"error authenticating request"}`, ErrUnauthorized, "error authenticating request"},
		"forbidden":         {http.StatusForbidden, `{"message":"denied"}`, ErrForbidden, "denied"},
		"bad request":       {http.StatusBadRequest, `{"message":"invalid amount"}`, ErrInvalidRequest, "invalid amount"},
		"non-json body":     {http.StatusNotFound, "plain text error", ErrNotFound, "plain text error"},
		"empty body":        {http.StatusNotFound, "", ErrNotFound, "Not Found"},
		"server error":      {http.StatusInternalServerError, `{"message":"internal server error"}`, nil, "internal server error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "tok")
			_, err := c.GetUser(context.Background(), "someone")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.message, apiErr.Message)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.NotErrorIs(t, err, errors.New("other"))
		})
	}
}

func TestClient_ErrorString(t *testing.T) {
	err := &APIError{HTTPStatus: 404, Message: "user not found"}
	assert.Equal(t, "API error (HTTP 404): user not found", err.Error())
}

func TestClient_TransportErrorWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "tok")
	_, err := c.GetCurrentUser(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute request")
}

func TestClient_LoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AKIAEXAMPLE", req.AccessKeyID)

		json.NewEncoder(w).Encode(AuthenticationToken{Token: "issued", TokenExpiration: 1234})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	tok, err := c.Login(context.Background(), LoginRequest{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "issued", tok.Token)
	assert.Equal(t, int64(1234), tok.TokenExpiration)
	assert.Equal(t, "issued", c.Token)
}

func TestClient_UpdatePasswordUsesResetToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/password", r.URL.Path)
		assert.Equal(t, "Bearer reset-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "session-token")
	require.NoError(t, c.UpdatePassword(context.Background(), "reset-token", "new-password"))
	// The session token on the client is untouched.
	assert.Equal(t, "session-token", c.Token)
}

func TestClient_NoBodyOperations(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	ctx := context.Background()

	require.NoError(t, c.DeleteUser(ctx, "bob"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/v1/auth/users/bob", path)

	require.NoError(t, c.AddGroupMembership(ctx, "devs", "bob"))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/auth/groups/devs/members/bob", path)

	require.NoError(t, c.DetachPolicyFromGroup(ctx, "ReadAll", "devs"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/v1/auth/groups/devs/policies/ReadAll", path)
}
