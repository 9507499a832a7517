package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest holds details captured from an incoming HTTP request.
type capturedRequest struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    string
}

// requestRecorder is a thread-safe recorder for HTTP requests received by httptest servers.
type requestRecorder struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (r *requestRecorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	body, _ := io.ReadAll(req.Body)
	defer func() { _ = req.Body.Close() }()

	r.requests = append(r.requests, capturedRequest{
		Method:  req.Method,
		Path:    req.URL.Path,
		Query:   req.URL.RawQuery,
		Headers: req.Header.Clone(),
		Body:    string(body),
	})
}

func (r *requestRecorder) last() capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return capturedRequest{}
	}
	return r.requests[len(r.requests)-1]
}

// jsonHandler records the request and responds with the given status and body.
func jsonHandler(rec *requestRecorder, status int, respBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}
}

// runCommand executes the CLI against the given server with isolated HOME,
// returning stderr-free command error and captured stdout is not needed for
// these assertions.
func runCommand(t *testing.T, srv *httptest.Server, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	rootCmd := newRootCmd()
	rootCmd.SetArgs(append([]string{"--host", srv.URL, "--token", "test-token"}, args...))
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.Execute()
}

func TestCLI_UsersList(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusOK,
		`{"pagination":{"has_more":false,"next_offset":"","max_per_page":1000,"results":1},"results":[{"id":"admin","creation_date":1700000000}]}`))
	defer srv.Close()

	err := runCommand(t, srv, "users", "list", "--prefix", "ad", "--amount", "10")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/auth/users", req.Path)
	assert.Contains(t, req.Query, "prefix=ad")
	assert.Contains(t, req.Query, "amount=10")
	assert.Equal(t, "Bearer test-token", req.Headers.Get("Authorization"))
}

func TestCLI_UsersCreate(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusCreated,
		`{"id":"bob","creation_date":1700000000}`))
	defer srv.Close()

	err := runCommand(t, srv, "users", "create", "bob", "--email", "bob@example.com")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/auth/users", req.Path)
	assert.JSONEq(t, `{"id":"bob","email":"bob@example.com"}`, req.Body)
}

func TestCLI_GroupMembership(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusCreated, ""))
	defer srv.Close()

	err := runCommand(t, srv, "groups", "members", "add", "devs", "bob")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/v1/auth/groups/devs/members/bob", req.Path)
}

func TestCLI_UserPoliciesEffective(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusOK,
		`{"pagination":{"has_more":false,"next_offset":"","max_per_page":1000,"results":0},"results":[]}`))
	defer srv.Close()

	err := runCommand(t, srv, "users", "policies", "list", "bob", "--effective")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, "/api/v1/auth/users/bob/policies", req.Path)
	assert.Contains(t, req.Query, "effective=true")
}

func TestCLI_PoliciesCreateFromFile(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusCreated,
		`{"id":"ReadAll","creation_date":1700000000,"statement":[]}`))
	defer srv.Close()

	doc := t.TempDir() + "/policy.json"
	require.NoError(t, writeFile(doc, `{"id":"ReadAll","statement":[{"effect":"allow","resource":"*","action":["auth:Read*"]}]}`))

	err := runCommand(t, srv, "policies", "create", "--document", doc)
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/auth/policies", req.Path)
	assert.Contains(t, req.Body, `"auth:Read*"`)
}

func TestCLI_ErrorPropagation(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantSubstr string
	}{
		{
			name:       "HTTP 403 forbidden",
			status:     http.StatusForbidden,
			body:       `{"message":"access denied"}`,
			wantSubstr: "API error (HTTP 403): access denied",
		},
		{
			name:       "HTTP 404 not found",
			status:     http.StatusNotFound,
			body:       `{"message":"user not found"}`,
			wantSubstr: "API error (HTTP 404): user not found",
		},
		{
			name:       "HTTP 409 conflict",
			status:     http.StatusConflict,
			body:       `{"message":"user already exists"}`,
			wantSubstr: "API error (HTTP 409): user already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &requestRecorder{}
			srv := httptest.NewServer(jsonHandler(rec, tt.status, tt.body))
			defer srv.Close()

			err := runCommand(t, srv, "users", "get", "someone")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSubstr)
		})
	}
}

func TestCLI_RejectsBadOutputFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	err := runCommand(t, srv, "--output", "xml", "users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_LoginSavesTokenToProfile(t *testing.T) {
	rec := &requestRecorder{}
	srv := httptest.NewServer(jsonHandler(rec, http.StatusOK,
		`{"token":"issued-token","token_expiration":1700000000}`))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--host", srv.URL, "auth", "login", "--username", "admin", "--password", "secret"})
	rootCmd.SetOut(io.Discard)
	require.NoError(t, rootCmd.Execute())

	req := rec.last()
	assert.Equal(t, "/api/v1/auth/login", req.Path)
	assert.JSONEq(t, `{"username":"admin","password":"secret"}`, req.Body)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "issued-token", cfg.ActiveProfile("").Token)
}

func TestCLI_VersionNeedsNoServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetArgs([]string{"version"})
	rootCmd.SetOut(&out)
	require.NoError(t, rootCmd.Execute())
}

// zero-arg subcommands must reject positional arguments
func TestCLI_ListRejectsArgs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"users", "list", "unexpected"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	require.Error(t, rootCmd.Execute())
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
