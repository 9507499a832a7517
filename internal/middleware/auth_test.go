package middleware

import (
	"context"
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
	"lakeauth/internal/service"
)

const testEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000001"

func setupAuth(t *testing.T) (*Authenticator, *service.SessionService, domain.CredentialRepository) {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	enc, err := crypto.NewEncryptor(testEncryptionKey)
	require.NoError(t, err)

	userRepo := repository.NewUserRepo(writeDB, readDB)
	credRepo := repository.NewCredentialRepo(writeDB, readDB, enc)
	tokens := service.NewTokenService([]byte("test-secret"), time.Hour, time.Minute)
	log := slog.New(slog.DiscardHandler)
	sessions := service.NewSessionService(userRepo, credRepo, tokens, nil, log)

	_, err = userRepo.Create(context.Background(), &domain.User{ID: "jane"}, nil)
	require.NoError(t, err)

	return NewAuthenticator(sessions, nil, log), sessions, credRepo
}

func echoUserHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := domain.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(u.ID))
	})
}

func TestAuthenticator_BearerToken(t *testing.T) {
	auth, sessions, credRepo := setupAuth(t)
	ctx := context.Background()

	creds, err := credRepo.Create(ctx, &domain.Credentials{
		AccessKeyID: "AKIATEST", SecretAccessKey: "secret", UserID: "jane",
	})
	require.NoError(t, err)
	session, err := sessions.Login(ctx, service.LoginRequest{
		AccessKeyID: creds.AccessKeyID, SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(auth.Middleware(echoUserHandler()))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticator_BasicAuthKeyPair(t *testing.T) {
	auth, _, credRepo := setupAuth(t)

	_, err := credRepo.Create(context.Background(), &domain.Credentials{
		AccessKeyID: "AKIATEST", SecretAccessKey: "secret", UserID: "jane",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(auth.Middleware(echoUserHandler()))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.SetBasicAuth("AKIATEST", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticator_Rejections(t *testing.T) {
	auth, _, credRepo := setupAuth(t)

	_, err := credRepo.Create(context.Background(), &domain.Credentials{
		AccessKeyID: "AKIATEST", SecretAccessKey: "secret", UserID: "jane",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(auth.Middleware(echoUserHandler()))
	defer srv.Close()

	for name, prepare := range map[string]func(*http.Request){
		"no credentials": func(r *http.Request) {},
		"garbage bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
		"wrong secret":   func(r *http.Request) { r.SetBasicAuth("AKIATEST", "wrong") },
		"unknown key":    func(r *http.Request) { r.SetBasicAuth("AKIAGHOST", "secret") },
	} {
		t.Run(name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			prepare(req)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
