// Package app wires the repositories, services, and HTTP surface together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"lakeauth/internal/api"
	"lakeauth/internal/config"
	internaldb "lakeauth/internal/db"
	"lakeauth/internal/db/crypto"
	"lakeauth/internal/db/repository"
	"lakeauth/internal/domain"
	"lakeauth/internal/mail"
	"lakeauth/internal/middleware"
	"lakeauth/internal/service"
)

// FullAccessPolicyID is the policy attached to the bootstrap admin.
const FullAccessPolicyID = "AuthFullAccess"

// App holds the assembled application.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Handler *api.Handler

	writeDB *sql.DB
	readDB  *sql.DB

	users    domain.UserRepository
	policies domain.PolicyRepository
}

// New opens the database, runs migrations, and wires the service stack.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	enc, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, fmt.Errorf("init encryptor: %w", err)
	}

	// Repositories take the write pool for mutations and the read pool for
	// queries, so reads are not serialized behind the single writer.
	userRepo := repository.NewUserRepo(writeDB, readDB)
	groupRepo := repository.NewGroupRepo(writeDB, readDB)
	policyRepo := repository.NewPolicyRepo(writeDB, readDB)
	credRepo := repository.NewCredentialRepo(writeDB, readDB, enc)

	authz := service.NewAuthorizer(policyRepo)
	tokens := service.NewTokenService([]byte(cfg.JWTSecret), cfg.SessionTTL, cfg.ResetTokenTTL)

	var mailer service.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			BaseURL:  cfg.SMTP.BaseURL,
		}, log)
	}

	sessions := service.NewSessionService(userRepo, credRepo, tokens, mailer, log)

	var oidc middleware.OIDCUserResolver
	if cfg.OIDC.Enabled() {
		resolver, err := middleware.NewOIDCResolver(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, userRepo)
		if err != nil {
			writeDB.Close()
			readDB.Close()
			return nil, fmt.Errorf("init oidc: %w", err)
		}
		oidc = resolver
	}
	auth := middleware.NewAuthenticator(sessions, oidc, log)

	handler := api.NewHandler(
		service.NewUserService(userRepo, authz),
		service.NewGroupService(groupRepo, authz),
		service.NewPolicyService(policyRepo, authz),
		service.NewCredentialService(credRepo, authz),
		sessions,
		auth,
		log,
	)

	return &App{
		Config:   cfg,
		Log:      log,
		Handler:  handler,
		writeDB:  writeDB,
		readDB:   readDB,
		users:    userRepo,
		policies: policyRepo,
	}, nil
}

// Router assembles the full middleware chain and mounts the API under
// /api/v1.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(a.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: a.Config.RateLimitRPS,
		Burst:             a.Config.RateLimitBurst,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.Config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Mount("/api/v1", a.Handler.Routes())
	return r
}

// Seed creates the full-access policy and the bootstrap admin on first
// start. Idempotent.
func (a *App) Seed(ctx context.Context) error {
	_, err := a.policies.GetByID(ctx, FullAccessPolicyID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		_, err = a.policies.Create(ctx, &domain.Policy{
			ID: FullAccessPolicyID,
			Statement: []domain.Statement{
				{Effect: domain.EffectAllow, Resource: domain.AllResources, Action: []string{"auth:*"}},
			},
		})
		if err != nil {
			return fmt.Errorf("create %s policy: %w", FullAccessPolicyID, err)
		}
	}

	if _, err := a.users.GetByID(ctx, a.Config.AdminUser); err == nil {
		return nil // already seeded
	}

	// Seeding bypasses the service layer: there is no caller to authorize yet.
	var hash []byte
	if a.Config.AdminPassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(a.Config.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = h
	}
	if _, err := a.users.Create(ctx, &domain.User{ID: a.Config.AdminUser}, hash); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if err := a.policies.AttachToUser(ctx, FullAccessPolicyID, a.Config.AdminUser); err != nil {
		return fmt.Errorf("attach %s to admin: %w", FullAccessPolicyID, err)
	}
	a.Log.Info("seeded bootstrap admin", "user", a.Config.AdminUser)
	return nil
}

// Checkpoint compacts the WAL. Run periodically by the maintenance job.
func (a *App) Checkpoint(ctx context.Context) error {
	_, err := a.writeDB.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Close releases the database pools.
func (a *App) Close() error {
	rerr := a.readDB.Close()
	if err := a.writeDB.Close(); err != nil {
		return err
	}
	return rerr
}
