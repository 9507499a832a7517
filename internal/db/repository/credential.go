package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeauth/internal/db/crypto"
	"lakeauth/internal/domain"
)

// CredentialRepo implements domain.CredentialRepository. Secret access keys
// are encrypted at rest with the configured Encryptor. Mutations go through
// the write pool; queries are served from the read pool.
type CredentialRepo struct {
	db     *sql.DB
	reader *sql.DB
	enc    *crypto.Encryptor
}

// NewCredentialRepo creates a new CredentialRepo over the write/read pool pair.
func NewCredentialRepo(db, reader *sql.DB, enc *crypto.Encryptor) *CredentialRepo {
	return &CredentialRepo{db: db, reader: reader, enc: enc}
}

func (r *CredentialRepo) Create(ctx context.Context, c *domain.Credentials) (*domain.Credentials, error) {
	if err := r.requireUser(ctx, c.UserID); err != nil {
		return nil, err
	}
	secretEnc, err := r.enc.Encrypt(c.SecretAccessKey)
	if err != nil {
		return nil, err
	}
	created := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO auth_credentials (access_key_id, secret_enc, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		c.AccessKeyID, secretEnc, c.UserID, created)
	if err != nil {
		return nil, mapDBError(err)
	}
	out := *c
	out.CreatedAt = created
	return &out, nil
}

func (r *CredentialRepo) Get(ctx context.Context, userID, accessKeyID string) (*domain.Credentials, error) {
	var c domain.Credentials
	err := r.reader.QueryRowContext(ctx,
		`SELECT access_key_id, user_id, created_at FROM auth_credentials
		 WHERE user_id = ? AND access_key_id = ?`,
		userID, accessKeyID).
		Scan(&c.AccessKeyID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &c, nil
}

func (r *CredentialRepo) GetWithSecret(ctx context.Context, accessKeyID string) (*domain.Credentials, error) {
	var (
		c         domain.Credentials
		secretEnc string
	)
	err := r.reader.QueryRowContext(ctx,
		`SELECT access_key_id, secret_enc, user_id, created_at FROM auth_credentials
		 WHERE access_key_id = ?`, accessKeyID).
		Scan(&c.AccessKeyID, &secretEnc, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	c.SecretAccessKey, err = r.enc.Decrypt(secretEnc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepo) ListForUser(ctx context.Context, userID string, params domain.ListParams) ([]domain.Credentials, bool, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, false, err
	}
	limit := params.Limit()
	rows, err := r.reader.QueryContext(ctx,
		`SELECT access_key_id, user_id, created_at FROM auth_credentials
		 WHERE user_id = ? AND access_key_id > ? AND access_key_id LIKE ? ESCAPE '\'
		 ORDER BY access_key_id LIMIT ?`,
		userID, params.After, prefixPattern(params.Prefix), limit+1)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var creds []domain.Credentials
	for rows.Next() {
		var c domain.Credentials
		if err := rows.Scan(&c.AccessKeyID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, false, err
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(creds) > limit
	if hasMore {
		creds = creds[:limit]
	}
	return creds, hasMore, nil
}

func (r *CredentialRepo) Delete(ctx context.Context, userID, accessKeyID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_credentials WHERE user_id = ? AND access_key_id = ?`,
		userID, accessKeyID)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("credentials %q not found for user %q", accessKeyID, userID)
	}
	return nil
}

func (r *CredentialRepo) requireUser(ctx context.Context, userID string) error {
	var one int
	err := r.reader.QueryRowContext(ctx,
		`SELECT 1 FROM auth_users WHERE id = ?`, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound("user %q not found", userID)
		}
		return err
	}
	return nil
}
