package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeauth/internal/domain"
)

// UserRepo implements domain.UserRepository. Mutations go through the write
// pool; queries are served from the read pool.
type UserRepo struct {
	db     *sql.DB
	reader *sql.DB
}

// NewUserRepo creates a new UserRepo over the write/read pool pair.
func NewUserRepo(db, reader *sql.DB) *UserRepo {
	return &UserRepo{db: db, reader: reader}
}

const userColumns = "id, email, friendly_name, source, created_at"

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u     domain.User
		email sql.NullString
	)
	if err := row.Scan(&u.ID, &email, &u.FriendlyName, &u.Source, &u.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	u.Email = email.String
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User, passwordHash []byte) (*domain.User, error) {
	created := time.Now().UTC()
	email := sql.NullString{String: u.Email, Valid: u.Email != ""}
	source := u.Source
	if source == "" {
		source = "internal"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_users (id, email, friendly_name, source, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, email, u.FriendlyName, source, passwordHash, created)
	if err != nil {
		return nil, mapDBError(err)
	}
	out := *u
	out.Source = source
	out.CreatedAt = created
	return &out, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.reader.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM auth_users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.reader.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM auth_users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepo) List(ctx context.Context, params domain.ListParams) ([]domain.User, bool, error) {
	limit := params.Limit()
	rows, err := r.reader.QueryContext(ctx,
		`SELECT `+userColumns+` FROM auth_users
		 WHERE id > ? AND id LIKE ? ESCAPE '\'
		 ORDER BY id LIMIT ?`,
		params.After, prefixPattern(params.Prefix), limit+1)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, false, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}
	return users, hasMore, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %q not found", id)
	}
	return nil
}

func (r *UserRepo) HashedPassword(ctx context.Context, id string) ([]byte, error) {
	var hash []byte
	err := r.reader.QueryRowContext(ctx,
		`SELECT password_hash FROM auth_users WHERE id = ?`, id).Scan(&hash)
	if err != nil {
		return nil, mapDBError(err)
	}
	return hash, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE auth_users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %q not found", id)
	}
	return nil
}
