package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeauth/internal/domain"
)

// GroupRepo implements domain.GroupRepository. Mutations go through the
// write pool; queries are served from the read pool.
type GroupRepo struct {
	db     *sql.DB
	reader *sql.DB
}

// NewGroupRepo creates a new GroupRepo over the write/read pool pair.
func NewGroupRepo(db, reader *sql.DB) *GroupRepo {
	return &GroupRepo{db: db, reader: reader}
}

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	created := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_groups (id, created_at) VALUES (?, ?)`, g.ID, created)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &domain.Group{ID: g.ID, CreatedAt: created}, nil
}

func (r *GroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := r.reader.QueryRowContext(ctx,
		`SELECT id, created_at FROM auth_groups WHERE id = ?`, id).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &g, nil
}

func (r *GroupRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Group, bool, error) {
	limit := params.Limit()
	rows, err := r.reader.QueryContext(ctx,
		`SELECT id, created_at FROM auth_groups
		 WHERE id > ? AND id LIKE ? ESCAPE '\'
		 ORDER BY id LIMIT ?`,
		params.After, prefixPattern(params.Prefix), limit+1)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.CreatedAt); err != nil {
			return nil, false, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(groups) > limit
	if hasMore {
		groups = groups[:limit]
	}
	return groups, hasMore, nil
}

func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_groups WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("group %q not found", id)
	}
	return nil
}

func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID string) error {
	if err := r.requireGroupAndUser(ctx, groupID, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_group_members (group_id, user_id) VALUES (?, ?)`,
		groupID, userID)
	return mapDBError(err)
}

func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %q is not a member of group %q", userID, groupID)
	}
	return nil
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID string, params domain.ListParams) ([]domain.User, bool, error) {
	if _, err := r.GetByID(ctx, groupID); err != nil {
		return nil, false, err
	}
	limit := params.Limit()
	rows, err := r.reader.QueryContext(ctx,
		`SELECT u.id, u.email, u.friendly_name, u.source, u.created_at
		 FROM auth_users u
		 JOIN auth_group_members m ON m.user_id = u.id
		 WHERE m.group_id = ? AND u.id > ? AND u.id LIKE ? ESCAPE '\'
		 ORDER BY u.id LIMIT ?`,
		groupID, params.After, prefixPattern(params.Prefix), limit+1)
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

func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID string, params domain.ListParams) ([]domain.Group, bool, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, false, err
	}
	limit := params.Limit()
	rows, err := r.reader.QueryContext(ctx,
		`SELECT g.id, g.created_at
		 FROM auth_groups g
		 JOIN auth_group_members m ON m.group_id = g.id
		 WHERE m.user_id = ? AND g.id > ? AND g.id LIKE ? ESCAPE '\'
		 ORDER BY g.id LIMIT ?`,
		userID, params.After, prefixPattern(params.Prefix), limit+1)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.CreatedAt); err != nil {
			return nil, false, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(groups) > limit
	if hasMore {
		groups = groups[:limit]
	}
	return groups, hasMore, nil
}

// requireGroupAndUser checks both sides of a membership exist so that a
// missing group or user surfaces as 404 rather than a bare FK violation.
func (r *GroupRepo) requireGroupAndUser(ctx context.Context, groupID, userID string) error {
	if _, err := r.GetByID(ctx, groupID); err != nil {
		return err
	}
	return r.requireUser(ctx, userID)
}

func (r *GroupRepo) requireUser(ctx context.Context, userID string) error {
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
