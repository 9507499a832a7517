package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lakeauth/internal/domain"
)

// PolicyRepo implements domain.PolicyRepository. Policy statements are
// stored as a JSON column. Mutations go through the write pool; queries are
// served from the read pool.
type PolicyRepo struct {
	db     *sql.DB
	reader *sql.DB
}

// NewPolicyRepo creates a new PolicyRepo over the write/read pool pair.
func NewPolicyRepo(db, reader *sql.DB) *PolicyRepo {
	return &PolicyRepo{db: db, reader: reader}
}

func scanPolicy(row interface{ Scan(...any) error }) (*domain.Policy, error) {
	var (
		p    domain.Policy
		stmt string
	)
	if err := row.Scan(&p.ID, &stmt, &p.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	if err := json.Unmarshal([]byte(stmt), &p.Statement); err != nil {
		return nil, fmt.Errorf("decode policy %q statement: %w", p.ID, err)
	}
	return &p, nil
}

func (r *PolicyRepo) Create(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	stmt, err := json.Marshal(p.Statement)
	if err != nil {
		return nil, fmt.Errorf("encode policy statement: %w", err)
	}
	created := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO auth_policies (id, statement, created_at) VALUES (?, ?, ?)`,
		p.ID, string(stmt), created)
	if err != nil {
		return nil, mapDBError(err)
	}
	out := *p
	out.CreatedAt = created
	return &out, nil
}

func (r *PolicyRepo) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	row := r.reader.QueryRowContext(ctx,
		`SELECT id, statement, created_at FROM auth_policies WHERE id = ?`, id)
	return scanPolicy(row)
}

func (r *PolicyRepo) Update(ctx context.Context, p *domain.Policy) (*domain.Policy, error) {
	stmt, err := json.Marshal(p.Statement)
	if err != nil {
		return nil, fmt.Errorf("encode policy statement: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE auth_policies SET statement = ? WHERE id = ?`, string(stmt), p.ID)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("policy %q not found", p.ID)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PolicyRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Policy, bool, error) {
	return r.listQuery(ctx, params,
		`SELECT id, statement, created_at FROM auth_policies
		 WHERE id > ? AND id LIKE ? ESCAPE '\'
		 ORDER BY id LIMIT ?`)
}

func (r *PolicyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_policies WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("policy %q not found", id)
	}
	return nil
}

func (r *PolicyRepo) AttachToUser(ctx context.Context, policyID, userID string) error {
	if err := r.requirePolicy(ctx, policyID); err != nil {
		return err
	}
	if err := r.requireRow(ctx, `SELECT 1 FROM auth_users WHERE id = ?`, userID, "user"); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_user_policies (policy_id, user_id) VALUES (?, ?)`,
		policyID, userID)
	return mapDBError(err)
}

func (r *PolicyRepo) DetachFromUser(ctx context.Context, policyID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_user_policies WHERE policy_id = ? AND user_id = ?`,
		policyID, userID)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("policy %q is not attached to user %q", policyID, userID)
	}
	return nil
}

func (r *PolicyRepo) AttachToGroup(ctx context.Context, policyID, groupID string) error {
	if err := r.requirePolicy(ctx, policyID); err != nil {
		return err
	}
	if err := r.requireRow(ctx, `SELECT 1 FROM auth_groups WHERE id = ?`, groupID, "group"); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_group_policies (policy_id, group_id) VALUES (?, ?)`,
		policyID, groupID)
	return mapDBError(err)
}

func (r *PolicyRepo) DetachFromGroup(ctx context.Context, policyID, groupID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_group_policies WHERE policy_id = ? AND group_id = ?`,
		policyID, groupID)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("policy %q is not attached to group %q", policyID, groupID)
	}
	return nil
}

func (r *PolicyRepo) ListForUser(ctx context.Context, userID string, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := r.requireRow(ctx, `SELECT 1 FROM auth_users WHERE id = ?`, userID, "user"); err != nil {
		return nil, false, err
	}
	return r.listQuery(ctx, params,
		`SELECT p.id, p.statement, p.created_at
		 FROM auth_policies p
		 JOIN auth_user_policies up ON up.policy_id = p.id
		 WHERE up.user_id = ?1 AND p.id > ?2 AND p.id LIKE ?3 ESCAPE '\'
		 ORDER BY p.id LIMIT ?4`, userID)
}

func (r *PolicyRepo) ListForGroup(ctx context.Context, groupID string, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := r.requireRow(ctx, `SELECT 1 FROM auth_groups WHERE id = ?`, groupID, "group"); err != nil {
		return nil, false, err
	}
	return r.listQuery(ctx, params,
		`SELECT p.id, p.statement, p.created_at
		 FROM auth_policies p
		 JOIN auth_group_policies gp ON gp.policy_id = p.id
		 WHERE gp.group_id = ?1 AND p.id > ?2 AND p.id LIKE ?3 ESCAPE '\'
		 ORDER BY p.id LIMIT ?4`, groupID)
}

func (r *PolicyRepo) ListEffectiveForUser(ctx context.Context, userID string, params domain.ListParams) ([]domain.Policy, bool, error) {
	if err := r.requireRow(ctx, `SELECT 1 FROM auth_users WHERE id = ?`, userID, "user"); err != nil {
		return nil, false, err
	}
	return r.listQuery(ctx, params,
		`SELECT DISTINCT p.id, p.statement, p.created_at
		 FROM auth_policies p
		 LEFT JOIN auth_user_policies up ON up.policy_id = p.id
		 LEFT JOIN auth_group_policies gp ON gp.policy_id = p.id
		 LEFT JOIN auth_group_members m ON m.group_id = gp.group_id
		 WHERE (up.user_id = ?1 OR m.user_id = ?1)
		   AND p.id > ?2 AND p.id LIKE ?3 ESCAPE '\'
		 ORDER BY p.id LIMIT ?4`, userID)
}

// listQuery runs a policy list query. Queries using extra leading arguments
// must use numbered placeholders (?1 owner, ?2 after, ?3 prefix, ?4 limit);
// plain queries take after, prefix, limit positionally.
func (r *PolicyRepo) listQuery(ctx context.Context, params domain.ListParams, query string, owner ...any) ([]domain.Policy, bool, error) {
	limit := params.Limit()
	args := append(owner, params.After, prefixPattern(params.Prefix), limit+1)
	rows, err := r.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var policies []domain.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, false, err
		}
		policies = append(policies, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(policies) > limit
	if hasMore {
		policies = policies[:limit]
	}
	return policies, hasMore, nil
}

func (r *PolicyRepo) requirePolicy(ctx context.Context, id string) error {
	return r.requireRow(ctx, `SELECT 1 FROM auth_policies WHERE id = ?`, id, "policy")
}

func (r *PolicyRepo) requireRow(ctx context.Context, query, id, kind string) error {
	var one int
	err := r.reader.QueryRowContext(ctx, query, id).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound("%s %q not found", kind, id)
		}
		return err
	}
	return nil
}
