package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// AppPermissions is the per-app access a user has been granted.
type AppPermissions struct {
	Read   bool `json:"read,omitempty"`
	Create bool `json:"create,omitempty"`
	Update bool `json:"update,omitempty"`
	Delete bool `json:"delete,omitempty"`
}

type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	Role              string
	Permissions       map[string]AppPermissions
	MustResetPassword bool
	IsVerified        bool
	IsActive          bool
	LastLoginAt       pgtype.Timestamptz
	LastLoginIP       string
	CreatedAt         time.Time
}

const userColumns = `id, name, email, password_hash, role, permissions, must_reset_password,
	is_verified, is_active, last_login_at, last_login_ip, created_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		u     User
		perms []byte
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&perms,
		&u.MustResetPassword,
		&u.IsVerified,
		&u.IsActive,
		&u.LastLoginAt,
		&u.LastLoginIP,
		&u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return User{}, fmt.Errorf("decode permissions for user %d: %w", u.ID, err)
		}
	}
	return u, nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = 'Admin' AND is_active`).Scan(&n)
	return n, err
}

type CreateUserParams struct {
	Name              string
	Email             string
	PasswordHash      string
	Role              string
	MustResetPassword bool
	IsVerified        bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, permissions, must_reset_password, is_verified)
		VALUES ($1, $2, $3, $4, '{}'::jsonb, $5, $6)
		RETURNING `+userColumns,
		arg.Name, arg.Email, arg.PasswordHash, arg.Role, arg.MustResetPassword, arg.IsVerified,
	))
}

type UpdateUserPasswordParams struct {
	ID                int64
	PasswordHash      string
	MustResetPassword bool
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, must_reset_password = $3 WHERE id = $1`,
		arg.ID, arg.PasswordHash, arg.MustResetPassword,
	)
	return err
}

// UpdateUserRole changes the role and clears per-app grants; admins have
// implicit access to every app.
func (q *Queries) UpdateUserRole(ctx context.Context, id int64, role string) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET role = $2, permissions = '{}'::jsonb WHERE id = $1`, id, role)
	return err
}

func (q *Queries) MarkUserVerified(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET is_verified = true, verification_token = NULL WHERE id = $1`, id)
	return err
}

type UpdateUserLoginMetaParams struct {
	ID          int64
	LastLoginAt pgtype.Timestamptz
	LastLoginIP string
}

func (q *Queries) UpdateUserLoginMeta(ctx context.Context, arg UpdateUserLoginMetaParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET last_login_at = $2, last_login_ip = $3 WHERE id = $1`,
		arg.ID, arg.LastLoginAt, arg.LastLoginIP,
	)
	return err
}
