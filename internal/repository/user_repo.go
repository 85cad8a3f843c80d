package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-records/internal/model"
)

const userColumns = `id, username, password_hash, email, full_name, is_active, student_id, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	if u.Roles, err = r.rolesForUser(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`,
		strings.TrimSpace(username))

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}

	if u.Roles, err = r.rolesForUser(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		strings.TrimSpace(username)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, email, full_name, is_active, student_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.PasswordHash, u.Email, u.Fullname, u.IsActive, u.StudentID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := r.ReplaceRoles(ctx, u.ID, roleIDs(u.Roles)); err != nil {
		return model.User{}, err
	}
	return r.FindByID(ctx, u.ID)
}

func (r *UserRepository) Update(ctx context.Context, u model.User) (model.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET username = $2, password_hash = $3, email = $4, full_name = $5,
		     is_active = $6, student_id = $7, updated_at = $8
		 WHERE id = $1`,
		u.ID, u.Username, u.PasswordHash, u.Email, u.Fullname, u.IsActive,
		u.StudentID, time.Now().UTC())
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.User{}, model.ErrUserNotFound
	}
	return r.FindByID(ctx, u.ID)
}

// ReplaceRoles swaps the user's role set in one transaction so a failed
// insert never leaves the user with a partial assignment.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin role replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}

	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
			userID, roleID); err != nil {
			return fmt.Errorf("assign role %d: %w", roleID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit role replace: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
}

func (r *UserRepository) FindByRoleName(ctx context.Context, roleName string) ([]model.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+prefixedUserColumns("u")+`
		 FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ro.name = $1
		 ORDER BY u.username`, roleName)
}

func (r *UserRepository) FindByActive(ctx context.Context, active bool) ([]model.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_active = $1 ORDER BY username`, active)
}

func (r *UserRepository) SearchByKeyword(ctx context.Context, keyword string) ([]model.User, error) {
	pattern := "%" + strings.TrimSpace(keyword) + "%"
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username ILIKE $1 OR email ILIKE $1 OR full_name ILIKE $1
		 ORDER BY username`, pattern)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		if users[i].Roles, err = r.rolesForUser(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *UserRepository) rolesForUser(ctx context.Context, userID int64) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ro.id, ro.name, ro.description, ro.created_at
		 FROM roles ro
		 JOIN user_roles ur ON ur.role_id = ro.id
		 WHERE ur.user_id = $1
		 ORDER BY ro.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0)
	for rows.Next() {
		var role model.Role
		var description *string
		if err := rows.Scan(&role.ID, &role.Name, &description, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		if description != nil {
			role.Description = *description
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var fullname *string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &fullname,
		&u.IsActive, &u.StudentID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if fullname != nil {
		u.Fullname = *fullname
	}
	return u, nil
}

func prefixedUserColumns(alias string) string {
	cols := strings.Split(userColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

func roleIDs(roles []model.Role) []int64 {
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return ids
}
