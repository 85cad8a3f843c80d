package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-records/internal/model"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) FindByID(ctx context.Context, id int64) (model.Role, error) {
	role, err := r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, model.ErrRoleNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("find role by id: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (model.Role, error) {
	role, err := r.scanOne(r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`,
		strings.TrimSpace(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Role{}, model.ErrRoleNotFound
	}
	if err != nil {
		return model.Role{}, fmt.Errorf("find role by name: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM roles WHERE name = $1)`,
		strings.TrimSpace(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role exists: %w", err)
	}
	return exists, nil
}

func (r *RoleRepository) Create(ctx context.Context, role model.Role) (model.Role, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2)
		 RETURNING id, created_at`,
		role.Name, nullable(role.Description)).
		Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return model.Role{}, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) Update(ctx context.Context, role model.Role) (model.Role, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $2, description = $3 WHERE id = $1`,
		role.ID, role.Name, nullable(role.Description))
	if err != nil {
		return model.Role{}, fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Role{}, model.ErrRoleNotFound
	}
	return r.FindByID(ctx, role.ID)
}

func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]model.Role, 0)
	for rows.Next() {
		role, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) scanOne(row rowScanner) (model.Role, error) {
	var role model.Role
	var description *string
	if err := row.Scan(&role.ID, &role.Name, &description, &role.CreatedAt); err != nil {
		return model.Role{}, err
	}
	if description != nil {
		role.Description = *description
	}
	return role, nil
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
