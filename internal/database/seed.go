package database

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"campus-records/internal/model"
)

var baseRoles = []struct {
	name        string
	description string
}{
	{model.RoleAdmin, "Full administrative access"},
	{model.RoleTeacher, "Read access to users and students"},
	{model.RoleStudent, "Read access to the student's own record"},
}

// Seed inserts the three base roles and, when the users table is empty,
// a default admin account so the API is reachable on a fresh database.
func (db *DB) Seed(ctx context.Context, adminPassword string) error {
	for _, role := range baseRoles {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO roles (name, description) VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`,
			role.name, role.description)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", role.name, err)
		}
	}

	var userCount int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var adminID int64
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, email, full_name, is_active)
		 VALUES ('admin', $1, 'admin@example.com', 'Administrator', true)
		 RETURNING id`, string(hash)).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = $2`, adminID, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("assign admin role: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
