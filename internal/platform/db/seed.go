package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paydesk/internal/domain/auth"
	"paydesk/internal/platform/config"
)

// Seed installs the permission catalogue, the fixed roles with their grants
// and, when configured, a bootstrap admin. It runs in one transaction and is
// safe to repeat.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := seedPermissions(ctx, tx); err != nil {
			return fmt.Errorf("permissions: %w", err)
		}
		roleIDs, err := seedRoles(ctx, tx)
		if err != nil {
			return fmt.Errorf("roles: %w", err)
		}
		return seedAdmin(ctx, tx, roleIDs[auth.RoleAdmin], cfg.SeedAdminUsername, cfg.SeedAdminPassword)
	})
}

func seedPermissions(ctx context.Context, tx pgx.Tx) error {
	batch := &pgx.Batch{}
	for _, perm := range auth.DefaultPermissions {
		batch.Queue("INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// seedRoles upserts each role and grants its permission keys in one statement
// per role. Unknown keys are an error.
func seedRoles(ctx context.Context, tx pgx.Tx) (map[string]string, error) {
	roleIDs := make(map[string]string, len(auth.RolePermissions))
	for roleName, perms := range auth.RolePermissions {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id

		var known int
		if err := tx.QueryRow(ctx, "SELECT count(*) FROM permissions WHERE key = ANY($1)", perms).Scan(&known); err != nil {
			return nil, err
		}
		if known != len(perms) {
			return nil, fmt.Errorf("role %s references unknown permissions", roleName)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, p.id FROM permissions p WHERE p.key = ANY($2)
			ON CONFLICT DO NOTHING
		`, id, perms); err != nil {
			return nil, err
		}
	}
	return roleIDs, nil
}

func seedAdmin(ctx context.Context, tx pgx.Tx, roleID, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	if roleID == "" {
		return errors.New("admin role missing")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "INSERT INTO users (username, password_hash, role_id) VALUES ($1, $2, $3) ON CONFLICT (username) DO NOTHING", username, hash, roleID)
	return err
}
