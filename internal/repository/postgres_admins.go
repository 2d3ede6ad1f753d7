package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bloodlink/internal/domain"
)

type PostgresAdminsRepo struct {
	db *sql.DB
}

func NewPostgresAdminsRepo(db *sql.DB) *PostgresAdminsRepo {
	return &PostgresAdminsRepo{db: db}
}

func (r *PostgresAdminsRepo) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx,
		`SELECT admin_id::text, username, password_hash, created_at
		 FROM admins WHERE username = $1`, username,
	).Scan(&a.AdminID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.ErrNotFound, "admin %s not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (r *PostgresAdminsRepo) CreateAdmin(ctx context.Context, admin *domain.Admin) (string, error) {
	if admin == nil {
		return "", domain.NewError(domain.ErrInvalidInput, "admin is required")
	}
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO admins (username, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING admin_id::text`,
		admin.Username, admin.PasswordHash,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}
	return id, nil
}
