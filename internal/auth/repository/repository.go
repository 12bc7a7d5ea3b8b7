package repository

import (
	"context"
	"errors"
	"time"

	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User is an account that can sign in. Role is a single string; admins get
// the admin route group on top of the protected one.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const userColumns = `id, email, name, password_hash, role, is_active, created_at`

func (r *Repository) GetByEmail(ctx context.Context, tx db.DBTX, email string) (User, error) {
	var u User
	err := tx.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("user not found")
	}
	return u, err
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (User, error) {
	var u User
	err := tx.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("user not found")
	}
	return u, err
}

// ListAgents returns active users, for assignment pickers.
func (r *Repository) ListAgents(ctx context.Context, tx db.DBTX) ([]User, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE is_active ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
