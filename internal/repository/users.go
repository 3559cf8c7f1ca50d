package repository

import (
	"context"
	"database/sql"
	"errors"

	"kanban-backend/internal/apperr"
	"kanban-backend/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx,
		`SELECT id, username, password_hash, name, created_at, updated_at
		 FROM users WHERE username = $1`, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.get(ctx,
		`SELECT id, username, password_hash, name, created_at, updated_at
		 FROM users WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Name,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Service("Failed to query user", err)
	}
	return user, nil
}
