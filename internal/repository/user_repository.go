package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"jobforge/internal/domain"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE session_id = ?`

	err := r.db.GetContext(ctx, &user, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by session: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, sessionID string) (*domain.User, error) {
	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (session_id, created_at, updated_at) VALUES (?, ?, ?) RETURNING id`,
		sessionID, now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &domain.User{
		ID:        id,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
