package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) UserRepository {
	return &userRepository{db: db}
}

// Upsert создаёт пользователя или обновляет его по open_id
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (open_id, name, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (open_id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    role = EXCLUDED.role,
		    updated_at = NOW()
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.OpenID,
		nullIfEmpty(user.Name),
		nullIfEmpty(user.Email),
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, open_id, COALESCE(name, ''), COALESCE(email, ''), role, created_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.OpenID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, open_id, COALESCE(name, ''), COALESCE(email, ''), role, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.OpenID, &user.Name, &user.Email, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
