package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osdatum/backend/internal/domain"
	apperrors "github.com/osdatum/backend/pkg/errors"
)

// UserRepository is the PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, picture, provider_id, subscription_tier, created_at, updated_at`

// Create inserts a new user. A duplicate email maps to a conflict error.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, picture, provider_id, subscription_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash,
		user.Picture, user.ProviderID, user.SubscriptionTier,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("USER_EXISTS", "user with this email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id, "user", id)
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(ctx, query, email, "user", email)
}

// UpdateTier sets the user's subscription tier.
func (r *UserRepository) UpdateTier(ctx context.Context, id, tier string) error {
	query := `UPDATE users SET subscription_tier = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, tier)
	if err != nil {
		return fmt.Errorf("update subscription tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, query, arg, resource, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.Picture, &user.ProviderID, &user.SubscriptionTier,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(resource, id)
		}
		return nil, fmt.Errorf("get %s: %w", resource, err)
	}
	return user, nil
}
