package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/logger"
)

// UserRepository handles database operations for staff accounts
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new staff account. user.Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, password, role_type, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		user.Username, user.Password, user.RoleType, user.IsActive).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Str("username", user.Username).Msg("Error creating user")
		return apperrors.Database("UserRepository.Create", err)
	}
	return nil
}

// GetByUsername retrieves a staff account by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password, role_type, is_active, created_at, last_login_at
		FROM users
		WHERE username = $1`,
		username).Scan(
		&user.ID, &user.Username, &user.Password, &user.RoleType, &user.IsActive, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("user not found")
		}
		logger.Error().Err(err).Str("username", username).Msg("Error retrieving user")
		return nil, apperrors.Database("UserRepository.GetByUsername", err)
	}
	return user, nil
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return false, apperrors.Database("UserRepository.UsernameExists", err)
	}
	return exists, nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now().UTC(), userID)
	if err != nil {
		return apperrors.Database("UserRepository.UpdateLastLogin", err)
	}
	return nil
}
