package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/auth"
)

// LoginResult carries a freshly issued access token
type LoginResult struct {
	AccessToken string
	ExpiresIn   int
	User        *models.User
}

// TokenIssuer signs access tokens for staff accounts
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (string, int, error)
}

// AuthService defines staff authentication
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	userRepo UserRepository
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserRepository, tokens TokenIssuer, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies the credentials and issues an access token. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.Warn().Str("username", username).Msg("Login attempt for unknown user")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		s.logger.Warn().Str("username", username).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// login still succeeds
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login time")
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User logged in")
	return &LoginResult{AccessToken: token, ExpiresIn: expiresIn, User: user}, nil
}
