package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

type stubTokenIssuer struct {
	err error
}

func (s stubTokenIssuer) GenerateAccessToken(user *models.User) (string, int, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	return "token-for-" + user.Username, 900, nil
}

func newAuthFixture(t *testing.T, issuer TokenIssuer) (*memStore, AuthService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.MinCost)
	require.NoError(t, err)

	store := newMemStore()
	store.users["admin"] = models.User{ID: 1, Username: "admin", Password: string(hash), RoleType: models.RoleAdmin, IsActive: true}
	store.users["former"] = models.User{ID: 2, Username: "former", Password: string(hash), RoleType: models.RoleRegistrar}
	return store, NewAuthService(&memUserRepo{store}, issuer, zerolog.Nop())
}

func TestLogin(t *testing.T) {
	store, svc := newAuthFixture(t, stubTokenIssuer{})

	result, err := svc.Login(context.Background(), " admin ", "changeme123")
	require.NoError(t, err)
	assert.Equal(t, "token-for-admin", result.AccessToken)
	assert.Equal(t, 900, result.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, result.User.RoleType)
	assert.NotNil(t, store.users["admin"].LastLoginAt)
}

func TestLogin_Rejections(t *testing.T) {
	_, svc := newAuthFixture(t, stubTokenIssuer{})

	_, err := svc.Login(context.Background(), "admin", "wrongpass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "changeme123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "former", "changeme123")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestLogin_LastLoginFailureIsNotFatal(t *testing.T) {
	store, svc := newAuthFixture(t, stubTokenIssuer{})
	store.fail["Users.UpdateLastLogin"] = errors.New("connection refused")

	_, err := svc.Login(context.Background(), "admin", "changeme123")
	assert.NoError(t, err)
}

func TestLogin_TokenFailure(t *testing.T) {
	_, svc := newAuthFixture(t, stubTokenIssuer{err: errors.New("signing failed")})

	_, err := svc.Login(context.Background(), "admin", "changeme123")
	assert.EqualError(t, err, "signing failed")
}
