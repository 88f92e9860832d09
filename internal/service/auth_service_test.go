package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

func newAuthService(t *testing.T) (*AuthService, func() context.Context) {
	stores := newTestStores(t)
	svc := NewAuthService(stores.Professors, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "kampos-xestion",
	})
	return svc, context.Background
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, ctx := newAuthService(t)

	professor, err := svc.Register(ctx(), models.RegisterRequest{
		Name: "Antón", Surname: "Pérez", Email: "anton@example.com", Password: "segredo123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, professor.ID)
	assert.True(t, professor.Active)
	assert.NotEqual(t, "segredo123", professor.PasswordHash)

	resp, err := svc.Login(ctx(), models.LoginRequest{Email: "anton@example.com", Password: "segredo123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, professor.ID, resp.Professor.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, professor.ID, claims.ProfessorID)
	assert.Equal(t, "anton@example.com", claims.Email)
}

func TestAuthServiceRejectsDuplicateEmail(t *testing.T) {
	svc, ctx := newAuthService(t)
	req := models.RegisterRequest{Name: "Antón", Surname: "Pérez", Email: "anton@example.com", Password: "segredo123"}

	_, err := svc.Register(ctx(), req)
	require.NoError(t, err)

	_, err = svc.Register(ctx(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsBadCredentials(t *testing.T) {
	svc, ctx := newAuthService(t)
	_, err := svc.Register(ctx(), models.RegisterRequest{
		Name: "Antón", Surname: "Pérez", Email: "anton@example.com", Password: "segredo123",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx(), models.LoginRequest{Email: "anton@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(ctx(), models.LoginRequest{Email: "nobody@example.com", Password: "segredo123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsShortPassword(t *testing.T) {
	svc, ctx := newAuthService(t)
	_, err := svc.Register(ctx(), models.RegisterRequest{
		Name: "Antón", Surname: "Pérez", Email: "anton@example.com", Password: "curto",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRejectsTamperedToken(t *testing.T) {
	svc, ctx := newAuthService(t)
	_, err := svc.Register(ctx(), models.RegisterRequest{
		Name: "Antón", Surname: "Pérez", Email: "anton@example.com", Password: "segredo123",
	})
	require.NoError(t, err)
	resp, err := svc.Login(ctx(), models.LoginRequest{Email: "anton@example.com", Password: "segredo123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.Error(t, err)
}
