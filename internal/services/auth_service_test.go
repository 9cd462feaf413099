package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rcabrera/medtrack-api/internal/config"
	"github.com/rcabrera/medtrack-api/internal/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*AuthService, *config.Config) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	assert.NoError(t, err)

	staff := &fakeStaffRepo{members: map[uint]models.Staff{
		actorID: {
			ID:                actorID,
			Email:             "r.gomez@medtrack.test",
			EncryptedPassword: string(hash),
			FullName:          "Dr. Rosa Gomez",
			Role:              models.RoleClinician,
			Status:            models.StatusActive,
		},
		2: {
			ID:                2,
			Email:             "suspended@medtrack.test",
			EncryptedPassword: string(hash),
			Status:            models.StatusSuspended,
		},
	}}

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1}
	return NewAuthService(staff, cfg), cfg
}

func TestLoginIssuesTokenWithStaffClaims(t *testing.T) {
	service, cfg := newAuthFixture(t)

	result, err := service.Login(context.Background(), "r.gomez@medtrack.test", "s3cret-pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, actorID, result.Staff.ID)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, actorID, claims.StaffID)
	assert.Equal(t, models.RoleClinician, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), "r.gomez@medtrack.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), "nobody@medtrack.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSuspendedAccount(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), "suspended@medtrack.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}
