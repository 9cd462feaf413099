package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rcabrera/medtrack-api/internal/config"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles staff authentication. The staff ID carried in the token
// is the actor identity every mutating operation is credited to.
type AuthService struct {
	staff repository.StaffRepository
	cfg   *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(staff repository.StaffRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		staff: staff,
		cfg:   cfg,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token string               `json:"token"`
	Staff models.StaffResponse `json:"staff"`
}

// Login authenticates a staff member and returns a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	member, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !member.IsActive() {
		return nil, ErrInactiveAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.EncryptedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(member)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResult{
		Token: token,
		Staff: member.ToResponse(),
	}, nil
}

// Claims represents the JWT claims for a staff session
type Claims struct {
	StaffID uint   `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) generateJWT(member *models.Staff) (string, error) {
	expiration := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	claims := &Claims{
		StaffID: member.ID,
		Email:   member.Email,
		Role:    member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
