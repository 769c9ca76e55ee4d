package service

import (
	"context"
	"go-rail-booking/config"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/repository"
	apperrors "go-rail-booking/pkg/app_errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.AccessToken, error)
	// CurrentUser resolves a bearer token to the authenticated identity.
	CurrentUser(ctx context.Context, token string) (*model.Identity, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
}

type AuthServiceImpl struct {
	users repository.UserRepository
	cfg   config.AuthConfig
}

func NewAuthService(users repository.UserRepository, cfg config.AuthConfig) AuthService {
	return &AuthServiceImpl{
		users: users,
		cfg:   cfg,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	return s.users.Create(ctx, user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*model.AccessToken, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		// Same error for unknown user and bad password, no account probing.
		return nil, apperrors.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.signToken(user)
}

func (s *AuthServiceImpl) signToken(user *model.User) (*model.AccessToken, error) {
	exp := time.Now().UTC().Add(s.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"admin": user.IsAdmin,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &model.AccessToken{Token: signed, ExpiresAt: exp}, nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, token string) (*model.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	admin, _ := claims["admin"].(bool)

	// Re-check against the store so deactivated accounts lose access before
	// their token expires.
	user, err := s.users.FindByID(ctx, int(sub))
	if err != nil || !user.IsActive {
		return nil, apperrors.ErrInvalidToken
	}

	return &model.Identity{UserID: user.ID, IsAdmin: admin}, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}
