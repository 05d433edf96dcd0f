package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/config"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, requester model.Requester) (*model.User, error)
	// ParseToken resolves a bearer token to the caller it was issued for.
	ParseToken(token string) (model.Requester, error)
	// EnsureAdmin creates the admin account unless the email is already taken.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authServiceImpl struct {
	cfg      config.Auth
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewAuthService(cfg config.Auth, userRepo repository.UserRepository, log *zap.Logger) AuthService {
	return &authServiceImpl{
		cfg:      cfg,
		userRepo: userRepo,
		log:      log,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := s.createUser(ctx, req.Email, req.Name, req.Password, model.RoleCustomer)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authServiceImpl) createUser(ctx context.Context, email, name, password string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newSlugID("user"),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{Token: token, User: user}, nil
}

func (s *authServiceImpl) Me(ctx context.Context, requester model.Requester) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, requester.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *authServiceImpl) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *authServiceImpl) ParseToken(tokenString string) (model.Requester, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return model.Requester{}, apperror.Unauthorized("invalid or expired token")
	}
	if claims.UserID == "" {
		return model.Requester{}, apperror.Unauthorized("invalid token claims")
	}

	return model.Requester{
		UserID: claims.UserID,
		Role:   model.Role(claims.Role),
	}, nil
}

func (s *authServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.createUser(ctx, email, "Administrator", password, model.RoleAdmin)
	if errors.Is(err, apperror.ErrConflict) {
		return nil
	}
	return err
}
