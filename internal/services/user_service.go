package services

import (
	"context"
	"errors"
	"strings"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/models"
	"tailor-backend/internal/repositories"
)

// ErrInvalidCredentials is returned for any failed sign-in, without saying
// which part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	Repo       repositories.UserStore
	JWTManager *auth.JWTManager
	Profiles   *ProfileService
}

func NewUserService(repo repositories.UserStore, jwtManager *auth.JWTManager, profiles *ProfileService) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
		Profiles:   profiles,
	}
}

// Signup creates a new user with hashed password and a default profile
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	// Validate input
	if blank(req.Email) || req.Password == "" || blank(req.Name) {
		return nil, invalid("name, email, and password are required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, invalid("email address is not valid")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, invalid("%v", err)
		}
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, invalid("user with this email already exists")
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if blank(req.Email) || req.Password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *UserService) issue(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profiles.EnsureProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:   token,
		User:    user,
		Profile: profile,
	}, nil
}
