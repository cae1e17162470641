package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserService handles member accounts.
type UserService struct {
	users UserStore
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// Register creates an account and signs the member in.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.auth.GenerateUserToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks credentials and issues a token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateUserToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetByID retrieves a member.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Profile returns the public projection of a member.
func Profile(u *model.User) model.UserProfile {
	return model.UserProfile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		StarsBalance: u.StarsBalance,
		CreatedAt:    u.CreatedAt,
	}
}
