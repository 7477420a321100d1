package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dom/twitter-clone/internal/auth"
	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserService struct {
	users    repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	validate *validator.Validate
}

func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: newValidator(),
	}
}

type SignupInput struct {
	Username string  `json:"username" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,maxbytes"`
	Bio      *string `json:"bio"`
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
}

// Signup creates the user and logs them in. Every failure past validation,
// including a taken email, is reported as domain.ErrSignupFailed.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		slog.ErrorContext(ctx, "hash password", "error", err)
		return nil, domain.ErrSignupFailed
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Bio:          input.Bio,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			slog.ErrorContext(ctx, "create user", "error", err)
		}
		return nil, domain.ErrSignupFailed
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "issue token", "user_id", user.ID, "error", err)
		return nil, domain.ErrSignupFailed
	}

	return &AuthResult{User: user, AccessToken: token}, nil
}

// Login returns domain.ErrInvalidCredentials for an unknown username and a
// wrong password alike.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	candidates, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	for _, user := range candidates {
		if !s.hasher.Verify(password, user.PasswordHash) {
			continue
		}
		token, err := s.tokens.Issue(user.ID)
		if err != nil {
			return nil, err
		}
		return &AuthResult{User: user, AccessToken: token}, nil
	}

	return nil, domain.ErrInvalidCredentials
}

// Authenticate resolves a bearer token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
