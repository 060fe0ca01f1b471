package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/inkwell/inkwell/internal/domain"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/pkg/config"
	"github.com/inkwell/inkwell/pkg/crypto"
	"github.com/inkwell/inkwell/pkg/token"
)

var (
	// ErrValidation is wrapped by all input validation failures.
	ErrValidation = errors.New("invalid input")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials indicates a password mismatch.
	ErrInvalidCredentials = errors.New("incorrect credentials")
)

// Service handles registration, login and session issuance.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.AppConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.AppConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Register creates an account with a salted password hash. The raw
// password is never stored.
func (s Service) Register(ctx context.Context, fullname, email, password string) (*domain.User, error) {
	fullname = strings.TrimSpace(fullname)
	email = strings.TrimSpace(email)
	if fullname == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if len(fullname) < 2 || len(fullname) > 100 {
		return nil, fmt.Errorf("%w: fullname must be between 2 and 100 characters", ErrValidation)
	}
	if len(email) > 50 {
		return nil, fmt.Errorf("%w: email must be at most 50 characters", ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Fullname:     fullname,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login authenticates by email and password and issues a session token.
// An unknown email surfaces as repository.ErrNotFound.
func (s Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	signed, err := token.Generate(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return signed, user, nil
}

// OAuthLogin finds or creates the account matching an externally
// verified provider profile and issues a session token. New accounts
// get a placeholder password hash and the provider id attached.
func (s Service) OAuthLogin(ctx context.Context, profile Profile) (string, error) {
	if strings.TrimSpace(profile.Email) == "" {
		return "", fmt.Errorf("%w: provider profile has no email", ErrValidation)
	}
	user, err := s.users.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.createOAuthUser(ctx, profile)
	}
	if err != nil {
		return "", err
	}
	signed, err := token.Generate(user.ID, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("oauth login", "user_id", user.ID)
	return signed, nil
}

func (s Service) createOAuthUser(ctx context.Context, profile Profile) (*domain.User, error) {
	hash, err := crypto.HashPassword("google-oauth-" + profile.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Fullname:     profile.Name,
		Email:        profile.Email,
		PasswordHash: hash,
		GoogleID:     profile.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("oauth user created", "user_id", user.ID)
	return user, nil
}

// Authorize validates a bearer token and returns the associated user.
func (s Service) Authorize(ctx context.Context, raw string) (*domain.User, *token.Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, errors.New("token required")
	}
	claims, err := token.Parse(raw, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}
