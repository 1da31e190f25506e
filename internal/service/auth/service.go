package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/auth"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/security"
)

const (
	tokenType         = "bearer"
	invalidCredential = "Incorrect email or password"
)

type AuthServicer interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Me(ctx context.Context, email string) (*model.UserResponse, error)
	ListUsers(ctx context.Context) ([]model.UserResponse, error)
	// ValidateToken returns the email the token was issued to.
	ValidateToken(token string) (string, error)
}

type Service struct {
	users  repository.UserRepository
	tokens auth.TokenService
	hasher security.PasswordHasher
	logger *zerolog.Logger
	now    func() time.Time
}

func NewService(users repository.UserRepository, tokens auth.TokenService, hasher security.PasswordHasher, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{users: users, tokens: tokens, hasher: hasher, logger: logger, now: time.Now}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errors.InvalidArgument("Email already registered")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.InvalidArgument("Password must be at least %d characters", security.MinPasswordLen)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleResident
	}
	user := &model.User{
		ID:             model.NewID(),
		Email:          email,
		HashedPassword: hashed,
		FullName:       req.FullName,
		Role:           role,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.InvalidArgument("Email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("email", email).Str("role", role).Msg("User registered")
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.UnauthorizedMsg(invalidCredential)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, req.Password); err != nil {
		s.logger.Warn().Str("email", user.Email).Msg("Failed login attempt")
		return nil, errors.UnauthorizedMsg(invalidCredential)
	}
	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*model.TokenResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		User:        user.ToResponse(),
	}, nil
}

func (s *Service) Me(ctx context.Context, email string) (*model.UserResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out, nil
}

func (s *Service) ValidateToken(token string) (string, error) {
	email, err := s.tokens.ValidateToken(token)
	if err != nil {
		return "", errors.Unauthorized(err)
	}
	return email, nil
}
