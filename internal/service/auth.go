package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/auth"
	"github.com/aprovatotal/validador-questoes-backend/internal/authz"
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrAdminOnly          = errors.New("access denied, only ADMIN can perform this action")
	ErrUserNotFound       = errors.New("user not found")
)

type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	DisciplineIDs []int64
}

// AuthResult is what register and login hand back: the public profile plus a
// fresh token pair.
type AuthResult struct {
	User   *models.User
	Tokens *auth.TokenPair
}

type AuthService interface {
	Register(input RegisterInput, principal *models.Principal) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Refresh(refreshToken string) (*auth.TokenPair, error)
	AdminChangePassword(targetUUID, newPassword string, principal *models.Principal) error
}

type authService struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) AuthService {
	return &authService{repo: repo, tokens: tokens, logger: logger}
}

func (s *authService) Register(input RegisterInput, principal *models.Principal) (*AuthResult, error) {
	if !authz.CanManageUsers(principal) {
		return nil, ErrAdminOnly
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}

	// The unique index on email is the arbiter for concurrent registrations;
	// the loser of a race gets ErrDuplicateEmail from the store.
	if err := s.repo.CreateUser(user, input.DisciplineIDs); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.tokens.GeneratePair(user.UUID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.repo.UpdateLastLogin(user.UUID); err != nil {
		s.logger.Warn("Failed to stamp last login", zap.String("uuid", user.UUID), zap.Error(err))
	}

	s.logger.Info("User registered", zap.String("email", user.Email), zap.String("by", principal.Email))
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(email, password string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same error as a wrong password, to avoid account enumeration.
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.GeneratePair(user.UUID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.repo.UpdateLastLogin(user.UUID); err != nil {
		s.logger.Warn("Failed to stamp last login", zap.String("uuid", user.UUID), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("email", user.Email))
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Refresh(refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	// The token is stateless; re-resolve the identity so a deactivated or
	// deleted account cannot mint new pairs.
	user, err := s.repo.GetUserByUUID(claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefresh
		}
		s.logger.Error("Failed to resolve refresh subject", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidRefresh
	}

	return s.tokens.GeneratePair(user.UUID, user.Email, user.Role)
}

func (s *authService) AdminChangePassword(targetUUID, newPassword string, principal *models.Principal) error {
	if !authz.CanManageUsers(principal) {
		return ErrAdminOnly
	}

	if _, err := s.repo.GetUserByUUID(targetUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		s.logger.Error("Failed to get target user", zap.Error(err))
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(targetUUID, passwordHash); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed by admin", zap.String("target", targetUUID), zap.String("by", principal.Email))
	return nil
}
