package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// AuthService authenticates staff members and issues access tokens.
type AuthService struct {
	staff  repository.StaffRepository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(staff repository.StaffRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{staff: staff, tokens: tokens, logger: logger}
}

// LoginResult carries an issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	StaffID   string
	Name      string
	Role      string
}

// Login verifies staff credentials and issues a token. Failures are
// reported uniformly so the response does not reveal which part failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}

	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("staff lookup failed", zap.String("email", email), zap.Error(err))
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}
	if !staff.Active || !auth.CheckPassword(staff.PasswordHash, password) {
		return nil, errorutil.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(staff)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	s.logger.Info("staff login", zap.String("staff_id", staff.ID), zap.String("role", string(staff.Role)))
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		StaffID:   staff.ID,
		Name:      staff.Name,
		Role:      string(staff.Role),
	}, nil
}
